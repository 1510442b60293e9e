package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SpreadsheetID            string
	GoogleServiceAccountJSON string

	RegistrationSheetName string
	BookingSheetName      string
	LedgerSheetName       string

	DriveFolderID string
	ImgbbAPIKey   string

	// AppsScriptURL is what the config endpoint hands to legacy
	// frontends still pointed at the old deployment.
	AppsScriptURL string

	TelegramToken  string
	TelegramChatID int64

	HTTPAddr       string
	AllowedOrigins []string

	BridgeWriteTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// FromEnv loads configuration from the environment. A missing
// spreadsheet id is not an error here: the services degrade reads to
// empty results, matching the original behavior when CONFIG was left
// unfilled.
func FromEnv() (Config, error) {
	var c Config
	c.SpreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	c.GoogleServiceAccountJSON = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))

	c.RegistrationSheetName = envDefault("REGISTRATION_SHEET_NAME", "Form Responses 1")
	c.BookingSheetName = envDefault("BOOKING_SHEET_NAME", "Tempahan Jersi")
	c.LedgerSheetName = envDefault("LEDGER_SHEET_NAME", "Cashflow")

	c.DriveFolderID = strings.TrimSpace(os.Getenv("DRIVE_FOLDER_ID"))
	c.ImgbbAPIKey = strings.TrimSpace(os.Getenv("IMGBB_API_KEY"))
	c.AppsScriptURL = strings.TrimSpace(os.Getenv("APPS_SCRIPT_URL"))

	c.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_ADMIN_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}

	c.HTTPAddr = envDefault("HTTP_ADDR", ":8080")
	c.AllowedOrigins = splitList(envDefault("ALLOWED_ORIGINS", "*"))

	c.BridgeWriteTimeout = 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("BRIDGE_WRITE_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return c, fmt.Errorf("BRIDGE_WRITE_TIMEOUT: %w", err)
		}
		c.BridgeWriteTimeout = d
	}

	c.LogLevel = envDefault("LOG_LEVEL", "info")
	c.LogFormat = envDefault("LOG_FORMAT", "text")

	return c, nil
}

// SheetsConfigured reports whether the Google Sheets store can be opened.
func (c Config) SheetsConfigured() bool {
	return c.SpreadsheetID != "" && c.GoogleServiceAccountJSON != ""
}

// DriveConfigured reports whether receipt storage can be opened.
func (c Config) DriveConfigured() bool {
	return c.DriveFolderID != "" && c.GoogleServiceAccountJSON != ""
}

func envDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
