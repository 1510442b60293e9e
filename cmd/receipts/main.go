package main

import (
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"btb-portal/internal/config"
	"btb-portal/internal/logging"
	"btb-portal/internal/receipts"
	"btb-portal/internal/rowstore"
	"btb-portal/internal/upload"
)

type options struct {
	Sheet  string `short:"s" long:"sheet" description:"Ledger sheet name (default from LEDGER_SHEET_NAME)"`
	Prefix string `short:"p" long:"prefix" default:"BTB" description:"Receipt number prefix"`
	DryRun bool   `short:"n" long:"dry-run" description:"Report what would be generated without writing"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := slog.Default()

	if !cfg.SheetsConfigured() {
		log.Error("google sheets not configured")
		os.Exit(1)
	}
	store, err := rowstore.OpenGoogle(cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
	if err != nil {
		log.Error("sheets", "err", err)
		os.Exit(1)
	}

	var files upload.FileSaver
	if cfg.DriveConfigured() {
		drive, err := upload.OpenDrive(cfg.GoogleServiceAccountJSON, cfg.DriveFolderID)
		if err != nil {
			log.Error("drive", "err", err)
			os.Exit(1)
		}
		files = drive
	} else {
		log.Warn("drive folder not configured; ledger gets receipt numbers but no document links")
	}

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = cfg.LedgerSheetName
	}

	gen := receipts.New(store, sheetName, files, opts.Prefix, opts.DryRun, log)
	n, err := gen.Run()
	if err != nil {
		log.Error("receipt generation", "generated", n, "err", err)
		os.Exit(1)
	}
	log.Info("receipt generation complete", "generated", n)
}
