package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"btb-portal/internal/config"
	"btb-portal/internal/dispatch"
	"btb-portal/internal/jersey"
	"btb-portal/internal/logging"
	"btb-portal/internal/notify"
	"btb-portal/internal/players"
	"btb-portal/internal/rowstore"
	"btb-portal/internal/server"
	"btb-portal/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := slog.Default()

	var store rowstore.Store
	if cfg.SheetsConfigured() {
		gs, err := rowstore.OpenGoogle(cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
		if err != nil {
			log.Error("sheets", "err", err)
			os.Exit(1)
		}
		store = gs
	} else {
		// Reads degrade to empty results, writes report the missing
		// configuration; the server still comes up.
		log.Warn("google sheets not configured; data operations disabled")
	}

	var receiptStore *upload.ReceiptStore
	if cfg.DriveConfigured() {
		drive, err := upload.OpenDrive(cfg.GoogleServiceAccountJSON, cfg.DriveFolderID)
		if err != nil {
			log.Error("drive", "err", err)
			os.Exit(1)
		}
		receiptStore = upload.NewReceiptStore(drive)
	} else {
		log.Warn("drive folder not configured; receipt uploads disabled")
		receiptStore = upload.NewReceiptStore(nil)
	}

	notifier, err := notify.New(cfg.TelegramToken, cfg.TelegramChatID, log)
	if err != nil {
		log.Error("telegram", "err", err)
		os.Exit(1)
	}

	playerSvc := players.New(store, cfg.RegistrationSheetName, log)
	jerseySvc := jersey.New(store, cfg.BookingSheetName, log)
	dispatcher := dispatch.New(playerSvc, jerseySvc, receiptStore, notifier, log)

	httpSrv := server.New(cfg, dispatcher, upload.NewImgbb(cfg.ImgbbAPIKey)).HTTPServer()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	log.Info("bye")
}
