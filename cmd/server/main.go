package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mediverse/internal/api"
	"mediverse/internal/config"
	"mediverse/internal/hub"
	"mediverse/internal/storage"
)

func main() {
	cfg := config.Load()

	if cfg.AppSecret == "" {
		log.Fatal("APP_SECRET must be set")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal(err)
	}

	db, err := storage.Connect(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub()
	if cfg.RedisAddr != "" {
		bridge := hub.NewBridge(cfg.RedisAddr)
		defer bridge.Close()
		h.AttachBridge(bridge)
		go bridge.Listen(ctx, h)
		log.Printf("event bridge connected to %s", cfg.RedisAddr)
	}
	go h.Run(ctx)

	if err := api.Serve(cfg, db, h); err != nil {
		log.Fatal(err)
	}
}
