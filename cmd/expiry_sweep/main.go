// Command expiry_sweep marks overdue access requests as expired. It is
// intended to run from cron; the API also derives an effective status at
// read time, so the sweep only has to keep the stored rows honest.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"imovelhub/internal/config"
	"imovelhub/internal/database"
	"imovelhub/internal/domain/request"
	"imovelhub/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.Environment)
	defer zlog.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := request.NewRepository(db)
	expired, err := repo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		zlog.Fatal("expiry sweep failed", zap.Error(err))
	}

	zlog.Info("expiry sweep done", zap.Int64("expired", expired))
}
