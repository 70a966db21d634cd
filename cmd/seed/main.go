// Command seed creates one show with a block of AVAILABLE seats.
//
//	go run ./cmd/seed -name "Evening Concert" -seats 100 -start 2026-12-01T19:00:00Z
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/seat-hold-engine/internal/config"
	"github.com/iliyamo/seat-hold-engine/internal/database"
	"github.com/iliyamo/seat-hold-engine/internal/logger"
	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
)

func main() {
	name := flag.String("name", "Sample Show", "show name")
	seats := flag.Int("seats", 50, "number of seats, numbered from 1")
	start := flag.String("start", "", "start time (RFC 3339); defaults to 24h from now")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if *seats < 1 {
		logger.Fatal("seats must be positive", "seats", *seats)
	}
	startTime := time.Now().Add(24 * time.Hour)
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			logger.Fatal("invalid -start", "value", *start, "error", err)
		}
		startTime = t
	}

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if cfg.AutoMigrate {
		if _, err := database.Migrate(dsn); err != nil {
			logger.Fatal("migrate failed", "error", err)
		}
	}
	db, err := database.OpenDSN(dsn)
	if err != nil {
		logger.Fatal("database connection failed", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	show := &model.Show{Name: *name, StartTime: startTime, TotalSeats: *seats}
	created, err := repository.NewShowRepo(db).CreateWithSeats(ctx, show)
	if err != nil {
		logger.Fatal("create show failed", "error", err)
	}
	logger.Get().Info("show created", "show_id", show.ID, "seats", len(created))
	fmt.Println(show.ID)
}
