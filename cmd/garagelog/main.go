package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dkalnina/garagelog/internal/config"
	"github.com/dkalnina/garagelog/internal/filex"
	"github.com/dkalnina/garagelog/internal/logging"
	"github.com/dkalnina/garagelog/internal/migrate"
	"github.com/dkalnina/garagelog/internal/services"
	"github.com/dkalnina/garagelog/internal/store"

	_ "modernc.org/sqlite"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := newLogger(cfg.LogLevel)

	for _, path := range []string{cfg.DatabasePath, cfg.BackupPath} {
		if err := filex.EnsureParentDir(path); err != nil {
			log.Fatalf("preparing data directory: %v", err)
		}
	}

	st := store.New(cfg.DatabasePath, logger)
	if err := st.Open(ctx); err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error(ctx, "closing store", "error", err)
		}
	}()

	legacy := migrate.NewFileLegacyStore(cfg.LegacyStorePath)
	importer := migrate.NewImporter(st, legacy, cfg.BackupPath, logger)
	if err := importer.Run(ctx); err != nil {
		log.Fatalf("legacy migration: %v", err)
	}

	vehicleSvc := services.NewVehicleService(st, logger)
	fuelSvc := services.NewFuelService(st, logger)

	vehicles, err := vehicleSvc.GetAll(ctx)
	if err != nil {
		log.Fatalf("listing vehicles: %v", err)
	}
	monthly, err := fuelSvc.MonthlyTotal(ctx)
	if err != nil {
		log.Fatalf("monthly total: %v", err)
	}

	fmt.Printf("store mode: %s\n", st.Mode())
	fmt.Printf("vehicles: %d\n", len(vehicles))
	fmt.Printf("spent this month: %.2f\n", monthly)

	comparison, err := fuelSvc.VehicleComparison(ctx, "", "")
	if err != nil {
		log.Fatalf("vehicle comparison: %v", err)
	}
	for _, c := range comparison {
		if c.EntryCount == 0 {
			continue
		}
		fmt.Printf("  %s: %d fill-ups, %.2f spent, avg %.1f mpg\n",
			c.Name, c.EntryCount, c.TotalSpent, c.AvgMPG)
	}
}

func newLogger(level string) logging.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return logging.NewSlogLogger(slog.New(h))
}
