package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"timber-backend/internal/config"
	"timber-backend/internal/db"
)

// Tables holding production and inventory data, children first.
// Organisations, users and processes survive a reset.
var productionTables = []string{
	"production_inputs",
	"production_outputs",
	"production_entries",
	"packages",
	"package_number_counters",
}

func main() {
	fmt.Println("========================================")
	fmt.Println("   Reset Production Data for Testing")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("WARNING: This will DELETE ALL PRODUCTION DATA!")
	fmt.Println()
	fmt.Println("This will:")
	fmt.Println("  - Delete all production entries with their inputs and outputs")
	fmt.Println("  - Delete all inventory packages")
	fmt.Println("  - Restart package numbering for every process")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	fmt.Println()
	fmt.Printf("Resetting %s on %s...\n", cfg.Database.Name, cfg.Database.Host)

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, table := range productionTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
				return fmt.Errorf("truncate %s: %w", table, err)
			}
			fmt.Printf("  - Cleared %s\n", table)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("reset failed, nothing was changed", zap.Error(err))
	}

	fmt.Println()
	fmt.Println("Production data reset successful!")
}
