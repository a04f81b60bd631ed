// Package main is the batch import CLI. It reads a JSON file of scraped
// restaurant records and loads them into the directory, printing a structured
// report at the end. Per-record failures never abort the batch; only an
// unreadable input file or a failed database connection is fatal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/config"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/importer"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: %s <records.json> [--json]", os.Args[0])
	}
	inputPath := os.Args[1]
	jsonOutput := len(os.Args) > 2 && os.Args[2] == "--json"

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	records, err := importer.LoadRecords(inputPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records found in %s", inputPath)
	}

	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	imp := importer.NewImporter(
		repositories.NewRestaurantRepository(database),
		repositories.NewSoupRepository(database),
		importer.Defaults{
			PriceRange: cfg.Import.DefaultPriceRange,
			State:      cfg.Import.DefaultState,
		},
	)

	report := imp.ImportBatch(context.Background(), records)

	if jsonOutput {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printReport(inputPath, len(records), report)
	}

	if report.Succeeded == 0 && report.Failed > 0 {
		return fmt.Errorf("import failed: all %d records rejected", report.Failed)
	}

	return nil
}

func printReport(inputPath string, total int, report *importer.Report) {
	fmt.Printf("Import of %s complete\n", inputPath)
	fmt.Printf("  records:       %d\n", total)
	fmt.Printf("  succeeded:     %d\n", report.Succeeded)
	fmt.Printf("  failed:        %d\n", report.Failed)
	fmt.Printf("  soups created: %d\n", report.SoupsCreated)
	fmt.Printf("  soups failed:  %d\n", report.SoupsFailed)

	if len(report.Failures) > 0 {
		fmt.Println("Failures:")
		for _, f := range report.Failures {
			fmt.Printf("  - %s: %s\n", f.Record, f.Reason)
		}
	}
}
