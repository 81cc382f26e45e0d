// Command dailypnl prints the persisted daily realized P/L and optionally
// exports it to an Excel workbook.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"traderBot/internal/adapters/jsonstore"
	"traderBot/internal/adapters/logger"
	"traderBot/internal/adapters/sqlite"
	"traderBot/internal/ports"
)

func main() {
	backend := flag.String("backend", "sqlite", "daily state backend: sqlite or json")
	dbPath := flag.String("db", "./data/trader_bot.db", "sqlite database path")
	jsonPath := flag.String("file", "logs/daily_pnl.json", "json daily state file")
	days := flag.Int("days", 0, "only show the most recent N days (0 = all)")
	xlsxPath := flag.String("xlsx", "", "also write the report to this .xlsx file")
	flag.Parse()

	appLogger := logger.NewStdLogger(logger.LevelWarn)
	ctx := context.Background()

	var (
		store ports.DailyPnLStore
		err   error
	)
	switch *backend {
	case "json":
		store, err = jsonstore.New(*jsonPath, appLogger)
	case "sqlite":
		store, err = sqlite.NewRepository(sqlite.Config{DBPath: *dbPath, Logger: appLogger})
	default:
		log.Fatalf("unknown backend %q", *backend)
	}
	if err != nil {
		log.Fatalf("FATAL: open daily store: %v", err)
	}
	defer store.Close()

	m, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("FATAL: load daily state: %v", err)
	}
	rows := buildRows(m, *days)

	renderTable(os.Stdout, rows)
	if *xlsxPath != "" {
		if err := writeWorkbook(*xlsxPath, rows); err != nil {
			log.Fatalf("FATAL: write workbook: %v", err)
		}
		appLogger.Warn(ctx, "Workbook written", map[string]interface{}{"path": *xlsxPath})
	}
}
