// Command fetch_klines downloads Binance futures klines into the CSV layout
// read by the csv market data source.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"traderBot/internal/adapters/binanceclient"
	"traderBot/internal/adapters/logger"
	"traderBot/internal/utils"
)

func main() {
	symbol := flag.String("symbol", "ETHUSDT", "trading symbol")
	intervals := flag.String("intervals", "1m,5m,15m,1h", "comma-separated kline intervals")
	days := flag.Int("days", 90, "days of history to download")
	dir := flag.String("dir", "data", "output directory")
	testnet := flag.Bool("testnet", false, "use the futures testnet")
	logLevel := flag.String("log-level", "INFO", "log level")
	flag.Parse()

	appLogger := logger.NewStdLogger(logger.ParseLevel(*logLevel))
	ctx := context.Background()

	client, err := binanceclient.New(binanceclient.Config{UseTestnet: *testnet, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -*days)
	sym := strings.ToUpper(*symbol)

	for _, interval := range strings.Split(*intervals, ",") {
		interval = strings.TrimSpace(interval)
		if interval == "" {
			continue
		}
		klines, err := client.GetKlinesRange(ctx, sym, interval, start, end)
		if err != nil {
			log.Fatalf("Error fetching %s %s klines: %v", sym, interval, err)
		}
		// The csv feed treats every stored row as a closed bar.
		if n := len(klines); n > 0 && !klines[n-1].IsFinal {
			klines = klines[:n-1]
		}
		filename := utils.KlineFileName(*dir, sym, interval)
		if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
			log.Fatalf("Error writing %s: %v", filename, err)
		}
		appLogger.Info(ctx, "Saved klines", map[string]interface{}{
			"symbol":   sym,
			"interval": interval,
			"count":    len(klines),
			"file":     filename,
		})
	}
}
