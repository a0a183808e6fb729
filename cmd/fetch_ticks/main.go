package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tickbacktest/config"
	"tickbacktest/internal/adapters/binanceclient"
	"tickbacktest/internal/adapters/ticksource"
)

func main() {
	days := flag.Int("days", 1, "how many days of history to fetch, ending now")
	out := flag.String("out", "", "output path; defaults to data/<symbol>_ticks_<range>.jsonl")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := cfg.NewLogger()
	ctx := context.Background()

	// 3. Initialize Exchange Client (Binance Adapter)
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	appLogger.Info(ctx, "Fetching aggregated trades", map[string]interface{}{
		"symbol": cfg.Symbol,
		"from":   start.Format(time.RFC3339),
		"to":     end.Format(time.RFC3339),
	})
	ticks, err := client.FetchAggTrades(ctx, cfg.Symbol, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching aggregated trades")
		log.Fatalf("Error fetching aggregated trades: %v", err)
	}

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_ticks_%s_to_%s.jsonl",
			cfg.Symbol, start.Format("20060102"), end.Format("20060102"))
	}
	if err := ticksource.WriteJSONL(filename, ticks); err != nil {
		appLogger.Error(ctx, err, "Error writing tick file")
		log.Fatalf("Error writing tick file: %v", err)
	}
	appLogger.Info(ctx, "Tick file written", map[string]interface{}{
		"filename": filename,
		"count":    len(ticks),
	})
}
