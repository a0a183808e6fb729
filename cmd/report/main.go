package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"tickbacktest/config"
	"tickbacktest/internal/adapters/sqlite"
	"tickbacktest/internal/analytics"
)

func main() {
	limit := flag.Int("limit", 0, "max trades to analyze, newest first; 0 means all")
	balance := flag.Float64("balance", 10_000, "initial balance for ROI and drawdown figures")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := cfg.NewLogger()
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open trade store: %v", err)
	}
	defer repo.Close()

	trades, err := repo.FindBySymbol(ctx, cfg.Symbol, *limit)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to load trades")
		log.Fatalf("Failed to load trades: %v", err)
	}
	if len(trades) == 0 {
		fmt.Printf("No recorded trades for %s in %s\n", cfg.Symbol, cfg.DBPath)
		return
	}

	total, err := repo.TotalPNL(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("Failed to sum PNL: %v", err)
	}

	report := analytics.Analyze(trades, *balance)

	fmt.Printf("=== Recorded trades: %s (%s) ===\n", cfg.Symbol, cfg.DBPath)
	fmt.Printf("Analyzed trades:     %d\n", report.TotalTrades)
	fmt.Printf("Win rate:            %.2f%%\n", report.WinRate*100)
	fmt.Printf("Profit factor:       %.2f\n", report.ProfitFactor)
	fmt.Printf("Expectancy:          %.4f\n", report.Expectancy)
	fmt.Printf("Max drawdown:        %.2f%%\n", report.MaxDrawdown*100)
	fmt.Printf("Analyzed PNL:        %+.4f\n", report.TotalPNL)
	fmt.Printf("All-time PNL:        %+.4f\n", total)
	for _, month := range report.SortedMonths() {
		fmt.Printf("  %s: %+.4f\n", month, report.MonthlyReturns[month])
	}
}
