package main

import (
	"context"
	"fmt"
	"log"

	"tickbacktest/config"
	"tickbacktest/internal/adapters/sqlite"
	"tickbacktest/internal/adapters/ticksource"
	"tickbacktest/internal/analytics"
	"tickbacktest/internal/engine"
	"tickbacktest/internal/risk"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := cfg.NewLogger()
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Build the configured strategy
	strat, err := cfg.NewStrategy(appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build strategy")
		log.Fatalf("FATAL: Failed to build strategy: %v", err)
	}

	// 4. Attach risk guards
	rejections := &risk.RejectionCounter{}
	if cfg.MaxEntryPrice > 0 {
		guard, err := risk.NewPriceCapGuard(cfg.MaxEntryPrice, rejections, appLogger)
		if err != nil {
			log.Fatalf("FATAL: Failed to build price cap guard: %v", err)
		}
		strat.AddObserver(guard)
	}
	if cfg.MaxQuantity > 0 {
		guard, err := risk.NewQuantityCapGuard(cfg.MaxQuantity, appLogger)
		if err != nil {
			log.Fatalf("FATAL: Failed to build quantity cap guard: %v", err)
		}
		strat.AddObserver(guard)
	}

	// 5. Attach the trade recorder
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath:   cfg.DBPath,
		Logger:   appLogger,
		RunID:    cfg.RunID,
		Strategy: strat.Name(),
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to open trade store")
		log.Fatalf("FATAL: Failed to open trade store: %v", err)
	}
	defer repo.Close()
	strat.AddObserver(sqlite.NewRecorder(repo, appLogger))

	// 6. Open the tick source and run
	src, err := ticksource.OpenJSONL(cfg.TicksFile, cfg.Symbol)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to open tick file")
		log.Fatalf("FATAL: Failed to open tick file: %v", err)
	}
	defer src.Close()

	eng, err := engine.New(cfg.BucketMs, strat, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to build engine: %v", err)
	}
	if err := eng.Run(ctx, src); err != nil {
		appLogger.Error(ctx, err, "FATAL: Backtest run failed")
		log.Fatalf("FATAL: Backtest run failed: %v", err)
	}

	appLogger.Info(ctx, "Run complete", map[string]interface{}{
		"ticks":      eng.TicksSeen(),
		"candles":    eng.CandlesSealed(),
		"rejections": rejections.Count(),
	})

	// 7. Report
	report := analytics.Analyze(strat.Trades(), cfg.InitialCash)
	printReport(cfg, eng, report)
}

func printReport(cfg *config.Config, eng *engine.Engine, report *analytics.Report) {
	fmt.Printf("\n=== Backtest: %s on %s ===\n", eng.Strategy().Name(), cfg.Symbol)
	fmt.Printf("Trades:              %d (%d wins / %d losses)\n",
		report.TotalTrades, report.WinningTrades, report.LosingTrades)
	fmt.Printf("Win rate:            %.2f%%\n", report.WinRate*100)
	fmt.Printf("Total PNL:           %.4f\n", report.TotalPNL)
	fmt.Printf("Profit factor:       %.2f\n", report.ProfitFactor)
	fmt.Printf("Expectancy:          %.4f\n", report.Expectancy)
	fmt.Printf("Max drawdown:        %.2f%%\n", report.MaxDrawdown*100)
	fmt.Printf("Final balance:       %.4f (ROI %.2f%%)\n",
		report.FinalBalance, report.ReturnOnInvestment*100)

	if pos := eng.Strategy().OpenPosition(); pos != nil {
		fmt.Printf("Open position:       %s %.4f @ %.4f (equity %.4f at last price %.4f)\n",
			pos.Side, pos.Quantity, pos.EntryPrice,
			eng.Strategy().Equity(eng.LastPrice()), eng.LastPrice())
	}

	for _, month := range report.SortedMonths() {
		fmt.Printf("  %s: %+.4f\n", month, report.MonthlyReturns[month])
	}
}
