package analytics

import (
	"math"
	"testing"

	"tickbacktest/internal/domain"
)

func closedTrade(entryMs, exitMs int64, pnl float64) *domain.Trade {
	return &domain.Trade{
		Symbol:     "BTCUSDT",
		Side:       domain.Long,
		EntryPrice: 100,
		ExitPrice:  100 + pnl,
		Quantity:   1,
		EntryTime:  entryMs,
		ExitTime:   exitMs,
		PNL:        pnl,
	}
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	report := Analyze(nil, 10000)
	if report.TotalTrades != 0 {
		t.Errorf("Expected 0 trades, got %d", report.TotalTrades)
	}
	if report.FinalBalance != 10000 {
		t.Errorf("Expected final balance 10000, got %f", report.FinalBalance)
	}
}

func TestAnalyze_BasicMetrics(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade(0, 3_600_000, 1000),
		closedTrade(4_000_000, 7_200_000, -500),
		closedTrade(8_000_000, 9_000_000, 500),
	}

	report := Analyze(trades, 10000)

	if report.TotalTrades != 3 {
		t.Errorf("Expected 3 total trades, got %d", report.TotalTrades)
	}
	if report.WinningTrades != 2 || report.LosingTrades != 1 {
		t.Errorf("Expected 2 wins / 1 loss, got %d / %d", report.WinningTrades, report.LosingTrades)
	}
	if math.Abs(report.WinRate-2.0/3.0) > 1e-9 {
		t.Errorf("Expected win rate 0.667, got %f", report.WinRate)
	}
	if report.TotalPNL != 1000 {
		t.Errorf("Expected total PNL 1000, got %f", report.TotalPNL)
	}
	if report.FinalBalance != 11000 {
		t.Errorf("Expected final balance 11000, got %f", report.FinalBalance)
	}
	if report.GrossProfit != 1500 || report.GrossLoss != 500 {
		t.Errorf("Expected gross 1500/500, got %f/%f", report.GrossProfit, report.GrossLoss)
	}
	if report.ProfitFactor != 3.0 {
		t.Errorf("Expected profit factor 3.0, got %f", report.ProfitFactor)
	}
	if report.AverageWin != 750 {
		t.Errorf("Expected average win 750, got %f", report.AverageWin)
	}
	if report.AverageLoss != -500 {
		t.Errorf("Expected average loss -500, got %f", report.AverageLoss)
	}
	if math.Abs(report.ReturnOnInvestment-0.1) > 1e-9 {
		t.Errorf("Expected ROI 0.1, got %f", report.ReturnOnInvestment)
	}

	// Expectancy = 2/3*750 + 1/3*(-500) = 333.33
	if math.Abs(report.Expectancy-1000.0/3.0) > 1e-6 {
		t.Errorf("Expected expectancy 333.33, got %f", report.Expectancy)
	}

	// Holding times: 3600s + 3200s + 1000s over three trades.
	if report.AverageHoldingMs != (3_600_000+3_200_000+1_000_000)/3 {
		t.Errorf("Unexpected average holding time %d", report.AverageHoldingMs)
	}
}

func TestAnalyze_ConsecutiveRuns(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade(0, 1000, 100),
		closedTrade(1000, 2000, 100),
		closedTrade(2000, 3000, 100),
		closedTrade(3000, 4000, -50),
		closedTrade(4000, 5000, -50),
		closedTrade(5000, 6000, 100),
	}

	report := Analyze(trades, 10000)

	if report.MaxConsecutiveWins != 3 {
		t.Errorf("Expected 3 max consecutive wins, got %d", report.MaxConsecutiveWins)
	}
	if report.MaxConsecutiveLosses != 2 {
		t.Errorf("Expected 2 max consecutive losses, got %d", report.MaxConsecutiveLosses)
	}
}

func TestAnalyze_DrawdownTracking(t *testing.T) {
	// Rise to 11000, fall to 9900, recover to 12000.
	trades := []*domain.Trade{
		closedTrade(0, 1000, 1000),
		closedTrade(1000, 2000, -600),
		closedTrade(2000, 3000, -500),
		closedTrade(3000, 4000, 2100),
	}

	report := Analyze(trades, 10000)

	expectedDepth := (11000.0 - 9900.0) / 11000.0
	if math.Abs(report.MaxDrawdown-expectedDepth) > 1e-9 {
		t.Errorf("Expected max drawdown %f, got %f", expectedDepth, report.MaxDrawdown)
	}
	if len(report.Drawdowns) != 1 {
		t.Fatalf("Expected 1 drawdown episode, got %d", len(report.Drawdowns))
	}

	dd := report.Drawdowns[0]
	if dd.StartTime != 2000 || dd.EndTime != 4000 {
		t.Errorf("Unexpected drawdown window [%d, %d]", dd.StartTime, dd.EndTime)
	}
	if dd.StartValue != 11000 || dd.EndValue != 12000 {
		t.Errorf("Unexpected drawdown values %f -> %f", dd.StartValue, dd.EndValue)
	}
	if math.Abs(dd.Depth-expectedDepth) > 1e-9 {
		t.Errorf("Expected episode depth %f, got %f", expectedDepth, dd.Depth)
	}

	if len(report.EquityCurve) != 4 {
		t.Fatalf("Expected 4 equity points, got %d", len(report.EquityCurve))
	}
	if report.EquityCurve[2].Value != 9900 {
		t.Errorf("Expected equity 9900 at the trough, got %f", report.EquityCurve[2].Value)
	}
}

func TestAnalyze_SortsOutOfOrderInput(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade(2000, 3000, -100),
		closedTrade(0, 1000, 200),
	}

	report := Analyze(trades, 10000)

	if report.EquityCurve[0].Time != 1000 {
		t.Errorf("Expected earliest exit first, got %d", report.EquityCurve[0].Time)
	}
	if trades[0].ExitTime != 3000 {
		t.Error("Input slice order must not change")
	}
}

func TestReport_SortedMonths(t *testing.T) {
	// Exits in February and January 2024 (UTC).
	trades := []*domain.Trade{
		closedTrade(0, 1_707_000_000_000, 100),
		closedTrade(0, 1_704_100_000_000, 200),
	}

	report := Analyze(trades, 10000)
	months := report.SortedMonths()
	if len(months) != 2 || months[0] != "2024-01" || months[1] != "2024-02" {
		t.Errorf("Unexpected months %v", months)
	}
	if report.MonthlyReturns["2024-01"] != 200 {
		t.Errorf("Expected January return 200, got %f", report.MonthlyReturns["2024-01"])
	}
}
