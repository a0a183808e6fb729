// Package analytics computes performance metrics over a closed-trade
// history.
package analytics

import (
	"math"
	"sort"
	"time"

	"tickbacktest/internal/domain"
)

// Report holds the performance metrics of one backtest run.
type Report struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	TotalPNL     float64
	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64
	AverageWin   float64
	AverageLoss  float64
	Expectancy   float64

	FinalBalance       float64
	ReturnOnInvestment float64
	MaxDrawdown        float64

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageHoldingMs     int64

	MonthlyReturns map[string]float64
	Drawdowns      []Drawdown
	EquityCurve    []EquityPoint
}

// Drawdown is one peak-to-recovery episode of the equity curve.
type Drawdown struct {
	StartTime  int64 // Unix ms of the first trade below the peak
	EndTime    int64 // Unix ms of the trade that recovered, or the last trade
	StartValue float64
	EndValue   float64
	Depth      float64 // Fraction of the peak given back at the worst point
}

// EquityPoint is the balance after one closed trade.
type EquityPoint struct {
	Time     int64 // Unix ms
	Value    float64
	Drawdown float64
}

// Analyze computes a performance report from closed trades. Trades are
// evaluated in exit-time order; the input slice is not modified.
func Analyze(trades []*domain.Trade, initialBalance float64) *Report {
	report := &Report{
		FinalBalance:   initialBalance,
		MonthlyReturns: make(map[string]float64),
	}
	if len(trades) == 0 {
		return report
	}

	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ExitTime < ordered[j].ExitTime
	})

	balance := initialBalance
	peak := initialBalance
	var open *Drawdown
	var runWins, runLosses int
	var totalHoldingMs int64

	for _, trade := range ordered {
		report.TotalTrades++
		if trade.PNL > 0 {
			report.WinningTrades++
			report.GrossProfit += trade.PNL
			runWins++
			runLosses = 0
		} else {
			report.LosingTrades++
			report.GrossLoss += -trade.PNL
			runLosses++
			runWins = 0
		}
		if runWins > report.MaxConsecutiveWins {
			report.MaxConsecutiveWins = runWins
		}
		if runLosses > report.MaxConsecutiveLosses {
			report.MaxConsecutiveLosses = runLosses
		}

		balance += trade.PNL
		report.TotalPNL += trade.PNL
		report.FinalBalance = balance
		totalHoldingMs += trade.ExitTime - trade.EntryTime

		monthKey := time.UnixMilli(trade.ExitTime).UTC().Format("2006-01")
		report.MonthlyReturns[monthKey] += trade.PNL

		if balance > peak {
			peak = balance
			if open != nil {
				open.EndTime = trade.ExitTime
				open.EndValue = balance
				report.Drawdowns = append(report.Drawdowns, *open)
				open = nil
			}
		} else if balance < peak {
			depth := (peak - balance) / peak
			if open == nil {
				open = &Drawdown{
					StartTime:  trade.ExitTime,
					StartValue: peak,
					Depth:      depth,
				}
			} else {
				open.Depth = math.Max(open.Depth, depth)
			}
			if depth > report.MaxDrawdown {
				report.MaxDrawdown = depth
			}
		}

		report.EquityCurve = append(report.EquityCurve, EquityPoint{
			Time:     trade.ExitTime,
			Value:    balance,
			Drawdown: (peak - balance) / peak,
		})
	}

	if open != nil {
		open.EndTime = ordered[len(ordered)-1].ExitTime
		open.EndValue = balance
		report.Drawdowns = append(report.Drawdowns, *open)
	}

	report.WinRate = float64(report.WinningTrades) / float64(report.TotalTrades)
	if report.WinningTrades > 0 {
		report.AverageWin = report.GrossProfit / float64(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AverageLoss = -report.GrossLoss / float64(report.LosingTrades)
	}
	if report.GrossLoss > 0 {
		report.ProfitFactor = report.GrossProfit / report.GrossLoss
	}
	report.Expectancy = report.WinRate*report.AverageWin + (1-report.WinRate)*report.AverageLoss
	report.ReturnOnInvestment = (report.FinalBalance - initialBalance) / initialBalance
	report.AverageHoldingMs = totalHoldingMs / int64(report.TotalTrades)

	return report
}

// SortedMonths returns the month keys of MonthlyReturns in ascending
// order.
func (r *Report) SortedMonths() []string {
	months := make([]string, 0, len(r.MonthlyReturns))
	for m := range r.MonthlyReturns {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}
