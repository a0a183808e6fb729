package domain

// StrategyContext is the closed set of strategy-specific payloads a
// strategy may attach to a trade submission. Observers switch on the
// concrete type; the unexported marker method keeps the set closed at
// compile time instead of probing arbitrary values at the hook
// boundary.
type StrategyContext interface {
	strategyContext()
}

// RSIContext carries the indicator state behind an RSI strategy
// signal: the RSI value at the signal candle and the thresholds in
// force at that moment (fixed or dynamically derived).
type RSIContext struct {
	RSIValue          float64
	DynamicOversold   float64
	DynamicOverbought float64
}

func (RSIContext) strategyContext() {}

// TradeContext is the per-submission payload handed to every observer
// hook. Both fields are borrowed for the duration of one hook
// invocation only; observers must not retain them.
type TradeContext struct {
	// Strategy holds the strategy-specific payload, nil when the
	// strategy attaches none.
	Strategy StrategyContext
	// Custom holds an optional caller-supplied payload that flows
	// through the pipeline untouched.
	Custom any
}
