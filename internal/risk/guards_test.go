package risk

import (
	"context"
	"testing"

	"tickbacktest/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestPriceCapGuard(t *testing.T) {
	counter := &RejectionCounter{}
	guard, err := NewPriceCapGuard(50000, counter, &mockLogger{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// A buy above the cap is rejected.
	d := guard.PreTrade(context.Background(), &domain.ProposedTrade{Side: domain.Long, Price: 51000, Quantity: 1}, &domain.TradeContext{})
	if d.Action() != domain.ActionReject {
		t.Errorf("Expected reject above cap, got %v", d.Action())
	}
	if counter.Count() != 1 {
		t.Errorf("Expected one recorded rejection, got %d", counter.Count())
	}

	// A buy at the cap is approved.
	d = guard.PreTrade(context.Background(), &domain.ProposedTrade{Side: domain.Long, Price: 50000, Quantity: 1}, &domain.TradeContext{})
	if d.Action() != domain.ActionApprove {
		t.Errorf("Expected approve at cap, got %v", d.Action())
	}

	// A sell above the cap passes: exits are never blocked.
	d = guard.PreTrade(context.Background(), &domain.ProposedTrade{Side: domain.Short, Price: 60000, Quantity: 1}, &domain.TradeContext{})
	if d.Action() != domain.ActionApprove {
		t.Errorf("Expected approve for exit, got %v", d.Action())
	}

	if counter.Count() != 1 {
		t.Errorf("Expected counter unchanged at 1, got %d", counter.Count())
	}
}

func TestPriceCapGuard_Validation(t *testing.T) {
	if _, err := NewPriceCapGuard(0, nil, &mockLogger{}); err == nil {
		t.Error("Expected error for non-positive max price")
	}
	if _, err := NewPriceCapGuard(100, nil, nil); err == nil {
		t.Error("Expected error for nil logger")
	}
	// A nil counter is valid.
	if _, err := NewPriceCapGuard(100, nil, &mockLogger{}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestQuantityCapGuard(t *testing.T) {
	guard, err := NewQuantityCapGuard(2.0, &mockLogger{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	proposed := &domain.ProposedTrade{Side: domain.Long, Price: 100, Quantity: 5, Timestamp: 7}
	d := guard.PreTrade(context.Background(), proposed, &domain.TradeContext{})
	if d.Action() != domain.ActionModify {
		t.Fatalf("Expected modify for oversized proposal, got %v", d.Action())
	}
	repl := d.Replacement()
	if repl.Quantity != 2.0 {
		t.Errorf("Expected capped quantity 2.0, got %f", repl.Quantity)
	}
	if repl.Price != 100 || repl.Side != domain.Long || repl.Timestamp != 7 {
		t.Error("Replacement should preserve all other proposal fields")
	}
	if proposed.Quantity != 5 {
		t.Error("Original proposal must not be mutated in place")
	}

	d = guard.PreTrade(context.Background(), &domain.ProposedTrade{Side: domain.Long, Price: 100, Quantity: 1}, &domain.TradeContext{})
	if d.Action() != domain.ActionApprove {
		t.Errorf("Expected approve within cap, got %v", d.Action())
	}
}
