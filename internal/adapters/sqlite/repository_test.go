package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tickbacktest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tickbacktest-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath:   dbPath,
		Logger:   &mockLogger{},
		RunID:    "test-run",
		Strategy: "RSI",
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func sampleTrade(exitMs int64, pnl float64) *domain.Trade {
	return &domain.Trade{
		Symbol:     "ETHUSDT",
		Side:       domain.Long,
		EntryPrice: 2000.0,
		ExitPrice:  2000.0 + pnl,
		Quantity:   1.0,
		EntryTime:  exitMs - 60_000,
		ExitTime:   exitMs,
		PNL:        pnl,
		PNLPercent: pnl / 2000.0 * 100,
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: "ignored.db"})
	assert.Error(t, err)
}

func TestRepository_InsertAndFind(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id1, err := repo.InsertTrade(ctx, sampleTrade(1000, 50))
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	id2, err := repo.InsertTrade(ctx, sampleTrade(2000, -20))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	trades, err := repo.FindBySymbol(ctx, "ETHUSDT", 0)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Most recent exit first.
	assert.Equal(t, int64(2000), trades[0].ExitTime)
	assert.Equal(t, -20.0, trades[0].PNL)
	assert.Equal(t, domain.Long, trades[0].Side)
	assert.Equal(t, 2050.0, trades[1].ExitPrice)

	limited, err := repo.FindBySymbol(ctx, "ETHUSDT", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(2000), limited[0].ExitTime)
}

func TestRepository_FindBySymbol_NoRows(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	trades, err := repo.FindBySymbol(context.Background(), "DOGEUSDT", 10)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRepository_TotalPNL(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	total, err := repo.TotalPNL(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = repo.InsertTrade(ctx, sampleTrade(1000, 50))
	require.NoError(t, err)
	_, err = repo.InsertTrade(ctx, sampleTrade(2000, -20))
	require.NoError(t, err)

	total, err = repo.TotalPNL(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 30.0, total, 1e-9)
}

func TestRecorder_PersistsExitsOnly(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	rec := NewRecorder(repo, &mockLogger{})

	decision := rec.PreTrade(ctx, &domain.ProposedTrade{}, nil)
	assert.Equal(t, domain.ActionApprove, decision.Action())

	rec.PostTrade(ctx, domain.TradeEvent{
		Kind:     domain.EventEntry,
		Position: &domain.Position{Symbol: "ETHUSDT"},
	}, nil)

	trades, err := repo.FindBySymbol(ctx, "ETHUSDT", 0)
	require.NoError(t, err)
	assert.Empty(t, trades, "entries must not be recorded")

	rec.PostTrade(ctx, domain.TradeEvent{
		Kind:  domain.EventExit,
		Trade: sampleTrade(5000, 75),
	}, nil)

	trades, err = repo.FindBySymbol(ctx, "ETHUSDT", 0)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, 75.0, trades[0].PNL)
}
