// Package sqlite persists closed trades so runs can be compared after
// the fact.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TradeRepository interface using SQLite.
type Repository struct {
	db       *sql.DB
	logger   ports.Logger
	runID    string
	strategy string
}

// Config holds configuration for the SQLite repository. RunID and
// Strategy label every inserted trade so separate runs stay
// distinguishable in one database file.
type Config struct {
	DBPath   string
	Logger   ports.Logger
	RunID    string
	Strategy string
}

// NewRepository opens (creating if needed) the trade database.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for SQLite repository", ports.ErrConfiguration)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtest.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits
	// from a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	runID := cfg.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}
	repo := &Repository{db: db, logger: cfg.Logger, runID: runID, strategy: cfg.Strategy}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite trade store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist. Timestamps are
// Unix milliseconds.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		strategy TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		pnl REAL NOT NULL,
		pnl_percent REAL NOT NULL,
		entry_time INTEGER NOT NULL,
		exit_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_symbol_exit_time ON trade_history (symbol, exit_time);
	CREATE INDEX IF NOT EXISTS idx_trade_history_run ON trade_history (run_id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTrade saves one closed trade and returns its assigned ID.
func (r *Repository) InsertTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trade_history (run_id, strategy, symbol, side, entry_price, exit_price, quantity, pnl, pnl_percent, entry_time, exit_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		r.runID, r.strategy, trade.Symbol, string(trade.Side), trade.EntryPrice, trade.ExitPrice,
		trade.Quantity, trade.PNL, trade.PNLPercent, trade.EntryTime, trade.ExitTime)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %w", trade.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Symbol, err)
	}
	r.logger.Debug(ctx, "Trade recorded", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol, "pnl": trade.PNL})
	return id, nil
}

// FindBySymbol retrieves recorded trades for a symbol, most recent
// exits first. A non-positive limit returns every trade.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, side, entry_price, exit_price, quantity, pnl, pnl_percent, entry_time, exit_time
	FROM trade_history
	WHERE symbol = ?
	ORDER BY exit_time DESC
	LIMIT ?`

	if limit <= 0 {
		limit = -1 // SQLite treats a negative limit as unbounded
	}
	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		var t domain.Trade
		var side string
		if err := rows.Scan(&t.ID, &t.Symbol, &side, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &t.PNL, &t.PNLPercent, &t.EntryTime, &t.ExitTime); err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		t.Side = domain.Side(side)
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows for symbol %s: %w", symbol, err)
	}
	return trades, nil
}

// TotalPNL sums the recorded PNL for a symbol.
func (r *Repository) TotalPNL(ctx context.Context, symbol string) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl), 0) FROM trade_history WHERE symbol = ?`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, symbol).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum PNL for symbol %s: %w", symbol, err)
	}
	return total, nil
}
