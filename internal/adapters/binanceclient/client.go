// Package binanceclient fetches historical aggregated trades from
// Binance futures, the raw material for tick files.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// Binance caps aggTrades pages at 1000 records.
	maxPageSize = 1000
)

// Client wraps the go-binance futures client for public market data.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
}

// Config holds configuration specific to the Binance client adapter.
// Keys are optional: aggregated trades are a public endpoint.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for Binance client", ports.ErrConfiguration)
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL})

	return &Client{futuresClient: client, logger: cfg.Logger}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		default:
			mappedErr = ports.ErrExchangeUnavailable
		}
		c.logger.Error(ctx, err, "Binance API error", fields)
		return fmt.Errorf("%s: %w: %v", operation, mappedErr, apiErr.Message)
	}

	c.logger.Error(ctx, err, "Binance request failed", fields)
	return fmt.Errorf("%s: %w: %v", operation, ports.ErrExchangeUnavailable, err)
}

// FetchAggTrades downloads every aggregated trade for symbol in
// [from, to), paging through the API by timestamp. Results come back
// as ticks in ascending time order.
func (c *Client) FetchAggTrades(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Tick, error) {
	const op = "FetchAggTrades"
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ports.ErrConfiguration)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: time range [%s, %s) is empty", ports.ErrConfiguration, from, to)
	}

	var ticks []*domain.Tick
	cursor := from.UnixMilli()
	end := to.UnixMilli()

	for cursor < end {
		page, err := c.futuresClient.NewAggTradesService().
			Symbol(symbol).
			StartTime(cursor).
			EndTime(end).
			Limit(maxPageSize).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(page) == 0 {
			break
		}

		for _, at := range page {
			if at.Timestamp >= end {
				continue
			}
			tick, err := tickFromAggTrade(symbol, at)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			ticks = append(ticks, tick)
		}

		if len(page) < maxPageSize {
			break
		}
		// Trades sharing the last millisecond would repeat if the
		// cursor stayed on it; advancing by one can at worst drop
		// same-millisecond tail trades, which candle building
		// tolerates.
		cursor = page[len(page)-1].Timestamp + 1
	}

	c.logger.Info(ctx, "Aggregated trades fetched", map[string]interface{}{
		"symbol": symbol,
		"count":  len(ticks),
	})
	return ticks, nil
}

func tickFromAggTrade(symbol string, at *futures.AggTrade) (*domain.Tick, error) {
	price, err := strconv.ParseFloat(at.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", at.Price, err)
	}
	qty, err := strconv.ParseFloat(at.Quantity, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quantity %q: %w", at.Quantity, err)
	}
	return &domain.Tick{
		Timestamp: at.Timestamp,
		Price:     price,
		Volume:    qty,
		Symbol:    symbol,
	}, nil
}
