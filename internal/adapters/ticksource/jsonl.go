// Package ticksource reads tick streams for backtest runs.
package ticksource

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tickbacktest/internal/domain"
	"tickbacktest/internal/ports"
)

// tickRecord is the wire form of one line in a tick file.
type tickRecord struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// JSONL reads ticks from a JSON-lines file, one object per line with
// timestamp (Unix ms), price and volume fields. The symbol is not part
// of the file and is stamped onto every tick from configuration.
type JSONL struct {
	symbol  string
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// OpenJSONL opens a tick file for sequential reading.
func OpenJSONL(path, symbol string) (*JSONL, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required for tick source", ports.ErrConfiguration)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tick file '%s': %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	// Lines are tiny but leave room for exchange dumps with extra fields.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONL{symbol: symbol, file: f, scanner: scanner}, nil
}

// Next implements ports.TickSource. It returns ErrSourceExhausted at
// end of file and ErrMalformedRecord for a line that does not parse;
// blank lines are skipped.
func (j *JSONL) Next(ctx context.Context) (*domain.Tick, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !j.scanner.Scan() {
			if err := j.scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed reading tick file: %w", err)
			}
			return nil, ports.ErrSourceExhausted
		}
		j.line++

		raw := j.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec tickRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", j.line, ports.ErrMalformedRecord, err)
		}
		return &domain.Tick{
			Timestamp: rec.Timestamp,
			Price:     rec.Price,
			Volume:    rec.Volume,
			Symbol:    j.symbol,
		}, nil
	}
}

// Close releases the underlying file.
func (j *JSONL) Close() error { return j.file.Close() }

// WriteJSONL writes ticks to path in the format OpenJSONL reads. It
// is used by the fetch tool to produce tick files.
func WriteJSONL(path string, ticks []*domain.Tick) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tick file '%s': %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, t := range ticks {
		if err := enc.Encode(tickRecord{Timestamp: t.Timestamp, Price: t.Price, Volume: t.Volume}); err != nil {
			return fmt.Errorf("failed to encode tick: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush tick file: %w", err)
	}
	return nil
}
