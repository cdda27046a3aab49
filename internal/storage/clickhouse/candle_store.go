package clickhouse

import (
	"context"
	"fmt"

	"solana-multiplier-bot/internal/domain"
	"solana-multiplier-bot/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds candles for a symbol. Fails the whole batch on a
// duplicate (symbol, timeframe, timestamp_ms).
func (s *CandleStore) InsertBulk(ctx context.Context, symbol, timeframe string, candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(candles))
	for _, c := range candles {
		if _, exists := seen[c.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[c.TimestampMs] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, c := range candles {
		exists, err := s.exists(ctx, symbol, timeframe, c.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candle_history (
			symbol, timeframe, timestamp_ms, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			symbol, timeframe, uint64(c.TimestampMs),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all archived candles for a symbol and timeframe,
// ordered by timestamp ASC.
func (s *CandleStore) GetBySymbol(ctx context.Context, symbol, timeframe string) ([]domain.Candle, error) {
	query := `
		SELECT timestamp_ms, open, high, low, close, volume
		FROM candle_history
		WHERE symbol = ? AND timeframe = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, timeframe)
	if err != nil {
		return nil, fmt.Errorf("query candles by symbol: %w", err)
	}
	defer rows.Close()

	var result []domain.Candle
	for rows.Next() {
		var (
			ts     uint64
			candle domain.Candle
		)
		if err := rows.Scan(&ts, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candle.TimestampMs = int64(ts)
		result = append(result, candle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	return result, nil
}

// exists checks whether a candle row is already archived.
func (s *CandleStore) exists(ctx context.Context, symbol, timeframe string, timestampMs int64) (bool, error) {
	query := `
		SELECT count() FROM candle_history
		WHERE symbol = ? AND timeframe = ? AND timestamp_ms = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, symbol, timeframe, uint64(timestampMs)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
