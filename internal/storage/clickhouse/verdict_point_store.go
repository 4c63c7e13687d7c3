package clickhouse

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/observability"
	"solana-arb-filter/internal/storage"
)

// VerdictPointStore implements storage.VerdictPointStore using ClickHouse.
// Profit columns are Int128, which clickhouse-go maps to *big.Int, so the
// full range travels to analytics without loss.
type VerdictPointStore struct {
	conn *Conn
}

// NewVerdictPointStore creates a new VerdictPointStore.
func NewVerdictPointStore(conn *Conn) *VerdictPointStore {
	return &VerdictPointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.VerdictPointStore = (*VerdictPointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (scenario_id, timestamp_ms).
func (s *VerdictPointStore) InsertBulk(ctx context.Context, points []*domain.VerdictPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		scenarioID  string
		timestampMs int64
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.ScenarioID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.ScenarioID, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows.
	// MergeTree does not enforce uniqueness at insert time.
	for _, p := range points {
		exists, err := s.exists(ctx, p.ScenarioID, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	start := time.Now()
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO verdict_points (
			scenario_id, timestamp_ms, profitable, profit, conservative_profit, amount_in, fee_estimate
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.ScenarioID, p.TimestampMs, p.Profitable,
			p.Profit, p.ConservativeProfit, p.AmountIn, p.FeeEstimate,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	err = batch.Send()
	observability.RecordDBQuery("clickhouse", "insert_verdict_points", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves points within [start, end], ordered by timestamp ASC.
func (s *VerdictPointStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.VerdictPoint, error) {
	query := `
		SELECT scenario_id, timestamp_ms, profitable, profit, conservative_profit, amount_in, fee_estimate
		FROM verdict_points
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, scenario_id ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query verdict points by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.VerdictPoint
	for rows.Next() {
		var (
			p            domain.VerdictPoint
			profit       big.Int
			conservative big.Int
			amountIn     big.Int
			feeEstimate  big.Int
		)

		err := rows.Scan(
			&p.ScenarioID, &p.TimestampMs, &p.Profitable,
			&profit, &conservative, &amountIn, &feeEstimate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan verdict point row: %w", err)
		}

		p.Profit = &profit
		p.ConservativeProfit = &conservative
		p.AmountIn = &amountIn
		p.FeeEstimate = &feeEstimate
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdict point rows: %w", err)
	}

	return result, nil
}

// exists checks whether a point with the given key is already stored.
func (s *VerdictPointStore) exists(ctx context.Context, scenarioID string, timestampMs int64) (bool, error) {
	query := `
		SELECT count() FROM verdict_points
		WHERE scenario_id = ? AND timestamp_ms = ?
	`

	var count uint64
	row := s.conn.QueryRow(ctx, query, scenarioID, timestampMs)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
