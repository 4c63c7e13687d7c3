package storage

import (
	"context"

	"solana-arb-filter/internal/domain"
)

// EvaluationStore provides access to evaluations storage.
type EvaluationStore interface {
	// Insert adds a new evaluation. Returns ErrDuplicateKey if scenario_id exists.
	Insert(ctx context.Context, e *domain.Evaluation) error

	// GetByID retrieves an evaluation by scenario ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenarioID string) (*domain.Evaluation, error)

	// GetByTimeRange retrieves evaluations evaluated within [start, end] (inclusive),
	// ordered by evaluated_at ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Evaluation, error)

	// GetProfitable retrieves evaluations with a positive verdict,
	// ordered by evaluated_at ASC.
	GetProfitable(ctx context.Context) ([]*domain.Evaluation, error)
}

// VerdictPointStore provides access to verdict_points analytics storage.
type VerdictPointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (scenario_id, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.VerdictPoint) error

	// GetByTimeRange retrieves points within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.VerdictPoint, error)
}
