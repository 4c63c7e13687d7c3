package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/observability"
	"solana-arb-filter/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore using PostgreSQL.
// Amounts are stored as TEXT; PostgreSQL numeric types are never involved,
// so full 128-bit precision survives the round trip.
type EvaluationStore struct {
	pool *Pool
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(pool *Pool) *EvaluationStore {
	return &EvaluationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

const evaluationColumns = `
	scenario_id, amount_in, quote1_out, quote1_min_out, quote2_out, quote2_min_out,
	min_profit, fee_estimate, profit, conservative_profit, profitable,
	mint, pool, evaluated_at, created_at
`

// Insert adds a new evaluation. Returns ErrDuplicateKey if scenario_id exists.
func (s *EvaluationStore) Insert(ctx context.Context, e *domain.Evaluation) error {
	query := `
		INSERT INTO evaluations (
			scenario_id, amount_in, quote1_out, quote1_min_out, quote2_out, quote2_min_out,
			min_profit, fee_estimate, profit, conservative_profit, profitable,
			mint, pool, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		e.ScenarioID,
		e.AmountIn,
		e.Quote1Out,
		e.Quote1MinOut,
		e.Quote2Out,
		e.Quote2MinOut,
		e.MinProfit,
		e.FeeEstimate,
		e.Profit,
		e.ConservativeProfit,
		e.Profitable,
		e.Mint,
		e.Pool,
		e.EvaluatedAt,
	)
	observability.RecordDBQuery("postgres", "insert_evaluation", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetByID retrieves an evaluation by scenario ID. Returns ErrNotFound if not exists.
func (s *EvaluationStore) GetByID(ctx context.Context, scenarioID string) (*domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE scenario_id = $1`

	row := s.pool.QueryRow(ctx, query, scenarioID)

	e, err := scanEvaluation(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get evaluation by id: %w", err)
	}
	return e, nil
}

// GetByTimeRange retrieves evaluations within [start, end], ordered by evaluated_at ASC.
func (s *EvaluationStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Evaluation, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE evaluated_at >= $1 AND evaluated_at <= $2
		ORDER BY evaluated_at ASC, scenario_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get evaluations by time range: %w", err)
	}
	defer rows.Close()

	return scanEvaluations(rows)
}

// GetProfitable retrieves evaluations with a positive verdict, ordered by evaluated_at ASC.
func (s *EvaluationStore) GetProfitable(ctx context.Context) ([]*domain.Evaluation, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE profitable
		ORDER BY evaluated_at ASC, scenario_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get profitable evaluations: %w", err)
	}
	defer rows.Close()

	return scanEvaluations(rows)
}

// scanEvaluation scans a single row into an Evaluation.
func scanEvaluation(row pgx.Row) (*domain.Evaluation, error) {
	var e domain.Evaluation
	err := row.Scan(
		&e.ScenarioID,
		&e.AmountIn,
		&e.Quote1Out,
		&e.Quote1MinOut,
		&e.Quote2Out,
		&e.Quote2MinOut,
		&e.MinProfit,
		&e.FeeEstimate,
		&e.Profit,
		&e.ConservativeProfit,
		&e.Profitable,
		&e.Mint,
		&e.Pool,
		&e.EvaluatedAt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// scanEvaluations scans multiple rows into a slice of Evaluation.
func scanEvaluations(rows pgx.Rows) ([]*domain.Evaluation, error) {
	var evals []*domain.Evaluation

	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		evals = append(evals, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation rows: %w", err)
	}

	return evals, nil
}
