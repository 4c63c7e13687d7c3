// Package journal persists evaluated scenarios. Journaling is supplemental
// to the filter contract: the stdin/stdout filter never journals, the server
// does, and a journal failure never changes a verdict.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/idhash"
	"solana-arb-filter/internal/observability"
	"solana-arb-filter/internal/pubkey"
	"solana-arb-filter/internal/storage"
)

// Journal writes evaluations to an EvaluationStore and, when configured,
// mirrors each verdict into a VerdictPointStore for analytics.
type Journal struct {
	evaluations storage.EvaluationStore
	points      storage.VerdictPointStore // optional

	// now returns the current time in Unix ms; overridable in tests.
	now func() int64
}

// New creates a Journal. points may be nil when no analytics sink is
// configured.
func New(evaluations storage.EvaluationStore, points storage.VerdictPointStore) *Journal {
	return &Journal{
		evaluations: evaluations,
		points:      points,
		now:         func() int64 { return time.Now().UnixMilli() },
	}
}

// Record persists one evaluation. Repeated identical scenarios hash to the
// same scenario_id and are silently deduplicated; the journal is idempotent.
func (j *Journal) Record(ctx context.Context, req *domain.ScenarioRequest, v *domain.Verdict) error {
	err := j.record(ctx, req, v)
	observability.RecordJournalWrite(err)
	return err
}

func (j *Journal) record(ctx context.Context, req *domain.ScenarioRequest, v *domain.Verdict) error {
	if err := validateMetadata(req); err != nil {
		return err
	}

	scenarioID := idhash.ComputeScenarioID(req)
	evaluatedAt := j.now()

	eval := &domain.Evaluation{
		ScenarioID:         scenarioID,
		AmountIn:           req.AmountIn.String(),
		Quote1Out:          req.Quote1Out.String(),
		Quote1MinOut:       req.Quote1MinOut.String(),
		Quote2Out:          req.Quote2Out.String(),
		Quote2MinOut:       req.Quote2MinOut.String(),
		MinProfit:          req.MinProfit.String(),
		FeeEstimate:        req.FeeEstimate.String(),
		Profit:             v.Profit.String(),
		ConservativeProfit: v.ConservativeProfit.String(),
		Profitable:         v.Profitable,
		Mint:               optional(req.Mint),
		Pool:               optional(req.Pool),
		EvaluatedAt:        evaluatedAt,
	}

	if err := j.evaluations.Insert(ctx, eval); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Same scenario evaluated before; nothing new to record.
			return nil
		}
		return fmt.Errorf("journal evaluation: %w", err)
	}

	if j.points == nil {
		return nil
	}

	point := &domain.VerdictPoint{
		ScenarioID:         scenarioID,
		TimestampMs:        evaluatedAt,
		Profitable:         v.Profitable,
		Profit:             v.Profit,
		ConservativeProfit: v.ConservativeProfit,
		AmountIn:           req.AmountIn,
		FeeEstimate:        req.FeeEstimate,
	}
	if err := j.points.InsertBulk(ctx, []*domain.VerdictPoint{point}); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("journal verdict point: %w", err)
	}

	return nil
}

// validateMetadata checks optional routing metadata. The profit formulas
// never touch these fields, so validation happens here rather than in the
// decoder.
func validateMetadata(req *domain.ScenarioRequest) error {
	if req.Mint != "" {
		if err := pubkey.Validate(req.Mint); err != nil {
			return fmt.Errorf("mint: %w", err)
		}
	}
	if req.Pool != "" {
		if err := pubkey.Validate(req.Pool); err != nil {
			return fmt.Errorf("pool: %w", err)
		}
	}
	return nil
}

// optional converts an empty string to a nil pointer for nullable columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
