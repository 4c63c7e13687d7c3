// Package verification re-evaluates journaled scenarios and checks that the
// stored verdicts match recomputation. Because the arithmetic is exact
// integer work, comparison is exact; there is no tolerance.
package verification

import (
	"context"
	"fmt"
	"math/big"

	"solana-arb-filter/internal/codec"
	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/evaluator"
	"solana-arb-filter/internal/storage"
)

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// Result contains the outcome of verifying a single evaluation.
type Result struct {
	ScenarioID  string            // verified scenario ID
	Match       bool              // true if all fields match
	Divergences []FieldDivergence // list of divergent fields
}

// Report contains results for batch verification.
type Report struct {
	Total     int      // total evaluations verified
	Matched   int      // evaluations that matched exactly
	Divergent int      // evaluations with divergences
	Results   []Result // individual results
}

// Verifier replays stored evaluations against the current evaluator.
type Verifier struct {
	store storage.EvaluationStore
}

// NewVerifier creates a new Verifier.
func NewVerifier(store storage.EvaluationStore) *Verifier {
	return &Verifier{store: store}
}

// VerifyEvaluation verifies a single evaluation by scenario ID. It loads the
// stored record, re-runs the evaluator on the stored inputs, and compares
// the verdict fields.
func (v *Verifier) VerifyEvaluation(ctx context.Context, scenarioID string) (*Result, error) {
	eval, err := v.store.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load evaluation %s: %w", scenarioID, err)
	}
	return verifyOne(eval)
}

// VerifyRange verifies all evaluations within [start, end] (Unix ms).
func (v *Verifier) VerifyRange(ctx context.Context, start, end int64) (*Report, error) {
	evals, err := v.store.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load evaluations: %w", err)
	}

	report := &Report{Total: len(evals)}
	for _, eval := range evals {
		result, err := verifyOne(eval)
		if err != nil {
			return nil, err
		}
		if result.Match {
			report.Matched++
		} else {
			report.Divergent++
		}
		report.Results = append(report.Results, *result)
	}

	return report, nil
}

// verifyOne re-evaluates one stored record and compares verdicts.
func verifyOne(eval *domain.Evaluation) (*Result, error) {
	verdict, err := replayEvaluation(eval)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", eval.ScenarioID, err)
	}

	divergences := compare(eval, verdict)
	return &Result{
		ScenarioID:  eval.ScenarioID,
		Match:       len(divergences) == 0,
		Divergences: divergences,
	}, nil
}

// replayEvaluation reconstructs the request from stored decimal text and
// runs the evaluator on it.
func replayEvaluation(eval *domain.Evaluation) (*domain.Verdict, error) {
	req := &domain.ScenarioRequest{}

	var err error
	parse := func(name, s string) *big.Int {
		if err != nil {
			return nil
		}
		v, perr := codec.ParseInt128(s)
		if perr != nil {
			err = fmt.Errorf("field %s: %w", name, perr)
		}
		return v
	}

	req.AmountIn = parse("amount_in", eval.AmountIn)
	req.Quote1Out = parse("quote1_out", eval.Quote1Out)
	req.Quote1MinOut = parse("quote1_min_out", eval.Quote1MinOut)
	req.Quote2Out = parse("quote2_out", eval.Quote2Out)
	req.Quote2MinOut = parse("quote2_min_out", eval.Quote2MinOut)
	req.MinProfit = parse("min_profit", eval.MinProfit)
	req.FeeEstimate = parse("fee_estimate", eval.FeeEstimate)
	if err != nil {
		return nil, err
	}

	return evaluator.Evaluate(req)
}

// compare returns divergences between the stored verdict fields and a
// replayed verdict.
func compare(stored *domain.Evaluation, replayed *domain.Verdict) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.Profit != replayed.Profit.String() {
		divergences = append(divergences, FieldDivergence{
			Field:    "profit",
			Expected: stored.Profit,
			Actual:   replayed.Profit.String(),
		})
	}

	if stored.ConservativeProfit != replayed.ConservativeProfit.String() {
		divergences = append(divergences, FieldDivergence{
			Field:    "conservative_profit",
			Expected: stored.ConservativeProfit,
			Actual:   replayed.ConservativeProfit.String(),
		})
	}

	if stored.Profitable != replayed.Profitable {
		divergences = append(divergences, FieldDivergence{
			Field:    "profitable",
			Expected: stored.Profitable,
			Actual:   replayed.Profitable,
		})
	}

	return divergences
}
