package verification

import (
	"context"
	"testing"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/storage/memory"
)

func storedEvaluation(id string, evaluatedAt int64) *domain.Evaluation {
	return &domain.Evaluation{
		ScenarioID:         id,
		AmountIn:           "1000",
		Quote1Out:          "2000",
		Quote1MinOut:       "1900",
		Quote2Out:          "1100",
		Quote2MinOut:       "1050",
		MinProfit:          "40",
		FeeEstimate:        "10",
		Profit:             "90",
		ConservativeProfit: "40",
		Profitable:         true,
		EvaluatedAt:        evaluatedAt,
	}
}

func TestVerifyEvaluation_Match(t *testing.T) {
	store := memory.NewEvaluationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, storedEvaluation("s1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := NewVerifier(store).VerifyEvaluation(ctx, "s1")
	if err != nil {
		t.Fatalf("VerifyEvaluation failed: %v", err)
	}

	if !result.Match {
		t.Errorf("expected match, divergences: %+v", result.Divergences)
	}
}

func TestVerifyEvaluation_Divergence(t *testing.T) {
	store := memory.NewEvaluationStore()
	ctx := context.Background()

	tampered := storedEvaluation("s1", 1000)
	tampered.Profit = "91"
	tampered.Profitable = false
	if err := store.Insert(ctx, tampered); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := NewVerifier(store).VerifyEvaluation(ctx, "s1")
	if err != nil {
		t.Fatalf("VerifyEvaluation failed: %v", err)
	}

	if result.Match {
		t.Fatal("expected divergence")
	}
	if len(result.Divergences) != 2 {
		t.Fatalf("expected 2 divergences, got %+v", result.Divergences)
	}
	if result.Divergences[0].Field != "profit" || result.Divergences[1].Field != "profitable" {
		t.Errorf("wrong divergence fields: %+v", result.Divergences)
	}
}

func TestVerifyRange(t *testing.T) {
	store := memory.NewEvaluationStore()
	ctx := context.Background()

	good := storedEvaluation("s1", 1000)
	bad := storedEvaluation("s2", 2000)
	bad.ConservativeProfit = "0"

	if err := store.Insert(ctx, good); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, bad); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	report, err := NewVerifier(store).VerifyRange(ctx, 0, 3000)
	if err != nil {
		t.Fatalf("VerifyRange failed: %v", err)
	}

	if report.Total != 2 || report.Matched != 1 || report.Divergent != 1 {
		t.Errorf("report: %+v", report)
	}
}

func TestVerifyRange_Empty(t *testing.T) {
	report, err := NewVerifier(memory.NewEvaluationStore()).VerifyRange(context.Background(), 0, 1000)
	if err != nil {
		t.Fatalf("VerifyRange failed: %v", err)
	}
	if report.Total != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}
