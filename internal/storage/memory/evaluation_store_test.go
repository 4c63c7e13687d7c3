package memory

import (
	"context"
	"errors"
	"testing"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/storage"
)

func testEvaluation(id string, evaluatedAt int64, profitable bool) *domain.Evaluation {
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
		Profitable:         profitable,
		EvaluatedAt:        evaluatedAt,
	}
}

func TestEvaluationStore_InsertAndGet(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	err := store.Insert(ctx, testEvaluation("s1", 1704067200000, true))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if result.Profit != "90" || !result.Profitable {
		t.Errorf("stored evaluation mismatch: %+v", result)
	}
}

func TestEvaluationStore_NotFound(t *testing.T) {
	store := NewEvaluationStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEvaluationStore_DuplicateKey(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testEvaluation("s1", 1000, true)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.Insert(ctx, testEvaluation("s1", 2000, false))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestEvaluationStore_InvalidInput(t *testing.T) {
	store := NewEvaluationStore()

	err := store.Insert(context.Background(), &domain.Evaluation{})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEvaluationStore_GetByTimeRange(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	for _, e := range []*domain.Evaluation{
		testEvaluation("s1", 1000, true),
		testEvaluation("s2", 2000, false),
		testEvaluation("s3", 3000, true),
	} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(result))
	}
	if result[0].ScenarioID != "s1" || result[1].ScenarioID != "s2" {
		t.Errorf("wrong order: %s, %s", result[0].ScenarioID, result[1].ScenarioID)
	}
}

func TestEvaluationStore_GetProfitable(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	for _, e := range []*domain.Evaluation{
		testEvaluation("s1", 1000, true),
		testEvaluation("s2", 2000, false),
		testEvaluation("s3", 3000, true),
	} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetProfitable(ctx)
	if err != nil {
		t.Fatalf("GetProfitable failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 profitable evaluations, got %d", len(result))
	}
	if result[0].ScenarioID != "s1" || result[1].ScenarioID != "s3" {
		t.Errorf("wrong rows: %s, %s", result[0].ScenarioID, result[1].ScenarioID)
	}
}

func TestEvaluationStore_CopyOnRead(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testEvaluation("s1", 1000, true)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := store.GetByID(ctx, "s1")
	first.Profit = "tampered"

	second, _ := store.GetByID(ctx, "s1")
	if second.Profit != "90" {
		t.Error("store returned a shared reference")
	}
}
