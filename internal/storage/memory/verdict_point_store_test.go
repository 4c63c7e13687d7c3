package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/storage"
)

func testPoint(id string, ts int64) *domain.VerdictPoint {
	return &domain.VerdictPoint{
		ScenarioID:         id,
		TimestampMs:        ts,
		Profitable:         true,
		Profit:             big.NewInt(90),
		ConservativeProfit: big.NewInt(40),
		AmountIn:           big.NewInt(1000),
		FeeEstimate:        big.NewInt(10),
	}
}

func TestVerdictPointStore_InsertBulkAndGet(t *testing.T) {
	store := NewVerdictPointStore()
	ctx := context.Background()

	points := []*domain.VerdictPoint{
		testPoint("s1", 1000),
		testPoint("s2", 2000),
		testPoint("s3", 3000),
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 points, got %d", len(result))
	}
	if result[0].ScenarioID != "s1" || result[1].ScenarioID != "s2" {
		t.Errorf("wrong order: %s, %s", result[0].ScenarioID, result[1].ScenarioID)
	}
}

func TestVerdictPointStore_DuplicateInBatch(t *testing.T) {
	store := NewVerdictPointStore()

	err := store.InsertBulk(context.Background(), []*domain.VerdictPoint{
		testPoint("s1", 1000),
		testPoint("s1", 1000),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestVerdictPointStore_DuplicateAcrossBatches(t *testing.T) {
	store := NewVerdictPointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.VerdictPoint{testPoint("s1", 1000)}); err != nil {
		t.Fatalf("first InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.VerdictPoint{testPoint("s1", 1000)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestVerdictPointStore_EmptyBatch(t *testing.T) {
	store := NewVerdictPointStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestVerdictPointStore_CopyOnRead(t *testing.T) {
	store := NewVerdictPointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.VerdictPoint{testPoint("s1", 1000)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, _ := store.GetByTimeRange(ctx, 0, 2000)
	first[0].Profit.SetInt64(-1)

	second, _ := store.GetByTimeRange(ctx, 0, 2000)
	if second[0].Profit.String() != "90" {
		t.Error("store returned a shared big.Int")
	}
}
