package memory

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/storage"
)

// VerdictPointStore is an in-memory implementation of storage.VerdictPointStore.
type VerdictPointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.VerdictPoint // keyed by composite key
}

// NewVerdictPointStore creates a new in-memory verdict point store.
func NewVerdictPointStore() *VerdictPointStore {
	return &VerdictPointStore{
		data: make(map[string]*domain.VerdictPoint),
	}
}

// Compile-time interface check.
var _ storage.VerdictPointStore = (*VerdictPointStore)(nil)

// pointKey generates a unique key for a verdict point.
func pointKey(scenarioID string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", scenarioID, timestampMs)
}

// InsertBulk adds multiple points atomically. Fails entire batch on any duplicate.
func (s *VerdictPointStore) InsertBulk(_ context.Context, points []*domain.VerdictPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.ScenarioID == "" {
			return storage.ErrInvalidInput
		}
		key := pointKey(p.ScenarioID, p.TimestampMs)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		s.data[pointKey(p.ScenarioID, p.TimestampMs)] = copyPoint(p)
	}

	return nil
}

// GetByTimeRange retrieves points within [start, end], ordered by timestamp ASC.
func (s *VerdictPointStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.VerdictPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.VerdictPoint
	for _, p := range s.data {
		if p.TimestampMs >= start && p.TimestampMs <= end {
			result = append(result, copyPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		return result[i].ScenarioID < result[j].ScenarioID
	})

	return result, nil
}

// copyPoint deep-copies a point so callers cannot mutate stored big.Ints.
func copyPoint(p *domain.VerdictPoint) *domain.VerdictPoint {
	c := *p
	c.Profit = new(big.Int).Set(p.Profit)
	c.ConservativeProfit = new(big.Int).Set(p.ConservativeProfit)
	c.AmountIn = new(big.Int).Set(p.AmountIn)
	c.FeeEstimate = new(big.Int).Set(p.FeeEstimate)
	return &c
}
