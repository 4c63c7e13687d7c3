package memory

import (
	"context"
	"sort"
	"sync"

	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/storage"
)

// EvaluationStore is an in-memory implementation of storage.EvaluationStore.
type EvaluationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Evaluation // keyed by scenario_id
}

// NewEvaluationStore creates a new in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		data: make(map[string]*domain.Evaluation),
	}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Insert adds a new evaluation. Returns ErrDuplicateKey if scenario_id exists.
func (s *EvaluationStore) Insert(_ context.Context, e *domain.Evaluation) error {
	if e == nil || e.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ScenarioID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[e.ScenarioID] = &copy
	return nil
}

// GetByID retrieves an evaluation by scenario ID. Returns ErrNotFound if not exists.
func (s *EvaluationStore) GetByID(_ context.Context, scenarioID string) (*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[scenarioID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *e
	return &copy, nil
}

// GetByTimeRange retrieves evaluations within [start, end], ordered by evaluated_at ASC.
func (s *EvaluationStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Evaluation
	for _, e := range s.data {
		if e.EvaluatedAt >= start && e.EvaluatedAt <= end {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortEvaluations(result)
	return result, nil
}

// GetProfitable retrieves evaluations with a positive verdict, ordered by evaluated_at ASC.
func (s *EvaluationStore) GetProfitable(_ context.Context) ([]*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Evaluation
	for _, e := range s.data {
		if e.Profitable {
			copy := *e
			result = append(result, &copy)
		}
	}

	sortEvaluations(result)
	return result, nil
}

// sortEvaluations orders by evaluated_at ASC with scenario_id as tiebreaker
// for deterministic output.
func sortEvaluations(evals []*domain.Evaluation) {
	sort.Slice(evals, func(i, j int) bool {
		if evals[i].EvaluatedAt != evals[j].EvaluatedAt {
			return evals[i].EvaluatedAt < evals[j].EvaluatedAt
		}
		return evals[i].ScenarioID < evals[j].ScenarioID
	})
}
