// Package memory provides in-memory store implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-multiplier-bot/internal/domain"
	"solana-multiplier-bot/internal/storage"
)

// ExecutionStore is an in-memory implementation of storage.ExecutionStore.
type ExecutionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SwapExecution // keyed by execution_id
}

// NewExecutionStore creates a new in-memory execution store.
func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		data: make(map[string]*domain.SwapExecution),
	}
}

// Insert adds an execution. Returns ErrDuplicateKey if execution_id exists.
func (s *ExecutionStore) Insert(_ context.Context, e *domain.SwapExecution) error {
	if e == nil || e.ExecutionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ExecutionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[e.ExecutionID] = &copy
	return nil
}

// GetByID retrieves an execution by its ID. Returns ErrNotFound if not exists.
func (s *ExecutionStore) GetByID(_ context.Context, executionID string) (*domain.SwapExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[executionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *e
	return &copy, nil
}

// GetBySymbol retrieves all executions for a symbol, ordered by submitted_at ASC.
func (s *ExecutionStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.SwapExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapExecution
	for _, e := range s.data {
		if e.Symbol == symbol {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt < result[j].SubmittedAt
	})

	return result, nil
}

var _ storage.ExecutionStore = (*ExecutionStore)(nil)
