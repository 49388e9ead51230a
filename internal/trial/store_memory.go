package trial

import (
	"context"
	"sync"

	"brandgate/internal/types"
)

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu       sync.Mutex
	accounts []types.TrialAccount

	// FailLoad and FailUpdate, when set, force the corresponding operation
	// to return the error. Used to exercise the swallow-and-log paths.
	FailLoad   error
	FailUpdate error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored collection.
func (s *MemoryStore) Load(ctx context.Context) ([]types.TrialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoad != nil {
		return nil, s.FailLoad
	}
	out := make([]types.TrialAccount, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

// Update applies fn under the store mutex.
func (s *MemoryStore) Update(ctx context.Context, fn func(accounts []types.TrialAccount) []types.TrialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	cur := make([]types.TrialAccount, len(s.accounts))
	copy(cur, s.accounts)
	s.accounts = fn(cur)
	return nil
}
