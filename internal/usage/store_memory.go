package usage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	lines [][]byte

	FailAppend  error
	FailRead    error
	FailRewrite error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds one line to the log.
func (s *MemoryStore) Append(ctx context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return s.FailAppend
	}
	cp := make([]byte, len(line))
	copy(cp, line)
	s.lines = append(s.lines, cp)
	return nil
}

// ReadLines returns a copy of the stored lines.
func (s *MemoryStore) ReadLines(ctx context.Context) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRead != nil {
		return nil, s.FailRead
	}
	out := make([][]byte, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

// Rewrite replaces the stored lines.
func (s *MemoryStore) Rewrite(ctx context.Context, lines [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRewrite != nil {
		return s.FailRewrite
	}
	s.lines = lines
	return nil
}
