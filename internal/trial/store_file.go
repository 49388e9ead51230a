package trial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"brandgate/internal/types"
)

// trialsFileName is the trial ledger file under the data directory.
const trialsFileName = "trial-accounts.json"

// FileStore is the default Store: a pretty-printed JSON array in a single
// file. A process-wide mutex serializes read-modify-write cycles.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore rooted at dataDir. The directory is
// created if absent; the file itself is created lazily on first Update.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, trialsFileName)}, nil
}

// Load returns the full collection. A missing file yields an empty
// collection.
func (s *FileStore) Load(ctx context.Context) ([]types.TrialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update applies fn under the store mutex and rewrites the file.
func (s *FileStore) Update(ctx context.Context, fn func(accounts []types.TrialAccount) []types.TrialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return err
	}

	accounts = fn(accounts)

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding trial accounts: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// load reads and decodes the file. Callers must hold s.mu.
func (s *FileStore) load() ([]types.TrialAccount, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var accounts []types.TrialAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return accounts, nil
}
