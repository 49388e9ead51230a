package trial

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandgate/internal/types"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	accounts, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	account := types.TrialAccount{
		UserID:           "user_1",
		Email:            "a@b.com",
		CreatedAt:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt:        time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		CreditsRemaining: 5,
	}

	err = store.Update(context.Background(), func(accounts []types.TrialAccount) []types.TrialAccount {
		return append(accounts, account)
	})
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, account, got[0])

	// The file is a pretty-printed JSON array.
	data, err := os.ReadFile(filepath.Join(dir, trialsFileName))
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])
}

func TestFileStore_UpdatesAreSerialized(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Update(context.Background(), func(accounts []types.TrialAccount) []types.TrialAccount {
		return append(accounts, types.TrialAccount{UserID: "user_1", CreditsRemaining: 100})
	}))

	// 50 concurrent decrements must all land; no lost updates.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(context.Background(), func(accounts []types.TrialAccount) []types.TrialAccount {
				accounts[0].CreditsRemaining--
				return accounts
			})
		}()
	}
	wg.Wait()

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, got[0].CreditsRemaining)
}

func TestFileStore_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, trialsFileName), []byte("{not json"), 0o644))

	_, err = store.Load(context.Background())
	assert.Error(t, err)
}
