// Package trial implements the trial-credit ledger: a per-user record with a
// 14-day window and a small credit balance, backed by a flat JSON file.
package trial

import (
	"context"

	"brandgate/internal/types"
)

// Store persists the trial account collection.
//
// The collection is small (one record per signup) and every mutation is a
// full read-modify-write of the whole collection. Implementations MUST
// serialize Update calls so two concurrent mutations cannot clobber each
// other's writes; Load may observe any committed state. This single-writer
// discipline is the chosen answer to the lost-update hazard inherent in
// whole-file rewrites -- no stronger transactional guarantee (atomic rename,
// fsync, cross-process locking) is provided, so concurrent processes sharing
// one file still race.
type Store interface {
	// Load returns the full collection. A missing backing file yields an
	// empty collection, not an error.
	Load(ctx context.Context) ([]types.TrialAccount, error)

	// Update applies fn to the current collection and persists the result.
	// fn receives a private copy and returns the collection to store.
	// Calls are serialized.
	Update(ctx context.Context, fn func(accounts []types.TrialAccount) []types.TrialAccount) error
}
