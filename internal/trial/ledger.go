package trial

import (
	"context"
	"log/slog"
	"time"

	"brandgate/internal/types"
)

const (
	// initialCredits is the allowance granted at signup.
	initialCredits = 5
	// trialWindow is how long a trial account stays visible after creation.
	trialWindow = 14 * 24 * time.Hour
)

// Ledger provides create/read/consume operations over trial accounts.
//
// Persistence failures never propagate past the ledger: Create still returns
// the constructed record, reads fall back to absent, Consume to false. The
// design prioritizes "feature still runs" over durable bookkeeping.
type Ledger struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewLedger creates a Ledger over the given store.
func NewLedger(store Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create constructs a trial account with the initial allowance and a 14-day
// window, and appends it to the store best-effort: a persistence failure is
// logged and swallowed, and the constructed record is returned regardless.
func (l *Ledger) Create(ctx context.Context, userID, email string) types.TrialAccount {
	now := l.now().UTC()
	account := types.TrialAccount{
		UserID:           userID,
		Email:            email,
		CreatedAt:        now,
		ExpiresAt:        now.Add(trialWindow),
		CreditsRemaining: initialCredits,
		RunsCompleted:    0,
	}

	err := l.store.Update(ctx, func(accounts []types.TrialAccount) []types.TrialAccount {
		return append(accounts, account)
	})
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to persist trial account",
			"user_id", userID,
			"error", err,
		)
	}

	return account
}

// Get returns the trial account for userID, or ok=false when no record
// matches or the record's window has closed. Expired accounts are invisible,
// not deleted. Store failures also yield ok=false.
func (l *Ledger) Get(ctx context.Context, userID string) (types.TrialAccount, bool) {
	accounts, err := l.store.Load(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to load trial accounts",
			"user_id", userID,
			"error", err,
		)
		return types.TrialAccount{}, false
	}

	for _, a := range accounts {
		if a.UserID != userID {
			continue
		}
		if a.Expired(l.now()) {
			return types.TrialAccount{}, false
		}
		return a, true
	}
	return types.TrialAccount{}, false
}

// Consume spends one credit: it decrements CreditsRemaining, increments
// RunsCompleted, and persists the collection. Returns false without mutation
// when no record exists, the balance is already zero, or persistence fails.
//
// Consume deliberately does NOT check expiry -- it re-reads the persisted
// collection and looks only at the balance. This asymmetry with Get matches
// the ledger's contract; callers wanting expiry enforcement check
// HasCredits first.
func (l *Ledger) Consume(ctx context.Context, userID string) bool {
	consumed := false
	err := l.store.Update(ctx, func(accounts []types.TrialAccount) []types.TrialAccount {
		for i := range accounts {
			if accounts[i].UserID != userID {
				continue
			}
			if accounts[i].CreditsRemaining <= 0 {
				return accounts
			}
			accounts[i].CreditsRemaining--
			accounts[i].RunsCompleted++
			consumed = true
			return accounts
		}
		return accounts
	})
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to consume trial credit",
			"user_id", userID,
			"error", err,
		)
		return false
	}
	return consumed
}

// HasCredits reports whether the user has a live (unexpired) trial account
// with a positive balance.
func (l *Ledger) HasCredits(ctx context.Context, userID string) bool {
	account, ok := l.Get(ctx, userID)
	return ok && account.CreditsRemaining > 0
}
