package usage

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"brandgate/internal/types"
)

// retentionWindow is how long usage records survive before Prune drops them.
const retentionWindow = 90 * 24 * time.Hour

// Meter records and aggregates usage events.
//
// Metering is strictly best-effort: a failed append is warn-logged and
// swallowed so usage logging never aborts the feature whose usage it is
// recording. This is a documented policy, not an accident of control flow.
type Meter struct {
	store    Store
	archiver Archiver
	logger   *slog.Logger
	now      func() time.Time
}

// NewMeter creates a Meter over the given store. archiver may be nil, in
// which case pruned records are simply dropped.
func NewMeter(store Store, archiver Archiver, logger *slog.Logger) *Meter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Meter{
		store:    store,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// EstimateTokens estimates the token footprint of text, at roughly one token
// per four characters. Empty text yields 0.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// EstimateCost estimates the USD cost of the given tokens at $0.02 per 1k
// tokens, rounded to 6 decimal places.
func EstimateCost(tokens int) float64 {
	cost := float64(tokens) / 1000 * 0.02
	return math.Round(cost*1e6) / 1e6
}

// Record stamps the entry with the current time and appends it to the log as
// one JSON line. Failures are warn-logged and swallowed.
func (m *Meter) Record(ctx context.Context, entry types.UsageRecord) {
	entry.Timestamp = m.now().UTC()

	line, err := json.Marshal(entry)
	if err != nil {
		m.logger.WarnContext(ctx, "usage logging failed",
			"feature", entry.Feature,
			"error", err,
		)
		return
	}

	if err := m.store.Append(ctx, line); err != nil {
		m.logger.WarnContext(ctx, "usage logging failed",
			"feature", entry.Feature,
			"error", err,
		)
	}
}

// MonthlyUsage aggregates the user's records since the first day of the
// current month (process-local timezone): total tokens, successful runs, and
// summed cost. Malformed lines are skipped; a missing or unreadable log
// yields the zero aggregate.
func (m *Meter) MonthlyUsage(ctx context.Context, userID string) types.MonthlyUsage {
	var agg types.MonthlyUsage

	lines, err := m.store.ReadLines(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to read usage log",
			"user_id", userID,
			"error", err,
		)
		return agg
	}

	now := m.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, line := range lines {
		var rec types.UsageRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.UserID != userID || rec.Timestamp.Before(monthStart) {
			continue
		}
		agg.Tokens += rec.TokensUsed
		agg.Cost += rec.CostUSD
		if rec.Success {
			agg.Runs++
		}
	}
	return agg
}

// Prune drops records older than the 90-day retention window and rewrites
// the log with the survivors. Dropped records are handed to the archiver
// (best-effort) before the rewrite. Any failure is logged and swallowed.
//
// Pruning rereads and rewrites the whole file; acceptable at low volume
// only. This is a known scaling limit, not a defect.
func (m *Meter) Prune(ctx context.Context) {
	lines, err := m.store.ReadLines(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "usage prune skipped: read failed", "error", err)
		return
	}

	cutoff := m.now().Add(-retentionWindow)

	var kept, dropped [][]byte
	for _, line := range lines {
		var rec types.UsageRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			// Malformed lines carry no timestamp to judge; drop them.
			continue
		}
		if rec.Timestamp.Before(cutoff) {
			dropped = append(dropped, line)
			continue
		}
		kept = append(kept, line)
	}

	if len(dropped) == 0 && len(kept) == len(lines) {
		return
	}

	if m.archiver != nil && len(dropped) > 0 {
		if err := m.archiver.Archive(ctx, dropped); err != nil {
			m.logger.WarnContext(ctx, "usage archive failed; pruned records discarded",
				"dropped", len(dropped),
				"error", err,
			)
		}
	}

	if err := m.store.Rewrite(ctx, kept); err != nil {
		m.logger.WarnContext(ctx, "usage prune failed: rewrite failed", "error", err)
		return
	}

	m.logger.InfoContext(ctx, "usage log pruned",
		"kept", len(kept),
		"dropped", len(dropped),
	)
}
