// Package usage implements usage metering: an append-only line-delimited log
// of usage records, token/cost estimation, monthly aggregation, and
// age-based pruning.
package usage

import "context"

// Store persists the usage log as an ordered sequence of opaque lines.
// The meter owns the JSON encoding; the store owns the line framing.
//
// Appends are incremental and crash-safe; Rewrite replaces the whole log and
// is used only by pruning. Implementations serialize Append/Rewrite against
// each other. As with the trial store, serialization is in-process only --
// separate processes sharing the file still race.
type Store interface {
	// Append adds one line to the log.
	Append(ctx context.Context, line []byte) error

	// ReadLines returns every line currently in the log. A missing backing
	// file yields an empty log, not an error.
	ReadLines(ctx context.Context) ([][]byte, error)

	// Rewrite replaces the log with the given lines (trailing newline
	// included).
	Rewrite(ctx context.Context, lines [][]byte) error
}
