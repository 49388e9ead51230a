package usage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Archiver receives the records dropped by a prune run. Archiving is
// best-effort; a failing archiver never blocks the prune itself.
type Archiver interface {
	// Archive persists the given log lines to cold storage.
	Archive(ctx context.Context, lines [][]byte) error
}

// GzipArchiver writes pruned records to timestamped, gzip-compressed JSONL
// files alongside the live log. Each prune run producing drops creates one
// archive file; archives are never read by the service and exist purely for
// offline inspection.
type GzipArchiver struct {
	dir string
	now func() time.Time
}

// NewGzipArchiver creates a GzipArchiver writing into dataDir.
func NewGzipArchiver(dataDir string) *GzipArchiver {
	return &GzipArchiver{
		dir: dataDir,
		now: time.Now,
	}
}

// Archive writes lines to usage-archive-<UTC timestamp>.jsonl.gz.
func (a *GzipArchiver) Archive(ctx context.Context, lines [][]byte) error {
	name := fmt.Sprintf("usage-archive-%s.jsonl.gz", a.now().UTC().Format("20060102T150405"))
	path := filepath.Join(a.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	for _, line := range lines {
		if _, err := zw.Write(append(line, '\n')); err != nil {
			zw.Close()
			return fmt.Errorf("writing archive %s: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive %s: %w", path, err)
	}
	return f.Close()
}
