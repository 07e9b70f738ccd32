package worker

// orphan_reaper.go: removes uploaded files that no documents row points to.
// They appear when a process dies between writing the file and committing
// the row, or between committing a replacement and removing the old file.

import (
	"context"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/infra"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	reapTimeout = 4 * time.Minute

	// refBatchSize bounds the filenames sent per lookup; each one is a bind
	// parameter and Postgres caps a statement at 65535 of them.
	refBatchSize = 1000
)

// FileLister is the disk side the reaper scans.
type FileLister interface {
	List() ([]infra.DiskFile, error)
	Remove(path string) error
}

// ReferenceChecker reports which filenames are still referenced by a row.
type ReferenceChecker interface {
	ReferencedFilenames(ctx context.Context, names []string) (map[string]bool, error)
}

type OrphanReaper struct {
	files FileLister
	refs  ReferenceChecker
	grace time.Duration
	batch int
	now   func() time.Time
}

// NewOrphanReaper builds a reaper that ignores files younger than grace so
// an upload in flight is never mistaken for an orphan.
func NewOrphanReaper(files FileLister, refs ReferenceChecker, grace time.Duration) *OrphanReaper {
	return &OrphanReaper{files: files, refs: refs, grace: grace, batch: refBatchSize, now: time.Now}
}

// Start schedules the reaper with robfig/cron and returns the running
// scheduler; call Stop on it during shutdown.
func (r *OrphanReaper) Start(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reapTimeout)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			log.Error().Err(err).Msg("orphan_reaper: run failed")
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", schedule).Dur("grace", r.grace).Msg("orphan_reaper: started")
	return c, nil
}

// Run performs one sweep and returns how many files were removed.
func (r *OrphanReaper) Run(ctx context.Context) (int, error) {
	files, err := r.files.List()
	if err != nil {
		return 0, err
	}

	threshold := r.now().Add(-r.grace)
	candidates := make([]infra.DiskFile, 0, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.ModTime.Before(threshold) {
			candidates = append(candidates, f)
			names = append(names, f.Filename)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	referenced, err := r.referenced(ctx, names)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range candidates {
		if referenced[f.Filename] {
			continue
		}
		if err := r.files.Remove(f.Path); err != nil {
			log.Warn().Err(err).Str("path", f.Path).Msg("orphan_reaper: remove failed")
			continue
		}
		removed++
	}
	log.Info().Int("scanned", len(files)).Int("removed", removed).Msg("orphan_reaper: sweep done")
	return removed, nil
}

func (r *OrphanReaper) referenced(ctx context.Context, names []string) (map[string]bool, error) {
	out := make(map[string]bool, len(names))
	for start := 0; start < len(names); start += r.batch {
		end := min(start+r.batch, len(names))
		found, err := r.refs.ReferencedFilenames(ctx, names[start:end])
		if err != nil {
			return nil, err
		}
		for n := range found {
			out[n] = true
		}
	}
	return out, nil
}
