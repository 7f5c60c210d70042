package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quay/zlog"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// ReindexBatchSize bounds one scheduler tick's worth of work, matching
// store.Reader.CratesToReindex's own 1000-row cap.
const ReindexBatchSize = 1000

// DefaultReindexInterval is how often the scheduler polls for due crates
// when the caller doesn't override it.
const DefaultReindexInterval = 5 * time.Minute

// MirrorSource supplies the current registry mirror snapshot. mirror.Manager
// satisfies this; tests can substitute a fixed snapshot.
type MirrorSource interface {
	Current() *mirror.Snapshot
}

// Scheduler drives the "background loop periodically re-ingests packages
// whose stored next_update timestamp has passed" half of the data flow: it
// polls store.Reader.CratesToReindex and feeds each due origin's latest
// mirror record back through Pipeline.IngestVersion.
//
// Grounded on mirror.Manager's ticker-loop shape (mirror/manager.go), the
// same "tick, do a bounded unit of work, log and continue on a non-fatal
// per-item failure" pattern.
type Scheduler struct {
	Reader   store.Reader
	Pipeline *Pipeline
	Mirror   MirrorSource
	Interval time.Duration
}

// Run polls for due crates on Interval (or DefaultReindexInterval) until
// ctx is canceled, ingesting each against the current mirror snapshot.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultReindexInterval
	}

	zlog.Info(ctx).Msg("scheduler: running initial reindex sweep")
	s.sweep(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one bounded reindex pass; individual ingestion failures are
// logged and skipped rather than aborting the whole sweep (the crate's
// next_update is left unadvanced on total failure, so CratesToReindex hands
// it back next time).
func (s *Scheduler) sweep(ctx context.Context) {
	due, err := s.Reader.CratesToReindex(ctx, currentTime())
	if err != nil {
		zlog.Error(ctx).Err(err).Msg("scheduler: failed to list crates due for reindex")
		return
	}
	if len(due) == 0 {
		return
	}
	if len(due) > ReindexBatchSize {
		due = due[:ReindexBatchSize]
	}
	zlog.Info(ctx).Int("due", len(due)).Msg("scheduler: reindexing due crates")

	snap := s.Mirror.Current()
	for _, origin := range due {
		if err := s.reindexOne(ctx, snap, origin); err != nil {
			zlog.Warn(ctx).Err(err).Str("origin", originLabel(origin)).Msg("scheduler: reindex failed, will retry next sweep")
		}
	}
}

func (s *Scheduler) reindexOne(ctx context.Context, snap *mirror.Snapshot, origin ci.Origin) error {
	if !origin.IsRegistry() {
		// VCS-origin crates don't have a registry mirror entry to refresh
		// against; RepoPipeline.IndexRepo handles their version discovery
		// on its own schedule instead.
		return nil
	}
	if snap == nil {
		return fmt.Errorf("ingest: no mirror snapshot loaded yet")
	}
	entry, ok := snap.CrateByLowercaseName(strings.ToLower(origin.Name))
	if !ok || len(entry.Versions) == 0 {
		return fmt.Errorf("ingest: %s not found in mirror snapshot", origin.Name)
	}
	latest := entry.Versions[len(entry.Versions)-1]
	return s.Pipeline.IngestVersion(ctx, origin, latest, VersionMeta{})
}

func originLabel(o ci.Origin) string {
	if o.IsRegistry() {
		return o.Name
	}
	return string(o.Host) + "/" + o.Owner + "/" + o.Repo + "/" + o.Package
}
