package mirror

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/quay/zlog"
)

// DefaultInterval is how often Start reloads the mirror when the caller
// doesn't override it.
const DefaultInterval = 10 * time.Minute

// Checkout abstracts over refreshing the on-disk mirror directory before a
// reload. Implementations typically shell out to git or use a
// VCS collaborator (collab.VCSCheckout) against the upstream index repo.
type Checkout interface {
	Refresh(ctx context.Context, dir string) error
}

// Manager owns the current Snapshot and reloads it on an interval.
//
// Grounded on claircore's libvuln/updates.Manager (libvuln/updates/manager.go):
// the same Start-loops-a-ticker-calling-Run shape, and the same "atomically
// swap a shared pointer so in-flight readers finish against the old value"
// policy this design mandates for the registry-mirror snapshot.
type Manager struct {
	dir      string
	checkout Checkout
	interval time.Duration

	current atomic.Pointer[Snapshot]
}

// NewManager constructs a Manager that reloads dir's mirror files on
// Start, refreshing them via checkout first. checkout may be nil to load
// whatever's on disk without refreshing (useful offline / in tests).
func NewManager(dir string, checkout Checkout) *Manager {
	return &Manager{dir: dir, checkout: checkout, interval: DefaultInterval}
}

// WithInterval overrides DefaultInterval.
func (m *Manager) WithInterval(d time.Duration) *Manager {
	m.interval = d
	return m
}

// Current returns the most recently loaded Snapshot, or nil if Run/Start
// hasn't completed a successful load yet.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Start performs an initial load then reloads on every tick until ctx is
// canceled. Start must only be called once between context cancellations.
func (m *Manager) Start(ctx context.Context) error {
	zlog.Info(ctx).Msg("loading initial registry mirror")
	if err := m.Run(ctx); err != nil {
		zlog.Error(ctx).Err(err).Msg("initial mirror load failed")
	}

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := m.Run(ctx); err != nil {
				zlog.Error(ctx).Err(err).Msg("mirror reload failed, keeping previous snapshot")
			}
		}
	}
}

// Run refreshes the on-disk mirror (if a Checkout is configured), loads a
// new Snapshot, and atomically swaps it in. It leaves the current snapshot
// untouched on any failure.
func (m *Manager) Run(ctx context.Context) error {
	if m.checkout != nil {
		if err := m.checkout.Refresh(ctx, m.dir); err != nil {
			return fmt.Errorf("mirror: refresh %s: %w", m.dir, err)
		}
	}
	snap, err := Load(m.dir)
	if err != nil {
		return fmt.Errorf("mirror: load %s: %w", m.dir, err)
	}
	m.current.Store(snap)
	zlog.Info(ctx).Int("crates", snap.Len()).Msg("registry mirror reloaded")
	return nil
}
