package server

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/quay/zlog"

	"github.com/Protryon/lib-rs-mirror-sub000/pages"
)

// StateBuilder constructs a fresh pages.State (new mirror snapshot, new
// database connections) for a reload. Build's own errors are logged and
// leave the previous State in place; Server keeps serving against it.
type StateBuilder func(ctx context.Context) (*pages.State, error)

// Server is the page-serving HTTP surface: a chi router over a shared,
// atomically-swapped pages.State, backed by a coordinator that applies
// cache freshness tiers.
type Server struct {
	state         atomic.Pointer[pages.State]
	build         StateBuilder
	coord         *coordinator
	renderer      *pages.Renderer
	staticPageDir string // documentRoot/page, holding {name}.md files; "" disables static pages

	reloadRequested atomic.Bool
}

// WithStaticPageDir sets the directory static "/{name}" pages are served
// from (the upstream DOCUMENT_ROOT's "page" subdirectory).
func (s *Server) WithStaticPageDir(dir string) *Server {
	s.staticPageDir = dir
	return s
}

// currentState returns the State the next request should render against.
func (s *Server) currentState() *pages.State {
	return s.state.Load()
}

// RequestReload sets the flag the background loop picks up on its next
// tick. Safe to call from a signal handler.
func (s *Server) RequestReload() {
	s.reloadRequested.Store(true)
}

// RunBackground starts the reload loop, the SIGHUP/SIGUSR1 relay, and the
// liveness watchdog, blocking until ctx is canceled. The caller runs this
// alongside http.Server.ListenAndServe, typically in its own goroutine.
func (s *Server) RunBackground(ctx context.Context) {
	started := time.Now()
	go listenForSignals(ctx, s)
	go runWatchdog(ctx, started)
	s.runReloadLoop(ctx)
}

// runReloadLoop ticks once per second for the life of ctx: it doubles as the
// watchdog's background-loop heartbeat (backgroundLiveness is updated every
// tick regardless of whether a reload is pending, proving the loop itself
// hasn't wedged) and, when RequestReload has set the flag, builds a fresh
// State and swaps it in.
//
// Grounded on mirror.Manager.Start's ticker-loop shape, generalized to also
// serve as the liveness heartbeat the watchdog expects.
func (s *Server) runReloadLoop(ctx context.Context) {
	t := time.NewTicker(1 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			backgroundLiveness.Store(time.Now().Unix())
			if s.reloadRequested.CompareAndSwap(true, false) {
				s.reload(ctx)
			}
		}
	}
}

func (s *Server) reload(ctx context.Context) {
	zlog.Info(ctx).Msg("reload requested, rebuilding state")
	next, err := s.build(ctx)
	if err != nil {
		zlog.Error(ctx).Err(err).Msg("reload: failed to build new state, keeping previous")
		return
	}
	s.state.Store(next)
	zlog.Info(ctx).Int("crates", next.TotalCrates).Msg("reload complete, state swapped")
}

// listenForSignals relays SIGHUP/SIGUSR1 into RequestReload until ctx is
// canceled.
func listenForSignals(ctx context.Context, s *Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			s.RequestReload()
		}
	}
}
