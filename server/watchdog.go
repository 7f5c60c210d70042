package server

import (
	"context"
	"os"
	"time"

	"github.com/quay/zlog"
)

// responseLivenessLimit and backgroundLivenessLimit are the watchdog's two
// independent staleness budgets: the last successful HTTP response, and the
// last successful background-refresh loop tick.
const (
	responseLivenessLimit   = 5 * time.Minute
	backgroundLivenessLimit = 10 * time.Second
)

// watchdogInterval is how often the watchdog samples both clocks.
const watchdogInterval = 1 * time.Second

// exitFunc is a var so tests can stub it instead of actually exiting.
var exitFunc = os.Exit

// runWatchdog polls lastOKResponse and backgroundLiveness once per
// watchdogInterval until ctx is canceled. A lag past either limit is fatal:
// the process exits non-zero so a supervisor restarts it into a clean
// state, the same "can't self-heal, let the orchestrator do it" posture the
// teacher takes toward a poisoned mutex or a stuck executor.
func runWatchdog(ctx context.Context, started time.Time) {
	// Neither clock is set until the first response or reload-loop tick;
	// seed both at startup so a quiet-but-healthy process isn't
	// immediately judged stale.
	backgroundLiveness.Store(started.Unix())
	lastOKResponse.Store(started.Unix())

	t := time.NewTicker(watchdogInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := time.Now()
			respAge := now.Sub(time.Unix(lastOKResponse.Load(), 0))
			bgAge := now.Sub(time.Unix(backgroundLiveness.Load(), 0))
			if respAge > responseLivenessLimit {
				watchdogTripsTotal.Inc()
				zlog.Error(ctx).Dur("age", respAge).Msg("watchdog: no successful response in too long, exiting")
				exitFunc(1)
				return
			}
			if bgAge > backgroundLivenessLimit {
				watchdogTripsTotal.Inc()
				zlog.Error(ctx).Dur("age", bgAge).Msg("watchdog: background loop stalled, exiting")
				exitFunc(1)
				return
			}
		}
	}
}
