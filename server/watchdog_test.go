package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withStubbedExit(t *testing.T) *atomic.Int32 {
	t.Helper()
	var code atomic.Int32
	code.Store(-1)
	prev := exitFunc
	exitFunc = func(c int) { code.Store(int32(c)) }
	t.Cleanup(func() { exitFunc = prev })
	return &code
}

func TestWatchdogDoesNotTripWhenBothClocksAreFresh(t *testing.T) {
	code := withStubbedExit(t)
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	runWatchdog(ctx, time.Now())
	require.Equal(t, int32(-1), code.Load())
}

// runWatchdog seeds both clocks from started at startup, so a stale trip is
// simulated by letting the watchdog run and then forcing one clock backward
// before its next tick.
func TestWatchdogTripsOnStaleResponseClock(t *testing.T) {
	code := withStubbedExit(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go runWatchdog(ctx, time.Now())
	time.Sleep(50 * time.Millisecond)
	lastOKResponse.Store(time.Now().Add(-responseLivenessLimit - time.Minute).Unix())
	require.Eventually(t, func() bool { return code.Load() == 1 }, 2*time.Second, 50*time.Millisecond)
}

func TestWatchdogTripsOnStaleBackgroundClock(t *testing.T) {
	code := withStubbedExit(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go runWatchdog(ctx, time.Now())
	time.Sleep(50 * time.Millisecond)
	backgroundLiveness.Store(time.Now().Add(-backgroundLivenessLimit - time.Minute).Unix())
	require.Eventually(t, func() bool { return code.Load() == 1 }, 2*time.Second, 50*time.Millisecond)
}
