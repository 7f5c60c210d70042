package server

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quay/zlog"
	"golang.org/x/sync/semaphore"

	"github.com/Protryon/lib-rs-mirror-sub000/pages"
	"github.com/Protryon/lib-rs-mirror-sub000/server/cache"
)

// backgroundRefreshSlots bounds concurrent background re-renders of
// soft-stale cache entries.
const backgroundRefreshSlots = 4

// foregroundRenderSlots bounds concurrent foreground re-renders: cache
// misses and hard-stale entries, both on the client's critical path.
const foregroundRenderSlots = 32

// softRefreshFloor is the minimum delay before a soft-stale entry is
// eligible for background refresh, added to cacheTime/20.
const softRefreshFloor = 5 * time.Second

// hardStaleFloor is the fixed component of the hard freshness limit,
// added to 5x cacheTime.
const hardStaleFloor = 7 * 24 * time.Hour

// RenderFunc builds one page's bytes for the current State.
type RenderFunc func(ctx context.Context, st *pages.State) (pages.Rendered, error)

// coordinator serves RenderFunc output through a cache.Store, applying the
// soft/hard freshness tiers and the background/foreground semaphores.
//
// Grounded on mirror.Manager's atomic-pointer state-swap pattern for how
// currentState is held, and on the teacher's per-request-timeout framing
// (indexer.Controller wraps each stage in a context deadline) for how
// foreground renders are bounded.
type coordinator struct {
	cache *cache.Store

	bgSem *semaphore.Weighted
	fgSem *semaphore.Weighted
}

func newCoordinator(c *cache.Store) *coordinator {
	return &coordinator{
		cache: c,
		bgSem: semaphore.NewWeighted(backgroundRefreshSlots),
		fgSem: semaphore.NewWeighted(foregroundRenderSlots),
	}
}

// result is what Serve hands back to the HTTP layer.
type result struct {
	Bytes        []byte
	LastModified time.Time
	ETag         string
}

// Serve resolves slug's page: a cache hit younger than cacheTime is served
// immediately (kicking off a background refresh if it's past the soft
// threshold); a hit older than the hard limit is deleted and re-rendered in
// the foreground; a miss is always rendered in the foreground. render and
// timeout govern the foreground path only.
func (c *coordinator) Serve(ctx context.Context, st *pages.State, route, slug string, cacheTime, timeout time.Duration, render RenderFunc) (result, error) {
	entry, age, ok, err := c.cache.Get(slug)
	if err != nil {
		zlog.Warn(ctx).Err(err).Str("slug", slug).Msg("cache read failed, re-rendering in foreground")
		ok = false
	}

	hardLimit := hardStaleFloor + 5*cacheTime
	if ok && age > hardLimit {
		if err := c.cache.Delete(slug); err != nil {
			zlog.Warn(ctx).Err(err).Str("slug", slug).Msg("failed to evict hard-stale cache entry")
		}
		ok = false
	}

	if ok && age <= cacheTime {
		softThreshold := cacheTime/20 + softRefreshFloor
		fresh := age <= softThreshold
		cacheHitsTotal.WithLabelValues(boolLabel(fresh)).Inc()
		if !fresh {
			c.maybeBackgroundRefresh(st, slug, render)
		}
		return result{Bytes: entry.Bytes, LastModified: entry.LastModified, ETag: cache.ETag(false, entry.Bytes)}, nil
	}

	// Stale-but-present (between cacheTime and hardLimit) still falls
	// through to here when the caller wants it fresh now; a background
	// refresh will have already been scheduled by an earlier request past
	// softThreshold, so this foreground render just serves the client
	// directly instead of waiting on that slot.
	return c.foregroundRender(ctx, st, route, slug, timeout, render)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (c *coordinator) foregroundRender(ctx context.Context, st *pages.State, route, slug string, timeout time.Duration, render RenderFunc) (result, error) {
	if !c.fgSem.TryAcquire(1) {
		if err := c.fgSem.Acquire(ctx, 1); err != nil {
			return result{}, fmt.Errorf("server: foreground render of %s: %w", slug, err)
		}
	}
	defer c.fgSem.Release(1)

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := prometheus.NewTimer(renderDuration.WithLabelValues(route))
	rendered, err := render(rctx, st)
	timer.ObserveDuration()
	if err != nil {
		return result{}, fmt.Errorf("server: render %s: %w", slug, err)
	}
	if err := c.cache.Put(slug, cache.Entry{Bytes: rendered.Bytes, LastModified: rendered.LastModified}); err != nil {
		zlog.Warn(ctx).Err(err).Str("slug", slug).Msg("failed to persist rendered page to cache")
	}
	return result{Bytes: rendered.Bytes, LastModified: rendered.LastModified, ETag: cache.ETag(false, rendered.Bytes)}, nil
}

// maybeBackgroundRefresh spawns a refresh goroutine if a slot is free,
// dropping the request silently otherwise (the soft-stale page already
// served the current request; the next request tries again).
func (c *coordinator) maybeBackgroundRefresh(st *pages.State, slug string, render RenderFunc) {
	if !c.bgSem.TryAcquire(1) {
		return
	}
	go func() {
		defer c.bgSem.Release(1)
		ctx := context.Background()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		rendered, err := render(ctx, st)
		if err != nil {
			zlog.Warn(ctx).Err(err).Str("slug", slug).Msg("background refresh failed")
			refreshFailures.Inc()
			return
		}
		if err := c.cache.Put(slug, cache.Entry{Bytes: rendered.Bytes, LastModified: rendered.LastModified}); err != nil {
			zlog.Warn(ctx).Err(err).Str("slug", slug).Msg("background refresh: failed to persist")
			return
		}
		refreshesTotal.Inc()
	}()
}
