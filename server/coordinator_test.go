package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Protryon/lib-rs-mirror-sub000/pages"
	"github.com/Protryon/lib-rs-mirror-sub000/server/cache"
)

func render(body string) RenderFunc {
	return func(context.Context, *pages.State) (pages.Rendered, error) {
		return pages.Rendered{Bytes: []byte(body)}, nil
	}
}

func TestCoordinatorServeRendersOnMiss(t *testing.T) {
	c := newCoordinator(cache.New(t.TempDir()))
	res, err := c.Serve(context.Background(), nil, "crate", "/crates/foo", time.Hour, time.Second, render("v1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), res.Bytes)
}

func TestCoordinatorServesFreshCacheWithoutRerendering(t *testing.T) {
	c := newCoordinator(cache.New(t.TempDir()))
	calls := 0
	rf := func(context.Context, *pages.State) (pages.Rendered, error) {
		calls++
		return pages.Rendered{Bytes: []byte("v1")}, nil
	}
	_, err := c.Serve(context.Background(), nil, "crate", "/crates/foo", time.Hour, time.Second, rf)
	require.NoError(t, err)
	res, err := c.Serve(context.Background(), nil, "crate", "/crates/foo", time.Hour, time.Second, rf)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), res.Bytes)
	require.Equal(t, 1, calls)
}

func TestCoordinatorRerendersEntryPastCacheTime(t *testing.T) {
	store := cache.New(t.TempDir())
	c := newCoordinator(store)
	require.NoError(t, store.Put("/crates/foo", cache.Entry{Bytes: []byte("stale")}))

	// cacheTime of 0 makes the cached entry older than cacheTime at once
	// (while still far inside the 7-day hard limit), forcing the
	// foreground-render path on this request.
	calls := 0
	rf := func(context.Context, *pages.State) (pages.Rendered, error) {
		calls++
		return pages.Rendered{Bytes: []byte("fresh")}, nil
	}
	res, err := c.Serve(context.Background(), nil, "crate", "/crates/foo", 0, time.Second, rf)
	require.NoError(t, err)
	require.Equal(t, []byte("fresh"), res.Bytes)
	require.Equal(t, 1, calls)
}

func TestCoordinatorPropagatesRenderError(t *testing.T) {
	c := newCoordinator(cache.New(t.TempDir()))
	rf := func(context.Context, *pages.State) (pages.Rendered, error) {
		return pages.Rendered{}, errors.New("boom")
	}
	_, err := c.Serve(context.Background(), nil, "crate", "/crates/foo", time.Hour, time.Second, rf)
	require.Error(t, err)
}
