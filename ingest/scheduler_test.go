package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// reindexReader wraps a nil store.Reader, overriding only CratesToReindex;
// Scheduler.sweep never calls any other Reader method.
type reindexReader struct {
	store.Reader
	due []ci.Origin
	err error
}

func (r reindexReader) CratesToReindex(context.Context, time.Time) ([]ci.Origin, error) {
	return r.due, r.err
}

// fixedMirror is a MirrorSource that always returns the same snapshot.
type fixedMirror struct{ snap *mirror.Snapshot }

func (f fixedMirror) Current() *mirror.Snapshot { return f.snap }

func TestSchedulerIngestsDueRegistryOrigins(t *testing.T) {
	w := &recordingWriter{}
	p := newTestPipeline(t, w, map[string][]byte{"widget@1.0.0": gzipTarball(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"widget\"\nversion = \"1.0.0\"\n",
	})}, nil)
	snap := mirror.NewSnapshot([]*mirror.Entry{
		{Name: "widget", Versions: []mirror.Record{{Name: "widget", Vers: "1.0.0"}}},
	})

	s := &Scheduler{
		Reader:   reindexReader{due: []ci.Origin{ci.RegistryName("widget")}},
		Pipeline: p,
		Mirror:   fixedMirror{snap: snap},
	}
	s.sweep(context.Background())
	require.Equal(t, "Widget", w.data.Name)
}

func TestSchedulerSkipsVCSOrigins(t *testing.T) {
	w := &recordingWriter{}
	p := newTestPipeline(t, w, nil, nil)

	s := &Scheduler{
		Reader:   reindexReader{due: []ci.Origin{ci.NewGitRepo(ci.GitHub, "tokio-rs", "tokio", "tokio")}},
		Pipeline: p,
		Mirror:   fixedMirror{snap: mirror.NewSnapshot(nil)},
	}
	s.sweep(context.Background())
	require.Empty(t, w.data.Name)
}

func TestSchedulerSurvivesMissingMirrorEntry(t *testing.T) {
	w := &recordingWriter{}
	p := newTestPipeline(t, w, nil, nil)

	s := &Scheduler{
		Reader:   reindexReader{due: []ci.Origin{ci.RegistryName("missing")}},
		Pipeline: p,
		Mirror:   fixedMirror{snap: mirror.NewSnapshot(nil)},
	}
	require.NotPanics(t, func() { s.sweep(context.Background()) })
}

func TestSchedulerNoopOnEmptyDueList(t *testing.T) {
	w := &recordingWriter{}
	p := newTestPipeline(t, w, nil, nil)

	s := &Scheduler{
		Reader:   reindexReader{due: nil},
		Pipeline: p,
		Mirror:   fixedMirror{snap: mirror.NewSnapshot(nil)},
	}
	s.sweep(context.Background())
	require.Empty(t, w.data.Name)
}
