// Package collabtest provides in-memory fakes for collab's interfaces, for
// use in ingest/ tests.
//
// Grounded on claircore's test/mock/indexer convention of committing
// generated mocks alongside the interfaces they implement; these are
// hand-written rather than mockgen-generated since the collab interfaces
// are small and the fakes need canned, deterministic fixture data rather
// than call-count assertions.
package collabtest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Protryon/lib-rs-mirror-sub000/collab"
)

// Tarballs is a collab.TarballFetcher backed by an in-memory map keyed by
// "name@version".
type Tarballs struct {
	Data map[string][]byte
}

func (t *Tarballs) FetchTarball(_ context.Context, name, version string) (io.ReadCloser, error) {
	b, ok := t.Data[name+"@"+version]
	if !ok {
		return nil, fmt.Errorf("collabtest: no fixture tarball for %s@%s", name, version)
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

// Readmes is a collab.ReadmeFetcher backed by an in-memory map.
type Readmes struct {
	Data map[string]string
}

func (r *Readmes) FetchReadme(_ context.Context, name, version string) (string, bool, error) {
	html, ok := r.Data[name+"@"+version]
	return html, ok, nil
}

var (
	_ collab.TarballFetcher = (*Tarballs)(nil)
	_ collab.ReadmeFetcher  = (*Readmes)(nil)
)
