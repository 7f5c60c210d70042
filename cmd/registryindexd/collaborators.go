package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Protryon/lib-rs-mirror-sub000/collab"
)

// unconfiguredTarballFetcher satisfies collab.TarballFetcher without
// fetching anything. Tarball fetch and readme rendering are out of this
// program's scope (they're external collaborator contracts, implemented
// by whatever deployment wires a real fetcher in); this stub lets the
// ingestion pipeline and its scheduler run against a real dependency shape
// instead of a nil interface panic. Every fetch fails, so IngestVersion
// returns that error and the scheduler logs it and moves on.
type unconfiguredTarballFetcher struct{}

func (unconfiguredTarballFetcher) FetchTarball(context.Context, string, string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("registryindexd: no tarball fetcher configured")
}

var _ collab.TarballFetcher = unconfiguredTarballFetcher{}

// unconfiguredReadmeFetcher mirrors unconfiguredTarballFetcher for
// READMEs; collab.ReadmeFetcher's contract already treats "not available"
// as a non-error (ok=false), so this never fails the ingestion run. A crate
// whose tarball holds no readme still gets the pipeline's missing-readme
// warning.
type unconfiguredReadmeFetcher struct{}

func (unconfiguredReadmeFetcher) FetchReadme(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

var _ collab.ReadmeFetcher = unconfiguredReadmeFetcher{}
