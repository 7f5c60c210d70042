package pages

import (
	"context"
	"time"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

// fakeReader is a store.Reader backed by canned, keyed-by-origin-string
// fixture data. Hand-written rather than mockgen-generated, in the same
// spirit as collab/collabtest's fakes: the page builder's tests need
// deterministic fixture data, not call-count assertions.
type fakeReader struct {
	manifests map[string]ci.Manifest
	derived   map[string]store.Derived
	related   map[string][]ci.Origin
	byOwner   map[int64][]ci.Origin
	keyword   map[string][]ci.Origin
	newest    []ci.Origin
	recent    []ci.Origin
	catCounts map[string]int
	topInCat  map[string][]ci.Origin
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		manifests: map[string]ci.Manifest{},
		derived:   map[string]store.Derived{},
		related:   map[string][]ci.Origin{},
		byOwner:   map[int64][]ci.Origin{},
		keyword:   map[string][]ci.Origin{},
		catCounts: map[string]int{},
		topInCat:  map[string][]ci.Origin{},
	}
}

func (f *fakeReader) put(o ci.Origin, m ci.Manifest, d store.Derived) {
	f.manifests[o.String()] = m
	f.derived[o.String()] = d
}

func (f *fakeReader) RichCrateVersionData(_ context.Context, origin ci.Origin) (ci.Manifest, store.Derived, error) {
	m, ok := f.manifests[origin.String()]
	if !ok {
		return ci.Manifest{}, store.Derived{}, &ci.Error{Kind: ci.ErrNotFound, Op: "fakeReader.RichCrateVersionData", Message: origin.String()}
	}
	return m, f.derived[origin.String()], nil
}

func (f *fakeReader) TopKeyword(context.Context, ci.Origin) (int, string, error) { return 0, "", nil }
func (f *fakeReader) TopCategory(context.Context, ci.Origin) (int, string, error) {
	return 0, "", nil
}

func (f *fakeReader) TopCratesInCategory(_ context.Context, slug string, limit int) ([]ci.Origin, error) {
	out := f.topInCat[slug]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReader) TopKeywordsInCategory(context.Context, string) ([]store.KeywordStat, error) {
	return nil, nil
}

func (f *fakeReader) RelatedCrates(_ context.Context, origin ci.Origin, _ int64) ([]ci.Origin, error) {
	return f.related[origin.String()], nil
}

func (f *fakeReader) RelatedCategories(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeReader) ReplacementCrates(context.Context, string) ([]store.ReplacementCandidate, error) {
	return nil, nil
}

func (f *fakeReader) RecentlyUpdatedCratesInCategory(_ context.Context, slug string) ([]ci.Origin, error) {
	return f.topInCat[slug], nil
}

func (f *fakeReader) CratesWithKeyword(_ context.Context, keyword string) (int, error) {
	return len(f.keyword[keyword]), nil
}

func (f *fakeReader) CratesWithKeywordList(_ context.Context, keyword string, limit int) ([]ci.Origin, error) {
	out := f.keyword[keyword]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReader) CategoryCrateCounts(context.Context) (map[string]int, error) {
	return f.catCounts, nil
}

func (f *fakeReader) SitemapCrates(context.Context) ([]store.SitemapEntry, error) { return nil, nil }

func (f *fakeReader) CratesToReindex(context.Context, time.Time) ([]ci.Origin, error) {
	return nil, nil
}

func (f *fakeReader) ParentCrate(context.Context, string, string) (ci.Origin, bool, error) {
	return ci.Origin{}, false, nil
}

func (f *fakeReader) CratesByOwner(_ context.Context, githubUserID int64) ([]ci.Origin, error) {
	return f.byOwner[githubUserID], nil
}

func (f *fakeReader) RecentlyUpdatedCrates(_ context.Context, limit int) ([]ci.Origin, error) {
	out := f.recent
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReader) NewCrates(_ context.Context, limit int) ([]ci.Origin, error) {
	out := f.newest
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ store.Reader = (*fakeReader)(nil)
