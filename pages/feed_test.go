package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/store"
)

func TestAtomFeedOrdersByRecencyAndCapsLength(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]store.SitemapEntry, 0, feedEntryLimit+5)
	for i := 0; i < feedEntryLimit+5; i++ {
		entries = append(entries, store.SitemapEntry{
			Origin:     ci.RegistryName("crate"),
			Rank:       0.5,
			LastUpdate: base.Add(time.Duration(i) * time.Hour),
		})
	}
	sm := sitemapEntriesReader{entries: entries}
	st := testState(t, sm)

	out, err := AtomFeed(context.Background(), st, "https://example.test")
	require.NoError(t, err)
	require.Equal(t, entries[len(entries)-1].LastUpdate, out.LastModified)
	require.Equal(t, feedEntryLimit, strings.Count(string(out.Bytes), "<entry>"))
}
