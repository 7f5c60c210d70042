package pages

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
)

// feedEntryLimit bounds the Atom feed's entry count.
const feedEntryLimit = 50

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	ID      string `xml:"id"`
	Updated string `xml:"updated"`
	Link    atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

// AtomFeed builds the Atom feed of recently updated crates.
//
// Rendered separately from the html/template set (feed.go, not
// templates/*.html.tmpl) since the output is XML, not HTML; encoding/xml is
// the stdlib choice because no example repo in this module's lineage
// imports a third-party Atom/feed-building library (see DESIGN.md).
func AtomFeed(ctx context.Context, st *State, baseURL string) (Rendered, error) {
	entries, err := st.Reader.SitemapCrates(ctx)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: atom feed: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].LastUpdate.After(entries[j].LastUpdate) })
	if len(entries) > feedEntryLimit {
		entries = entries[:feedEntryLimit]
	}

	feed := atomFeed{
		Xmlns: "http://www.w3.org/2005/Atom",
		Title: "Registry Index: recent updates",
		ID:    baseURL + "/atom.xml",
	}
	if len(entries) > 0 {
		feed.Updated = entries[0].LastUpdate.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, e := range entries {
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   e.Origin.String(),
			ID:      baseURL + "/crates/" + e.Origin.String(),
			Updated: e.LastUpdate.Format("2006-01-02T15:04:05Z07:00"),
			Link:    atomLink{Href: baseURL + "/crates/" + e.Origin.String()},
		})
	}

	b, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: marshal atom feed: %w", err)
	}
	out := append([]byte(xml.Header), b...)
	lastUpdate := currentTime()
	if len(entries) > 0 {
		lastUpdate = entries[0].LastUpdate
	}
	return Rendered{Bytes: out, LastModified: lastUpdate}, nil
}
