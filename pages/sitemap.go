package pages

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"
)

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	Priority   float64 `xml:"priority"`
}

// Sitemap builds the sitemap.xml of every crate above store.MinSitemapRank.
//
// The whole document is built in memory and marshaled once rather than
// streamed; store.MinSitemapRank keeps the indexed crate count well below
// what would require incremental flushing, and the server's per-request
// timeout bounds worst-case latency instead.
func Sitemap(ctx context.Context, st *State, baseURL string) (Rendered, error) {
	entries, err := st.Reader.SitemapCrates(ctx)
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: sitemap: %w", err)
	}

	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	var latest time.Time
	for _, e := range entries {
		priority := e.Rank
		if priority > 1 {
			priority = 1
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:      baseURL + "/crates/" + e.Origin.String(),
			LastMod:  e.LastUpdate.Format("2006-01-02"),
			Priority: priority,
		})
		if e.LastUpdate.After(latest) {
			latest = e.LastUpdate
		}
	}

	b, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return Rendered{}, fmt.Errorf("pages: marshal sitemap: %w", err)
	}
	out := append([]byte(xml.Header), b...)
	if latest.IsZero() {
		latest = currentTime()
	}
	return Rendered{Bytes: out, LastModified: latest}, nil
}
