package server

import (
	"os"

	"gopkg.in/yaml.v3"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// routeTimingOverrides is the YAML-decodable shape for tuning the
// compiled-in per-route cache/timeout defaults without a rebuild, mirroring
// claircore's own updater configs (e.g. rhel/vex's CompressedFileTimeout)
// that carry a ci.Duration field alongside a yaml tag. A zero entry leaves
// the corresponding default untouched.
type routeTimingOverrides struct {
	Crate   routeTimingEntry `yaml:"crate"`
	Listing routeTimingEntry `yaml:"listing"`
	Home    routeTimingEntry `yaml:"home"`
	Feed    routeTimingEntry `yaml:"feed"`
	Sitemap routeTimingEntry `yaml:"sitemap"`
}

type routeTimingEntry struct {
	CacheTime ci.Duration `yaml:"cache_time"`
	Timeout   ci.Duration `yaml:"timeout"`
}

func (e routeTimingEntry) applyTo(t *routeTiming) {
	if e.CacheTime != 0 {
		t.cacheTime = e.CacheTime
	}
	if e.Timeout != 0 {
		t.timeout = e.Timeout
	}
}

// LoadRouteTimingOverrides reads a YAML file at path and applies any
// per-route cache_time/timeout values it sets over the package defaults.
// Routes omitted from the file, or fields left at zero within a route,
// keep their compiled-in value.
func LoadRouteTimingOverrides(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cfg routeTimingOverrides
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	cfg.Crate.applyTo(&crateTiming)
	cfg.Listing.applyTo(&listingTiming)
	cfg.Home.applyTo(&homeTiming)
	cfg.Feed.applyTo(&feedTiming)
	cfg.Sitemap.applyTo(&sitemapTiming)
	return nil
}
