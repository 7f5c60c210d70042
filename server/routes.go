package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/pages"
	"github.com/Protryon/lib-rs-mirror-sub000/server/cache"
)

// routeTiming is the per-route cache lifetime and foreground render
// deadline: each route gets its own max-age and its own render timeout.
// Both fields are a ci.Duration rather than a bare time.Duration so a
// deployment can override the compiled-in defaults from a YAML file (see
// LoadRouteTimingOverrides), the same way claircore's updater configs carry
// a claircore.Duration field for operator-tunable timeouts.
type routeTiming struct {
	cacheTime ci.Duration
	timeout   ci.Duration
}

func (t routeTiming) cache() time.Duration   { return time.Duration(t.cacheTime) }
func (t routeTiming) deadline() time.Duration { return time.Duration(t.timeout) }

var (
	crateTiming   = routeTiming{cacheTime: ci.Duration(15 * time.Minute), timeout: ci.Duration(30 * time.Second)}
	listingTiming = routeTiming{cacheTime: ci.Duration(15 * time.Minute), timeout: ci.Duration(30 * time.Second)}
	homeTiming    = routeTiming{cacheTime: ci.Duration(5 * time.Minute), timeout: ci.Duration(30 * time.Second)}
	feedTiming    = routeTiming{cacheTime: ci.Duration(15 * time.Minute), timeout: ci.Duration(60 * time.Second)}
	sitemapTiming = routeTiming{cacheTime: ci.Duration(1 * time.Hour), timeout: ci.Duration(300 * time.Second)}
)

// New builds a Server whose initial State comes from initial, rendering
// through renderer and caching under cacheDir.
func New(renderer *pages.Renderer, build StateBuilder, initial *pages.State, cacheDir string) *Server {
	s := &Server{build: build, renderer: renderer, coord: newCoordinator(cache.New(cacheDir))}
	s.state.Store(initial)
	return s
}

// Handler builds the chi.Mux serving the routes described in the
// external-interfaces route table: crate/category/keyword/author/home/
// search/feed/sitemap/static, plus the redirects and /healthz, /readyz,
// /metrics.
func (s *Server) Handler() http.Handler {
	r := s.renderer
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(s.livenessMiddleware)

	mux.Get("/", s.handleHome(r))
	mux.Get("/search", s.handleSearch(r))
	mux.Get("/new", s.handleHome(r))
	mux.Get("/crates/{name}", s.handleCrate(r))
	mux.Get("/crates/{name}/rev", s.handleReverseDeps(r))
	mux.Get("/crates/{name}/reverse_dependencies", redirectTo(func(req *http.Request) string {
		return "/crates/" + chi.URLParam(req, "name") + "/rev"
	}))
	mux.Get("/crates/{name}/crev", s.handleReviews(r))
	mux.Get("/gh/{owner}/{repo}/{crate}", s.handleVCSCrate(r, ci.GitHub))
	mux.Get("/lab/{owner}/{repo}/{crate}", s.handleVCSCrate(r, ci.GitLab))
	mux.Get("/keywords/{keyword}", s.handleKeyword(r))
	mux.Get("/~{author}", s.handleAuthor(r))
	mux.Get("/users/{author}", redirectTo(func(req *http.Request) string {
		return "/~" + chi.URLParam(req, "author")
	}))
	mux.Get("/install/{name}", s.handleInstall(r))
	mux.Get("/atom.xml", s.handleAtomFeed())
	mux.Get("/sitemap.xml", s.handleSitemap())
	mux.Get("/healthz", s.handleHealthz)
	mux.Get("/readyz", s.handleReadyz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/*", s.handleCatchAll(r))
	mux.NotFound(s.handleNotFound(r))

	return mux
}

func redirectTo(target func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target(r), http.StatusPermanentRedirect)
	}
}
