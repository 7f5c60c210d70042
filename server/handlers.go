package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
	"github.com/Protryon/lib-rs-mirror-sub000/pages"
)

// writeRendered sets Cache-Control, ETag, and Last-Modified then writes
// res.Bytes. The watchdog's response-liveness clock is updated by
// livenessMiddleware, not here.
func writeRendered(w http.ResponseWriter, cacheTime time.Duration, res result) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", `"`+res.ETag+`"`)
	if !res.LastModified.IsZero() {
		w.Header().Set("Last-Modified", res.LastModified.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", cacheControl(cacheTime))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Bytes)
}

func cacheControl(cacheTime time.Duration) string {
	secs := int(cacheTime.Seconds())
	return "public, max-age=" + itoa(secs) +
		", stale-while-revalidate=" + itoa(3*secs) +
		", stale-if-error=" + itoa(10*secs)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, route string, err error) {
	if errors.Is(err, ci.ErrNotFound) {
		s.handleNotFound(s.renderer)(w, r)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handleHome(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if q := req.URL.Query().Get("q"); q != "" {
			http.Redirect(w, req, "/search?q="+q, http.StatusFound)
			return
		}
		res, err := s.coord.Serve(req.Context(), s.currentState(), "home", "/", homeTiming.cache(), homeTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.HomePage(ctx, st) })
		if err != nil {
			s.writeError(w, req, "home", err)
			return
		}
		writeRendered(w, homeTiming.cache(), res)
	}
}

func (s *Server) handleSearch(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query().Get("q")
		slug := "/search?q=" + q
		res, err := s.coord.Serve(req.Context(), s.currentState(), "search", slug, 0, 10*time.Second,
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.SearchPage(ctx, st, q) })
		if err != nil {
			s.writeError(w, req, "search", err)
			return
		}
		writeRendered(w, 0, res)
	}
}

func (s *Server) handleCrate(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		origin := ci.RegistryName(name)
		res, err := s.coord.Serve(req.Context(), s.currentState(), "crate", "/crates/"+name, crateTiming.cache(), crateTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.CratePage(ctx, st, origin) })
		if err != nil {
			s.writeError(w, req, "crate", err)
			return
		}
		writeRendered(w, crateTiming.cache(), res)
	}
}

func (s *Server) handleVCSCrate(r *pages.Renderer, host ci.Host) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		owner, repo, crate := chi.URLParam(req, "owner"), chi.URLParam(req, "repo"), chi.URLParam(req, "crate")
		origin := ci.NewGitRepo(host, owner, repo, crate)
		slug := req.URL.Path
		res, err := s.coord.Serve(req.Context(), s.currentState(), "crate", slug, crateTiming.cache(), crateTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.CratePage(ctx, st, origin) })
		if err != nil {
			s.writeError(w, req, "crate", err)
			return
		}
		writeRendered(w, crateTiming.cache(), res)
	}
}

func (s *Server) handleReverseDeps(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		origin := ci.RegistryName(name)
		res, err := s.coord.Serve(req.Context(), s.currentState(), "reverse_deps", "/crates/"+name+"/rev", crateTiming.cache(), crateTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) {
				return r.ReverseDependenciesPage(ctx, st, origin)
			})
		if err != nil {
			s.writeError(w, req, "reverse_deps", err)
			return
		}
		writeRendered(w, crateTiming.cache(), res)
	}
}

func (s *Server) handleReviews(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		origin := ci.RegistryName(name)
		res, err := s.coord.Serve(req.Context(), s.currentState(), "reviews", "/crates/"+name+"/crev", crateTiming.cache(), crateTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.ReviewsPage(ctx, st, origin) })
		if err != nil {
			s.writeError(w, req, "reviews", err)
			return
		}
		writeRendered(w, crateTiming.cache(), res)
	}
}

func (s *Server) handleInstall(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		origin := ci.RegistryName(name)
		res, err := s.coord.Serve(req.Context(), s.currentState(), "install", "/install/"+name, crateTiming.cache(), crateTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.InstallPage(ctx, st, origin) })
		if err != nil {
			s.writeError(w, req, "install", err)
			return
		}
		writeRendered(w, crateTiming.cache(), res)
	}
}

func (s *Server) handleKeyword(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		kw := chi.URLParam(req, "keyword")
		res, err := s.coord.Serve(req.Context(), s.currentState(), "keyword", "/keywords/"+kw, listingTiming.cache(), listingTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.KeywordPage(ctx, st, kw) })
		if err != nil {
			s.writeError(w, req, "keyword", err)
			return
		}
		writeRendered(w, listingTiming.cache(), res)
	}
}

func (s *Server) handleAuthor(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		login := chi.URLParam(req, "author")
		res, err := s.coord.Serve(req.Context(), s.currentState(), "author", "/~"+login, listingTiming.cache(), listingTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.AuthorPage(ctx, st, login) })
		if err != nil {
			s.writeError(w, req, "author", err)
			return
		}
		writeRendered(w, listingTiming.cache(), res)
	}
}

func (s *Server) handleCategory(r *pages.Renderer, slugPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res, err := s.coord.Serve(req.Context(), s.currentState(), "category", "/"+slugPath, listingTiming.cache(), listingTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return r.CategoryPage(ctx, st, slugPath) })
		if err != nil {
			s.writeError(w, req, "category", err)
			return
		}
		writeRendered(w, listingTiming.cache(), res)
	}
}

// handleCatchAll implements the route table's last two entries: a path that
// resolves to a taxonomy slug chain renders the category page; otherwise, if
// a matching page/{name}.md exists under staticPageDir, it's served with
// $TOTAL_CRATE_NUM substituted ($CRATE_NUM is left as written); otherwise
// control falls through to the 404 handler.
func (s *Server) handleCatchAll(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		trimmed := strings.Trim(req.URL.Path, "/")
		if trimmed == "" {
			s.handleNotFound(r)(w, req)
			return
		}
		slug := strings.ReplaceAll(trimmed, "/", "::")
		st := s.currentState()
		if st.Taxonomy.Valid(slug) {
			s.handleCategory(r, slug)(w, req)
			return
		}
		if s.staticPageDir != "" {
			if body, ok := s.readStaticPage(st, trimmed); ok {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}
		}
		s.handleNotFound(r)(w, req)
	}
}

func (s *Server) readStaticPage(st *pages.State, name string) ([]byte, bool) {
	if strings.ContainsAny(name, "./\\") {
		return nil, false
	}
	raw, err := os.ReadFile(filepath.Join(s.staticPageDir, name+".md"))
	if err != nil {
		return nil, false
	}
	text := strings.ReplaceAll(string(raw), "$TOTAL_CRATE_NUM", strconv.Itoa(st.TotalCrates))
	return []byte("<pre>" + template.HTMLEscapeString(text) + "</pre>"), true
}

func (s *Server) handleAtomFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res, err := s.coord.Serve(req.Context(), s.currentState(), "feed", "/atom.xml", feedTiming.cache(), feedTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return pages.AtomFeed(ctx, st, baseURLFrom(req)) })
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
		w.Header().Set("Cache-Control", cacheControl(feedTiming.cache()))
		w.Header().Set("ETag", `"`+res.ETag+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(res.Bytes)
	}
}

func (s *Server) handleSitemap() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res, err := s.coord.Serve(req.Context(), s.currentState(), "sitemap", "/sitemap.xml", sitemapTiming.cache(), sitemapTiming.deadline(),
			func(ctx context.Context, st *pages.State) (pages.Rendered, error) { return pages.Sitemap(ctx, st, baseURLFrom(req)) })
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Cache-Control", cacheControl(sitemapTiming.cache()))
		w.Header().Set("ETag", `"`+res.ETag+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(res.Bytes)
	}
}

func (s *Server) handleNotFound(r *pages.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		out, err := r.NotFoundPage(req.Context(), s.currentState(), req.URL.Path, guessQuery(req.URL.Path))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err == nil {
			w.Write(out.Bytes)
		}
	}
}

func guessQuery(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

func baseURLFrom(req *http.Request) string {
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + req.Host
}

// handleHealthz reports process liveness unconditionally: a 200 here just
// means the HTTP server is accepting connections, not that it's serving
// fresh data (that's /readyz).
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReadyz reports whether the server has completed at least one
// successful State build.
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if s.currentState() == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// livenessMiddleware counts any non-5xx response toward the watchdog's
// response-liveness clock; it is the only place that clock is updated
// (a 404 or a redirect is still proof the server is answering requests).
func (s *Server) livenessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if ww.Status() < http.StatusInternalServerError {
			lastOKResponse.Store(time.Now().Unix())
		}
	})
}
