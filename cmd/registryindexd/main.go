package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quay/zlog"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/Protryon/lib-rs-mirror-sub000/depgraph"
	"github.com/Protryon/lib-rs-mirror-sub000/ingest"
	"github.com/Protryon/lib-rs-mirror-sub000/mirror"
	"github.com/Protryon/lib-rs-mirror-sub000/pages"
	"github.com/Protryon/lib-rs-mirror-sub000/rules"
	"github.com/Protryon/lib-rs-mirror-sub000/server"
	"github.com/Protryon/lib-rs-mirror-sub000/store/postgres"
	"github.com/Protryon/lib-rs-mirror-sub000/taxonomy"
)

// Config is registryindexd's flag/env surface, mirroring the environment
// variables named in the external-interfaces data-directory and
// connection-string conventions. Flags take precedence; each falls back to
// its environment variable, then to a hardcoded default, except
// reindex-interval, which has no environment variable.
type Config struct {
	DataDir        string
	DocumentRoot   string
	ConnString     string
	HTTPListenAddr string
	LogLevel       string
	GitHubToken    string
	ReindexEvery   time.Duration
	RouteTimingCfg string
}

func envOr(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func parseConfig() Config {
	c := Config{}
	flag.StringVar(&c.DataDir, "data-dir", envOr([]string{"DATA_DIR", "CRATES_DATA_DIR", "CRATE_DATA_DIR"}, "./data"), "root of all persistent data (index/, git/, page/ subdirs)")
	flag.StringVar(&c.DocumentRoot, "document-root", envOr([]string{"DOCUMENT_ROOT"}, ""), "static asset root; \"\" disables /{static-page} serving")
	flag.StringVar(&c.ConnString, "conn-string", envOr([]string{"CONNECTION_STRING", "DATABASE_URL"}, "host=localhost port=5432 user=registryindex dbname=registryindex sslmode=disable"), "Postgres connection string")
	flag.StringVar(&c.HTTPListenAddr, "http-listen-addr", envOr([]string{"HTTP_LISTEN_ADDR"}, "0.0.0.0:8080"), "HTTP listen address")
	flag.StringVar(&c.LogLevel, "log-level", envOr([]string{"LOG_LEVEL"}, "info"), "debug, info, warning, error, fatal, panic")
	flag.StringVar(&c.GitHubToken, "github-token", envOr([]string{"GITHUB_TOKEN"}, ""), "token for the VCS host metadata collaborator")
	flag.DurationVar(&c.ReindexEvery, "reindex-interval", ingest.DefaultReindexInterval, "how often the background reindex sweep runs")
	flag.StringVar(&c.RouteTimingCfg, "route-timing-config", envOr([]string{"ROUTE_TIMING_CONFIG"}, ""), "YAML file overriding per-route cache_time/timeout defaults; \"\" keeps the compiled-in defaults")
	flag.Parse()
	return c
}

func logLevel(c Config) zerolog.Level {
	if l, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

func main() {
	conf := parseConfig()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}).
		With().Timestamp().Caller().
		Logger().
		Level(logLevel(conf))
	zlog.Set(&log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgStore, err := postgres.New(ctx, postgres.Options{
		ConnString:      conf.ConnString,
		ApplicationName: "registryindexd",
		RunMigrations:   true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pgStore.Close(ctx)

	tree, err := taxonomy.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load taxonomy")
	}
	engine, err := rules.Load(tree)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load inference rules")
	}

	mirrorDir := filepath.Join(conf.DataDir, "index")
	cacheDir := filepath.Join(conf.DataDir, "cache")
	if err := os.MkdirAll(mirrorDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", mirrorDir).Msg("failed to create mirror directory")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cacheDir).Msg("failed to create page cache directory")
	}

	mgr := mirror.NewManager(mirrorDir, nil)
	if err := mgr.Run(ctx); err != nil {
		log.Warn().Err(err).Str("dir", mirrorDir).Msg("initial mirror load failed, starting with an empty snapshot")
	}
	go func() {
		if err := mgr.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("mirror manager stopped unexpectedly")
		}
	}()

	buildState := func(ctx context.Context) (*pages.State, error) {
		snap := mgr.Current()
		if snap == nil {
			snap = mirror.NewSnapshot(nil)
		}
		return pages.NewState(pgStore, snap, depgraph.New(snap), tree, nil, nil, nil), nil
	}
	initial, err := buildState(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build initial page state")
	}

	renderer, err := pages.LoadRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load page templates")
	}

	initialSnap := mgr.Current()
	if initialSnap == nil {
		initialSnap = mirror.NewSnapshot(nil)
	}
	pipeline := &ingest.Pipeline{
		Tarballs:      unconfiguredTarballFetcher{},
		Readmes:       unconfiguredReadmeFetcher{},
		Writer:        pgStore,
		CategorySeeds: pgStore,
		Rules:         engine,
		Taxonomy:      tree,
		Deps:          depgraph.New(initialSnap),
	}
	scheduler := &ingest.Scheduler{
		Reader:   pgStore,
		Pipeline: pipeline,
		Mirror:   mgr,
		Interval: conf.ReindexEvery,
	}
	go func() {
		if err := scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("reindex scheduler stopped unexpectedly")
		}
	}()

	if conf.RouteTimingCfg != "" {
		if err := server.LoadRouteTimingOverrides(conf.RouteTimingCfg); err != nil {
			log.Fatal().Err(err).Str("path", conf.RouteTimingCfg).Msg("failed to load route timing overrides")
		}
	}

	srv := server.New(renderer, buildState, initial, cacheDir)
	if conf.DocumentRoot != "" {
		srv.WithStaticPageDir(filepath.Join(conf.DocumentRoot, "page"))
	}
	go srv.RunBackground(ctx)

	httpServer := &http.Server{
		Addr:        conf.HTTPListenAddr,
		Handler:     srv.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during graceful shutdown")
		}
	}()

	zlog.Info(ctx).Str("addr", conf.HTTPListenAddr).Msg("starting http server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
