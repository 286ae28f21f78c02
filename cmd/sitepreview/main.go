package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	sitepreview "github.com/goliatone/go-sitepreview"
	"github.com/goliatone/go-sitepreview/pkg/cache/sqlitecache"
	"github.com/goliatone/go-sitepreview/pkg/config"
	"github.com/goliatone/go-sitepreview/pkg/content"
	"github.com/goliatone/go-sitepreview/pkg/publish"
	"github.com/goliatone/go-sitepreview/pkg/render"
	"github.com/goliatone/go-sitepreview/pkg/server"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 && os.Args[1] == "new" {
		if err := runNew(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := serve(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	configPath := flag.String("config", "sitepreview.yaml", "configuration file")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)

	if _, statErr := os.Stat(*configPath); statErr == nil {
		holder, err := config.NewHolder(*configPath, logger)
		if err != nil {
			return err
		}
		defer holder.Stop()
		holder.OnChange(func(next *config.Config) {
			if next.Site != cfg.Site {
				logger.Warn().Msg("site paths changed, restart to pick up the new documents")
			}
		})
		if err := holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config watch unavailable")
		}
		holder.WatchSignals()
	}

	options := []sitepreview.Option{
		sitepreview.WithSiteID(cfg.Site.ID),
		sitepreview.WithPageScope(cfg.Site.Page),
		sitepreview.WithLogger(logger),
	}

	var cache *sqlitecache.Cache
	if cfg.Cache.Path != "" {
		cache, err = sqlitecache.New(cfg.Cache.Path)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Cache.Path).
				Msg("durable cache unavailable, edits kept in memory only")
			cache = nil
		} else {
			defer cache.Close()
			options = append(options, sitepreview.WithCache(cache))
		}
	}

	if cfg.Publish.Path != "" {
		snapshots, err := publish.New(cfg.Publish.Path)
		if err != nil {
			return err
		}
		defer snapshots.Close()
		options = append(options, sitepreview.WithPublisher(snapshots))
	}

	store, err := sitepreview.Load(cfg.Site.SchemaPath, cfg.Site.DataPath, options...)
	if err != nil {
		return err
	}

	if cache != nil {
		resumeSession(store, cache, logger)
	}

	engine, err := render.NewEngine(render.WithTemplatesFS(render.DefaultTemplates()))
	if err != nil {
		return err
	}

	serverOptions := []server.Option{server.WithLogger(logger)}
	if themeCfg := resolveTheme(cfg.Theme, logger); themeCfg != nil {
		serverOptions = append(serverOptions, server.WithThemeConfig(themeCfg))
	}
	if cfg.Content.BaseURL != "" {
		client := content.NewClient(cfg.Content.BaseURL)
		posts := content.NewPostCache(client, cfg.Site.ID, cfg.Content.TTL)
		serverOptions = append(serverOptions, server.WithPostCache(posts))
	}

	app := server.New(store, engine, serverOptions...)
	return app.Start(cfg.Addr())
}

// resumeSession replays a previously cached patch so an interrupted editing
// session picks up where it left off.
func resumeSession(store *sitepreview.Store, cache *sqlitecache.Cache, logger zerolog.Logger) {
	patch, err := cache.Load(store.CacheKey())
	if err != nil {
		if err != sqlitecache.ErrNotFound {
			logger.Warn().Err(err).Msg("cached session unavailable")
		}
		return
	}
	// Shallow keys first: a whole-subtree entry supersedes pending edits
	// underneath it, so deeper entries must land after their ancestors.
	paths := make([]string, 0, len(patch))
	for path := range patch {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		di := strings.Count(paths[i], ".")
		dj := strings.Count(paths[j], ".")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
	for _, path := range paths {
		store.Write(path, patch[path])
	}
	if len(patch) > 0 {
		logger.Info().Int("edits", len(patch)).Msg("resumed cached editing session")
	}
}

func resolveTheme(cfg config.ThemeConfig, logger zerolog.Logger) *theme.RendererConfig {
	if cfg.Name == "" {
		return nil
	}
	resolver := render.NewThemeResolver(defaultManifest())
	selection, err := resolver.Select(cfg.Name, cfg.Variant)
	if err != nil {
		logger.Warn().Err(err).Msg("theme unavailable, rendering unthemed")
		return nil
	}
	return render.BuildThemeConfig(selection)
}

// defaultManifest is the built-in theme shipped with the preview server.
func defaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "default",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#1d4ed8",
			"surface": "#ffffff",
			"ink":     "#111827",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#111827",
					"ink":     "#f9fafb",
				},
			},
		},
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
