// Package server exposes the preview engine over HTTP: rendered pages for
// the editing iframe and a JSON API the editor chrome drives edits through.
package server

import (
	"net/http"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sitepreview/pkg/content"
	"github.com/goliatone/go-sitepreview/pkg/preview"
	"github.com/goliatone/go-sitepreview/pkg/render"
)

// Option customises the app configuration.
type Option func(*App)

// WithLogger supplies the request and error logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithThemeConfig applies a resolved theme to rendered pages.
func WithThemeConfig(cfg *theme.RendererConfig) Option {
	return func(a *App) {
		a.theme = cfg
	}
}

// WithPostCache enables the blog routes backed by the content API.
func WithPostCache(posts *content.PostCache) Option {
	return func(a *App) {
		a.posts = posts
	}
}

// App wires the preview store, the template engine, and the JSON edit API
// into an echo server. The store is single-writer, so every handler that
// touches it holds the app mutex.
type App struct {
	Echo *echo.Echo

	mu     sync.Mutex
	store  *preview.Store
	engine *render.Engine
	theme  *theme.RendererConfig
	posts  *content.PostCache
	logger zerolog.Logger
}

// New builds the app over a preview store and template engine.
func New(store *preview.Store, engine *render.Engine, options ...Option) *App {
	a := &App{
		Echo:   echo.New(),
		store:  store,
		engine: engine,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	a.Echo.HideBanner = true
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// Start runs the HTTP server on addr until it is shut down.
func (a *App) Start(addr string) error {
	a.logger.Info().Str("addr", addr).Msg("preview server listening")
	if err := a.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupMiddleware() {
	e := a.Echo

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
	}))
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", a.handlePage)
	e.GET("/services/:slug", a.handleServicePage)
	e.GET("/blog", a.handleBlog)
	e.GET("/blog/:slug", a.handleBlogPost)

	api := e.Group("/api/preview")
	api.GET("/state", a.handleState)
	api.GET("/value", a.handleGetValue)
	api.PUT("/value", a.handleSetValue)
	api.GET("/sections", a.handleListSections)
	api.GET("/section-types", a.handleSectionTypes)
	api.POST("/sections", a.handleAddSection)
	api.DELETE("/sections/:id", a.handleRemoveSection)
	api.POST("/items", a.handleAddItem)
	api.DELETE("/items", a.handleRemoveItem)
	api.POST("/items/move", a.handleMoveItem)
	api.POST("/publish", a.handlePublish)
	api.POST("/discard", a.handleDiscard)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}
	if code >= http.StatusInternalServerError {
		a.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = c.JSON(code, map[string]string{"error": message})
		return
	}
	_ = c.String(code, message)
}
