package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// EngineOption configures the template engine before construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	baseDir   string
	templates fs.FS
	extension string
	globals   map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithTemplatesFS loads templates from an fs.FS, typically the embedded
// defaults.
func WithTemplatesFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension.
func WithExtension(ext string) EngineOption {
	return func(cfg *engineConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobals seeds context values available to every template.
func WithGlobals(data map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[key] = value
		}
	}
}

// Engine renders page templates with a pongo2 template set. Compiled
// templates are cached per name.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
	globals     map[string]any
}

// NewEngine constructs an Engine from the provided options. At least one
// template source is required.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{
		extension: ".html",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("render: need either a base dir or an fs.FS for templates")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("render: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	return &Engine{
		templateSet: pongo2.NewSet("sitepreview", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		globals:     cfg.globals,
	}, nil
}

// Render executes the named template with data, writing the result to out.
func (e *Engine) Render(out io.Writer, name string, data map[string]any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("render: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(e.context(data), out); err != nil {
		return fmt.Errorf("render: execute template %q: %w", templatePath, err)
	}
	return nil
}

// RenderString parses and executes an inline template.
func (e *Engine) RenderString(templateContent string, data map[string]any) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("render: engine is nil")
	}
	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("render: parse template string: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(e.context(data), &buf); err != nil {
		return "", fmt.Errorf("render: execute template string: %w", err)
	}
	return buf.String(), nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func (e *Engine) context(data map[string]any) pongo2.Context {
	ctx := pongo2.Context{}
	for key, value := range e.globals {
		ctx[key] = value
	}
	for key, value := range data {
		ctx[key] = value
	}
	return ctx
}
