// Package sitepreview is a preview and edit-state engine for schema-driven
// marketing sites. A site's content schema declares what exists and what is
// editable; the preview store layers a sparse patch of pending edits over the
// published baseline, and publish or discard resolve the session.
package sitepreview

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sitepreview/pkg/preview"
	"github.com/goliatone/go-sitepreview/pkg/schema"
	"github.com/goliatone/go-sitepreview/pkg/site"
)

// Schema aliases the parsed site content schema.
type Schema = schema.Schema

// Node aliases a single schema node, field or compound.
type Node = schema.Node

// Section aliases one block of baseline page content.
type Section = site.Section

// SiteData aliases the baseline site document.
type SiteData = site.Data

// Store aliases the preview edit-state store.
type Store = preview.Store

// Option aliases a store configuration option.
type Option = preview.Option

// Cache aliases the durable patch cache contract.
type Cache = preview.Cache

// Publisher aliases the publish backend contract.
type Publisher = preview.Publisher

// ParseSchema decodes a site content schema from JSON or YAML.
func ParseSchema(data []byte) (*Schema, error) {
	return schema.Parse(data)
}

// ParseSite decodes a baseline site document from JSON or YAML.
func ParseSite(data []byte) (*SiteData, error) {
	return site.Parse(data)
}

// NewStore builds a preview store over a schema and baseline document; it is
// the simplest entry point for callers embedding the engine.
func NewStore(sch *Schema, baseline *SiteData, options ...Option) *Store {
	return preview.New(sch, baseline, options...)
}

// Load reads the schema and baseline documents from disk and builds a store.
func Load(schemaPath, dataPath string, options ...Option) (*Store, error) {
	sch, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("sitepreview: %w", err)
	}
	baseline, err := site.LoadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("sitepreview: %w", err)
	}
	return preview.New(sch, baseline, options...), nil
}

// WithSiteID scopes the durable cache key to a site.
func WithSiteID(id string) Option { return preview.WithSiteID(id) }

// WithPageScope restricts the section picker to a page schema's allow-list.
func WithPageScope(pageType string) Option { return preview.WithPageScope(pageType) }

// WithLogger supplies the logger used for cache and publish failures.
func WithLogger(logger zerolog.Logger) Option { return preview.WithLogger(logger) }

// WithCache attaches a durable patch cache to the store.
func WithCache(cache Cache) Option { return preview.WithCache(cache) }

// WithPublisher attaches the backend that receives published documents.
func WithPublisher(p Publisher) Option { return preview.WithPublisher(p) }
