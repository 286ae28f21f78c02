// Package preview implements the edit-state engine for a schema-driven site:
// a sparse patch of pending edits layered over baseline data, path-addressed
// reads with patch precedence, section collection and array item operations,
// and discard/publish lifecycle handling.
//
// The store owns the patch and the working section collection exclusively.
// The schema and baseline document are read-only inputs shared by reference.
// A store serves a single editing session; it is not safe for concurrent
// writers, matching the one-operator-per-site model it exists for.
package preview

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sitepreview/internal/merge"
	"github.com/goliatone/go-sitepreview/pkg/pathutil"
	"github.com/goliatone/go-sitepreview/pkg/schema"
	"github.com/goliatone/go-sitepreview/pkg/site"
)

const defaultCacheKey = "default"

// Option customises the store configuration.
type Option func(*Store)

// WithSiteID keys the durable cache entry; without it the default key is
// used.
func WithSiteID(id string) Option {
	return func(s *Store) {
		s.siteID = strings.TrimSpace(id)
	}
}

// WithPageScope restricts the section picker to a page schema's allow-list.
func WithPageScope(pageType string) Option {
	return func(s *Store) {
		s.pageScope = strings.TrimSpace(pageType)
	}
}

// WithCache attaches a durable patch cache. The store never fails an edit on
// cache errors; they are logged and swallowed.
func WithCache(cache Cache) Option {
	return func(s *Store) {
		s.cache = cache
	}
}

// WithPublisher attaches the backend that receives the merged document on
// publish. Without one, publish applies the patch to the in-memory baseline
// only.
func WithPublisher(p Publisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithLogger supplies the logger used for cache and publish failure
// reporting. The default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDSuffix overrides the uniqueness suffix generator used for repeatable
// section instance ids. Intended for tests.
func WithIDSuffix(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.idSuffix = fn
		}
	}
}

// Store holds the pending edit patch and the mutable working copy of the
// section collection.
type Store struct {
	schema    *schema.Schema
	baseline  *site.Data
	siteID    string
	pageScope string
	cache     Cache
	publisher Publisher
	logger    zerolog.Logger
	idSuffix  func() string

	patch    map[string]any
	sections []site.Section
}

// New builds a store over the given schema and baseline document. The
// baseline is never mutated in place; the working section collection starts
// as a deep copy.
func New(sch *schema.Schema, baseline *site.Data, options ...Option) *Store {
	if sch == nil {
		sch = &schema.Schema{}
	}
	if baseline == nil {
		baseline = &site.Data{}
	}
	s := &Store{
		schema:   sch,
		baseline: baseline,
		logger:   zerolog.Nop(),
		idSuffix: defaultIDSuffix,
		patch:    map[string]any{},
		sections: baseline.CloneSections(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func defaultIDSuffix() string {
	id := uuid.NewString()
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// CacheKey returns the durable cache key for this session.
func (s *Store) CacheKey() string {
	id := s.siteID
	if id == "" {
		id = defaultCacheKey
	}
	return "preview-" + id
}

// Write records a pending edit for path. The value is deep-cloned before it
// enters the patch so no patch entry can alias caller-owned data, and the
// whole patch is persisted to the durable cache best-effort.
//
// A write supersedes every pending edit underneath it: descendant patch
// keys are dropped so a whole-subtree overwrite (an array operation, a
// collection snapshot) cannot be re-polluted by an older, staler edit
// inside it. A pending whole-collection snapshot is rebuilt after deeper
// section writes so it never trails the merged state.
func (s *Store) Write(path string, value any) {
	if s == nil || path == "" {
		return
	}
	sub := path + "."
	for key := range s.patch {
		if strings.HasPrefix(key, sub) {
			delete(s.patch, key)
		}
	}
	s.patch[path] = merge.Clone(value)
	if strings.HasPrefix(path, "sections.") {
		if _, ok := s.patch["sections"]; ok {
			s.patch["sections"] = s.sectionsValue()
		}
	}
	s.persist()
}

// Read resolves path with patch precedence: a literal patch entry wins;
// section-scoped paths resolve against the working collection with pending
// section edits deep-merged in; anything else falls back to the baseline
// value.
func (s *Store) Read(path string) any {
	if s == nil || path == "" {
		return nil
	}
	if v, ok := s.patch[path]; ok {
		return merge.Clone(v)
	}

	parts := strings.Split(path, ".")
	if parts[0] == "sections" {
		if len(parts) == 1 {
			return s.sectionsValue()
		}
		sec, ok := s.mergedSection(parts[1])
		if !ok {
			return nil
		}
		if len(parts) == 2 {
			return sec.AsMap()
		}
		v, _ := pathutil.Get(sec.Data, strings.Join(parts[2:], "."))
		return v
	}

	v, _ := pathutil.Get(map[string]any{
		"site":     s.baseline.Site,
		"features": s.baseline.Features,
	}, path)
	return merge.Clone(v)
}

// IsEditable reports whether path may be edited, consulting the schema with
// the current section-id to type mapping so sections added this session
// resolve correctly.
func (s *Store) IsEditable(path string) bool {
	return s.resolver().IsEditable(path)
}

// HasChanges reports whether any edits are pending.
func (s *Store) HasChanges() bool {
	return s != nil && len(s.patch) > 0
}

// Patch returns a deep copy of the pending edit patch.
func (s *Store) Patch() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(s.patch))
	for k, v := range s.patch {
		out[k] = merge.Clone(v)
	}
	return out
}

// SiteValues returns the baseline site fields with pending site-level edits
// merged in.
func (s *Store) SiteValues() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return s.mergedTopLevel("site", s.baseline.Site)
}

// FeatureValues returns the baseline feature flags with pending edits merged
// in.
func (s *Store) FeatureValues() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return s.mergedTopLevel("features", s.baseline.Features)
}

// Discard drops every pending edit: the patch is cleared, the working
// section collection resets to the baseline, and the durable cache entry is
// removed.
func (s *Store) Discard() {
	s.patch = map[string]any{}
	s.sections = s.baseline.CloneSections()
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(s.CacheKey()); err != nil {
		s.logger.Warn().Err(err).Str("key", s.CacheKey()).Msg("patch cache delete failed")
	}
}

// Publish hands the fully merged document and the raw patch to the
// configured publisher. On success the merged document becomes the new
// baseline and the store behaves like Discard; on failure the patch and
// working state are preserved so the operator can retry, and the error is
// returned as a reportable condition.
//
// A second Publish while one is outstanding is not guarded against; callers
// own that serialization.
func (s *Store) Publish(ctx context.Context) error {
	doc := s.mergedDocument()
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.siteID, doc, s.Patch()); err != nil {
			s.logger.Error().Err(err).Str("site", s.siteID).Msg("publish failed, edits preserved")
			return fmt.Errorf("preview: publish: %w", err)
		}
	}
	s.baseline = doc
	s.sections = doc.CloneSections()
	s.patch = map[string]any{}
	if s.cache != nil {
		if err := s.cache.Delete(s.CacheKey()); err != nil {
			s.logger.Warn().Err(err).Str("key", s.CacheKey()).Msg("patch cache delete failed")
		}
	}
	return nil
}

func (s *Store) mergedDocument() *site.Data {
	return &site.Data{
		Site:     s.SiteValues(),
		Features: s.FeatureValues(),
		Sections: s.ListSections(),
	}
}

func (s *Store) mergedTopLevel(prefix string, base map[string]any) map[string]any {
	out := map[string]any{}
	if base != nil {
		out = merge.Clone(base).(map[string]any)
	}
	for _, key := range s.patchKeysUnder(prefix + ".") {
		rel := strings.TrimPrefix(key, prefix+".")
		value := s.patch[key]
		pathutil.Update(out, rel, func(existing any) any {
			return merge.Merge(existing, value)
		})
	}
	return out
}

// mergedSection returns a deep copy of the working section with every
// pending patch entry scoped to it merged into its data. Shallower entries
// apply first so a whole-array overwrite and a deeper single-field edit on
// the same section compose.
func (s *Store) mergedSection(id string) (site.Section, bool) {
	idx := s.sectionIndex(id)
	if idx < 0 {
		return site.Section{}, false
	}
	sec := s.sections[idx].Clone()
	if sec.Data == nil {
		sec.Data = map[string]any{}
	}
	for _, key := range s.patchKeysUnder("sections." + id + ".") {
		rel := strings.TrimPrefix(key, "sections."+id+".")
		if rel == "" {
			continue
		}
		value := s.patch[key]
		pathutil.Update(sec.Data, rel, func(existing any) any {
			return merge.Merge(existing, value)
		})
	}
	return sec, true
}

// patchKeysUnder returns patch keys with the given prefix ordered shallow
// first, then lexically, so merge application is deterministic.
func (s *Store) patchKeysUnder(prefix string) []string {
	var keys []string
	for k := range s.patch {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		di := strings.Count(keys[i], ".")
		dj := strings.Count(keys[j], ".")
		if di != dj {
			return di < dj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (s *Store) sectionIndex(id string) int {
	for i, sec := range s.sections {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) resolver() *schema.Resolver {
	return schema.NewResolver(s.schema, s.typeOf)
}

func (s *Store) typeOf(sectionID string) (string, bool) {
	idx := s.sectionIndex(sectionID)
	if idx < 0 {
		return "", false
	}
	return s.sections[idx].Type, true
}

func (s *Store) persist() {
	if s.cache == nil {
		return
	}
	snapshot := make(map[string]any, len(s.patch))
	for k, v := range s.patch {
		snapshot[k] = v
	}
	if err := s.cache.Save(s.CacheKey(), snapshot); err != nil {
		s.logger.Warn().Err(err).Str("key", s.CacheKey()).Msg("patch cache write failed")
	}
}
