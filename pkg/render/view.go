// Package render turns the preview store's merged state into page views and
// HTML. Views are plain data so transports and templates stay decoupled from
// the edit-state engine.
package render

import (
	"sort"
	"strconv"

	"github.com/goliatone/go-sitepreview/pkg/site"
)

// Source is the read surface the view builder consumes. The preview store
// satisfies it; tests can substitute fixtures.
type Source interface {
	Read(path string) any
	ListSections() []site.Section
	IsEditable(path string) bool
	SiteValues() map[string]any
	FeatureValues() map[string]any
}

// Field is one addressable leaf value inside a section, annotated for the
// editing UI.
type Field struct {
	Path     string `json:"path"`
	Display  string `json:"display"`
	Editable bool   `json:"editable"`
}

// SectionView is one renderable section with its merged data and the flat
// field list the editor overlays on it.
type SectionView struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Order  int            `json:"order"`
	Data   map[string]any `json:"data"`
	Fields []Field        `json:"fields"`
}

// PageView is everything a page template needs: merged site fields, feature
// flags, and enabled sections in render order.
type PageView struct {
	Site     map[string]any `json:"site"`
	Features map[string]any `json:"features"`
	Sections []SectionView  `json:"sections"`
}

// BuildPage assembles a page view from src. Disabled sections are dropped;
// the rest sort by order with collection position breaking ties.
func BuildPage(src Source) *PageView {
	view := &PageView{
		Site:     src.SiteValues(),
		Features: src.FeatureValues(),
	}
	for _, sec := range src.ListSections() {
		if !sec.Enabled {
			continue
		}
		view.Sections = append(view.Sections, buildSection(src, sec))
	}
	sort.SliceStable(view.Sections, func(i, j int) bool {
		return view.Sections[i].Order < view.Sections[j].Order
	})
	return view
}

func buildSection(src Source, sec site.Section) SectionView {
	view := SectionView{
		ID:    sec.ID,
		Type:  sec.Type,
		Order: sec.Order,
		Data:  sec.Data,
	}
	collectFields(src, "sections."+sec.ID, sec.Data, &view.Fields)
	sort.Slice(view.Fields, func(i, j int) bool {
		return view.Fields[i].Path < view.Fields[j].Path
	})
	return view
}

// collectFields flattens scalar leaves into dotted field paths. Array
// elements address by index, mirroring the read and edit path grammar.
func collectFields(src Source, prefix string, value any, out *[]Field) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			collectFields(src, prefix+"."+key, child, out)
		}
	case []any:
		for i, child := range v {
			collectFields(src, prefix+"."+strconv.Itoa(i), child, out)
		}
	default:
		*out = append(*out, Field{
			Path:     prefix,
			Display:  DisplayString(value),
			Editable: src.IsEditable(prefix),
		})
	}
}
