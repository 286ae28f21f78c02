// Package site models the published baseline content of a site: site-level
// fields, feature flags, and the ordered section collection. Baseline data is
// read-only from the editor's perspective; the preview store works on deep
// copies and only publish replaces it.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sitepreview/internal/merge"
)

// Section is one ordered, enableable block of page content. Type selects the
// schema describing Data's shape; Order is the render sort key among enabled
// sections, ties broken by collection position.
type Section struct {
	ID      string         `json:"id" yaml:"id"`
	Type    string         `json:"type" yaml:"type"`
	Enabled bool           `json:"enabled" yaml:"enabled"`
	Order   int            `json:"order" yaml:"order"`
	Data    map[string]any `json:"data" yaml:"data"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	if s.Data != nil {
		out.Data = merge.Clone(s.Data).(map[string]any)
	}
	return out
}

// AsMap renders the section as generic mapping data, the shape used for
// patch entries and serialization.
func (s Section) AsMap() map[string]any {
	return map[string]any{
		"id":      s.ID,
		"type":    s.Type,
		"enabled": s.Enabled,
		"order":   s.Order,
		"data":    merge.Clone(s.Data),
	}
}

// Data is the baseline site document.
type Data struct {
	Site     map[string]any `json:"site" yaml:"site"`
	Features map[string]any `json:"features" yaml:"features"`
	Sections []Section      `json:"sections" yaml:"sections"`
}

// Parse decodes a serialized site document, trying JSON first and falling
// back to YAML.
func Parse(data []byte) (*Data, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("site: document is empty")
	}
	var out Data
	if err := json.Unmarshal(data, &out); err == nil {
		return normalize(&out), nil
	}
	if err := yaml.Unmarshal(data, &out); err == nil {
		return normalize(&out), nil
	}
	return nil, fmt.Errorf("site: parse document: invalid JSON or YAML")
}

// LoadFile reads and parses a site document from disk.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", path, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("site: %s: %w", path, err)
	}
	return doc, nil
}

// Section returns the section with the given id.
func (d *Data) Section(id string) (Section, bool) {
	if d == nil {
		return Section{}, false
	}
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// CloneSections deep-copies the section collection, preserving order.
func (d *Data) CloneSections() []Section {
	if d == nil {
		return nil
	}
	out := make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Clone()
	}
	return out
}

// Clone deep-copies the whole document.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := &Data{Sections: d.CloneSections()}
	if d.Site != nil {
		out.Site = merge.Clone(d.Site).(map[string]any)
	}
	if d.Features != nil {
		out.Features = merge.Clone(d.Features).(map[string]any)
	}
	return out
}

func normalize(d *Data) *Data {
	if d.Site == nil {
		d.Site = map[string]any{}
	}
	if d.Features == nil {
		d.Features = map[string]any{}
	}
	return d
}
