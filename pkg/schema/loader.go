package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a serialized schema document. JSON is tried first, then
// YAML, so the same entry point serves both formats.
func Parse(data []byte) (*Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: document is empty")
	}

	var out Schema
	if err := json.Unmarshal(data, &out); err == nil {
		return normalize(&out), nil
	}
	if err := yaml.Unmarshal(data, &out); err == nil {
		return normalize(&out), nil
	}
	return nil, fmt.Errorf("schema: parse document: invalid JSON or YAML")
}

// LoadFile reads and parses a schema document from disk.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return doc, nil
}

// normalize fills the maps callers index into so a sparse document never
// produces nil-map lookups downstream.
func normalize(s *Schema) *Schema {
	if s.Site == nil {
		s.Site = map[string]*Node{}
	}
	if s.Features == nil {
		s.Features = map[string]*Node{}
	}
	if s.Sections == nil {
		s.Sections = map[string]*Node{}
	}
	if s.SectionTypes == nil {
		s.SectionTypes = map[string]SectionType{}
	}
	return s
}
