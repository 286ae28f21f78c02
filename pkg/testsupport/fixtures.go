// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sitepreview/pkg/schema"
	"github.com/goliatone/go-sitepreview/pkg/site"
)

// LoadSchema reads a fixture file and parses it as a site content schema.
// Testing helpers fail the test on error to keep contract tests concise.
func LoadSchema(t *testing.T, path string) *schema.Schema {
	t.Helper()

	sch, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return sch
}

// LoadSchemaFromPath parses a schema fixture without requiring testing.T so
// callers can wire fixtures in setup functions.
func LoadSchemaFromPath(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, errors.New("testsupport: schema path is required")
	}
	sch, err := schema.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: %w", err)
	}
	return sch, nil
}

// LoadSite reads a fixture file and parses it as a baseline site document.
func LoadSite(t *testing.T, path string) *site.Data {
	t.Helper()

	doc, err := site.LoadFile(path)
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	return doc
}

// MustEqual fails the test with a readable diff when got differs from want.
func MustEqual(t *testing.T, want, got any, label string) {
	t.Helper()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", label, diff)
	}
}

// WriteGolden writes a value as indented JSON under path when UPDATE_GOLDENS
// is set, creating parent directories. Used to refresh golden fixtures.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// LoadGolden reads a JSON golden file into out.
func LoadGolden(t *testing.T, path string, out any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
}
