package preview_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-sitepreview/pkg/preview"
	"github.com/goliatone/go-sitepreview/pkg/site"
	"github.com/goliatone/go-sitepreview/pkg/testsupport"
)

func fixtureSchemaPath() string {
	return filepath.Join("testdata", "schema.json")
}

func fixtureSitePath() string {
	return filepath.Join("testdata", "site.json")
}

func fixture(t *testing.T, options ...preview.Option) *preview.Store {
	t.Helper()
	sch := testsupport.LoadSchema(t, fixtureSchemaPath())
	baseline := testsupport.LoadSite(t, fixtureSitePath())
	return preview.New(sch, baseline, options...)
}

func sectionByID(t *testing.T, sections []site.Section, id string) site.Section {
	t.Helper()
	for _, s := range sections {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("section %q not found in %d sections", id, len(sections))
	return site.Section{}
}

func itemNames(t *testing.T, arr []any) []string {
	t.Helper()
	out := make([]string, len(arr))
	for i, v := range arr {
		m, ok := v.(map[string]any)
		if !ok {
			t.Fatalf("item %d is %T, want map", i, v)
		}
		out[i], _ = m["name"].(string)
	}
	return out
}
