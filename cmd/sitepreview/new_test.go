package main

import (
	"testing"

	"github.com/goliatone/go-sitepreview/pkg/schema"
	"github.com/goliatone/go-sitepreview/pkg/site"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Plumbing":      "acme-plumbing",
		"  Joe's  Pizza!  ":  "joe-s-pizza",
		"already-a-slug":     "already-a-slug",
		"Mixed CASE Name 42": "mixed-case-name-42",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStarterDocumentsParse(t *testing.T) {
	answers := scaffoldAnswers{
		Brand:    "Acme Plumbing",
		SiteID:   "acme-plumbing",
		Sections: []string{"hero", "about", "services", "testimonial"},
		Blog:     true,
		Dir:      ".",
	}

	sch, err := schema.Parse(starterSchema(answers))
	if err != nil {
		t.Fatalf("starter schema does not parse: %v", err)
	}
	if _, ok := sch.SectionTypes["hero"]; !ok {
		t.Fatal("hero section type missing from starter schema")
	}
	if _, ok := sch.SectionSchemaByID("hero-main"); !ok {
		t.Fatal("hero-main schema missing from starter schema")
	}

	baseline, err := site.Parse(starterSite(answers))
	if err != nil {
		t.Fatalf("starter site does not parse: %v", err)
	}
	if len(baseline.Sections) != 3 {
		t.Fatalf("starter sections = %d, testimonial is repeatable and starts empty", len(baseline.Sections))
	}
	if baseline.Site["brand"] != "Acme Plumbing" {
		t.Fatalf("brand = %v", baseline.Site["brand"])
	}
	if baseline.Features["blogEnabled"] != true {
		t.Fatal("blog flag lost in starter site")
	}
}

func TestStarterDocumentsRespectSelection(t *testing.T) {
	answers := scaffoldAnswers{
		Brand:    "Acme",
		SiteID:   "acme",
		Sections: []string{"hero"},
	}

	sch, err := schema.Parse(starterSchema(answers))
	if err != nil {
		t.Fatalf("starter schema does not parse: %v", err)
	}
	if _, ok := sch.SectionTypes["services"]; ok {
		t.Fatal("unselected section type leaked into the schema")
	}

	baseline, err := site.Parse(starterSite(answers))
	if err != nil {
		t.Fatalf("starter site does not parse: %v", err)
	}
	if len(baseline.Sections) != 1 {
		t.Fatalf("starter sections = %d, want hero only", len(baseline.Sections))
	}
}
