package preview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sitepreview/pkg/preview"
	"github.com/goliatone/go-sitepreview/pkg/site"
	"github.com/goliatone/go-sitepreview/pkg/testsupport"
)

func TestWrite_PatchPrecedence(t *testing.T) {
	s := fixture(t)

	if got := s.Read("sections.about.title"); got != "About Us" {
		t.Fatalf("baseline read = %v", got)
	}

	s.Write("sections.about.title", "Our Story")

	if got := s.Read("sections.about.title"); got != "Our Story" {
		t.Fatalf("patched read = %v", got)
	}
	if !s.HasChanges() {
		t.Fatal("HasChanges should be true after a write")
	}

	about := sectionByID(t, s.ListSections(), "about")
	if about.Data["title"] != "Our Story" {
		t.Fatalf("merged section title = %v", about.Data["title"])
	}
	if about.Data["description"] != "Family owned since 1985." {
		t.Fatal("untouched sibling field should survive the merge")
	}
}

func TestRead_SiteAndFeatureFallback(t *testing.T) {
	s := fixture(t)

	if got := s.Read("site.brand"); got != "Acme Plumbing" {
		t.Fatalf("site.brand = %v", got)
	}
	if got := s.Read("features.blogEnabled"); got != true {
		t.Fatalf("features.blogEnabled = %v", got)
	}
	if got := s.Read("site.missing"); got != nil {
		t.Fatalf("missing path = %v", got)
	}
	if got := s.Read("sections.unknown.title"); got != nil {
		t.Fatalf("unknown section read = %v", got)
	}

	s.Write("site.brand", "Acme Plumbing & Heating")
	if got := s.Read("site.brand"); got != "Acme Plumbing & Heating" {
		t.Fatalf("patched site.brand = %v", got)
	}
	if got := s.SiteValues()["brand"]; got != "Acme Plumbing & Heating" {
		t.Fatalf("SiteValues brand = %v", got)
	}
	if got := s.SiteValues()["city"]; got != "Austin" {
		t.Fatalf("SiteValues city = %v", got)
	}
}

func TestRead_WholeArrayAndFieldEditCoexist(t *testing.T) {
	s := fixture(t)

	// A still-pending text edit on the section...
	s.Write("sections.services.title", "What We Do")
	// ...must survive a later whole-array overwrite from a move.
	s.MoveItem("sections.services.items", 0, 2)

	services := sectionByID(t, s.ListSections(), "services")
	if services.Data["title"] != "What We Do" {
		t.Fatalf("title lost: %v", services.Data["title"])
	}
	got := itemNames(t, services.Data["items"].([]any))
	want := []string{"Repiping", "Water Heaters", "Drain Cleaning"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("items after move (-want +got):\n%s", diff)
	}
}

func TestWrite_ArrayOverwriteSupersedesItemEdit(t *testing.T) {
	s := fixture(t)

	// An in-array field edit followed by an array operation: the whole-array
	// write carries the edit at its new position and must retire the stale
	// per-index entry, or the edit re-applies at the old index.
	s.Write("sections.services.items.0.name", "Hydro Jetting")
	s.MoveItem("sections.services.items", 0, 2)

	want := []string{"Repiping", "Water Heaters", "Hydro Jetting"}
	read := itemNames(t, s.Read("sections.services.items").([]any))
	if diff := cmp.Diff(want, read); diff != "" {
		t.Fatalf("read after move (-want +got):\n%s", diff)
	}
	listed := itemNames(t, sectionByID(t, s.ListSections(), "services").Data["items"].([]any))
	if diff := cmp.Diff(want, listed); diff != "" {
		t.Fatalf("listed after move (-want +got):\n%s", diff)
	}
	if got := s.Read("sections.services.items.0.name"); got != "Repiping" {
		t.Fatalf("first item name = %v, want Repiping", got)
	}
}

func TestWrite_CollectionSnapshotStaysFresh(t *testing.T) {
	s := fixture(t)

	s.AddSection("testimonial")
	s.Write("sections.hero-main.title", "Same-Day Plumbing")

	raw, ok := s.Read("sections").([]any)
	if !ok || len(raw) != 5 {
		t.Fatalf("sections snapshot = %T len %d, want 5 entries", raw, len(raw))
	}
	hero := raw[0].(map[string]any)["data"].(map[string]any)
	if hero["title"] != "Same-Day Plumbing" {
		t.Fatalf("snapshot title = %v, want the pending edit", hero["title"])
	}
}

func TestSectionOpKeepsPendingItemAdd(t *testing.T) {
	s := fixture(t)

	s.AddItem("sections.services.items")
	s.AddSection("testimonial")

	items := sectionByID(t, s.ListSections(), "services").Data["items"].([]any)
	if len(items) != 4 {
		t.Fatalf("items = %d, want the pending add to survive the section op", len(items))
	}
}

func TestDiscard_RestoresBaseline(t *testing.T) {
	cache := preview.NewMemoryCache()
	s := fixture(t, preview.WithSiteID("acme"), preview.WithCache(cache))

	s.Write("sections.about.title", "Our Story")
	s.AddSection("testimonial")
	s.RemoveSection("industries-served")
	s.AddItem("sections.services.items")

	if _, ok := cache.Get("preview-acme"); !ok {
		t.Fatal("patch should be persisted to the cache")
	}

	s.Discard()

	if s.HasChanges() {
		t.Fatal("patch should be empty after discard")
	}
	if _, ok := cache.Get("preview-acme"); ok {
		t.Fatal("cache entry should be removed on discard")
	}
	if got := s.Read("sections.about.title"); got != "About Us" {
		t.Fatalf("read after discard = %v", got)
	}

	baseline := testsupport.LoadSite(t, fixtureSitePath())
	if diff := cmp.Diff(baseline.Sections, s.ListSections()); diff != "" {
		t.Fatalf("sections after discard (-want +got):\n%s", diff)
	}
}

func TestPublish_EndToEnd(t *testing.T) {
	cache := preview.NewMemoryCache()
	var published *site.Data
	var publishedPatch map[string]any

	s := fixture(t,
		preview.WithSiteID("acme"),
		preview.WithCache(cache),
		preview.WithPublisher(preview.PublisherFunc(func(_ context.Context, siteID string, doc *site.Data, patch map[string]any) error {
			if siteID != "acme" {
				t.Fatalf("publisher siteID = %q", siteID)
			}
			published = doc
			publishedPatch = patch
			return nil
		})),
	)

	s.Write("sections.about.title", "Our Story")
	if err := s.Publish(context.Background()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if published == nil {
		t.Fatal("publisher was not invoked")
	}
	if got := sectionByID(t, published.Sections, "about").Data["title"]; got != "Our Story" {
		t.Fatalf("published title = %v", got)
	}
	if publishedPatch["sections.about.title"] != "Our Story" {
		t.Fatalf("published patch = %v", publishedPatch)
	}

	// Post-publish: the merged document is the new baseline.
	if s.HasChanges() {
		t.Fatal("patch should be cleared after publish")
	}
	if got := s.Read("sections.about.title"); got != "Our Story" {
		t.Fatalf("read after publish = %v", got)
	}
	if _, ok := cache.Get("preview-acme"); ok {
		t.Fatal("cache entry should be removed after publish")
	}

	// Discard after publish keeps the published content.
	s.Discard()
	if got := s.Read("sections.about.title"); got != "Our Story" {
		t.Fatalf("read after discard-post-publish = %v", got)
	}
}

func TestPublish_FailurePreservesEdits(t *testing.T) {
	boom := errors.New("backend unavailable")
	s := fixture(t, preview.WithPublisher(preview.PublisherFunc(func(context.Context, string, *site.Data, map[string]any) error {
		return boom
	})))

	s.Write("sections.about.title", "Our Story")

	err := s.Publish(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("publish error = %v", err)
	}
	if !s.HasChanges() {
		t.Fatal("patch must be preserved on publish failure")
	}
	if got := s.Read("sections.about.title"); got != "Our Story" {
		t.Fatalf("read after failed publish = %v", got)
	}
}

type failingCache struct{}

func (failingCache) Save(string, map[string]any) error { return errors.New("disk full") }
func (failingCache) Delete(string) error               { return errors.New("disk full") }

func TestWrite_CacheFailureIsSwallowed(t *testing.T) {
	s := fixture(t, preview.WithCache(failingCache{}))

	s.Write("sections.about.title", "Our Story")
	if got := s.Read("sections.about.title"); got != "Our Story" {
		t.Fatal("in-memory patch must remain authoritative when the cache fails")
	}
	s.Discard()
	if got := s.Read("sections.about.title"); got != "About Us" {
		t.Fatal("discard must work when the cache fails")
	}
}

func TestWrite_ClonesValue(t *testing.T) {
	s := fixture(t)

	value := map[string]any{"label": "Call Today"}
	s.Write("sections.hero-main.primaryCta", value)
	value["label"] = "mutated"

	hero := sectionByID(t, s.ListSections(), "hero-main")
	cta := hero.Data["primaryCta"].(map[string]any)
	if cta["label"] != "Call Today" {
		t.Fatalf("patch aliased caller value: %v", cta["label"])
	}
	if cta["href"] != "#contact" {
		t.Fatalf("compound merge lost href: %v", cta["href"])
	}
}

func TestIsEditable_Delegation(t *testing.T) {
	s := fixture(t)

	if !s.IsEditable("site.brand") {
		t.Fatal("site.brand should be editable")
	}
	if s.IsEditable("site.locale") {
		t.Fatal("site.locale is non-editable")
	}
	if !s.IsEditable("sections.hero-main.primaryCta.label") {
		t.Fatal("cta label should be editable")
	}
	if s.IsEditable("sections.hero-main.primaryCta.href") {
		t.Fatal("cta href is non-editable by design")
	}
	if s.IsEditable("sections.unknown-id.title") {
		t.Fatal("unknown section must fail closed")
	}
}

func TestIsEditable_AddedRepeatableSection(t *testing.T) {
	s := fixture(t, preview.WithIDSuffix(func() string { return "fixed" }))

	s.AddSection("testimonial")

	if !s.IsEditable("sections.testimonial-fixed.quote") {
		t.Fatal("added repeatable section must resolve through its schemaId")
	}
}

func TestRead_WholeSectionsPath(t *testing.T) {
	s := fixture(t)
	s.AddSection("testimonial")

	v, ok := s.Read("sections").([]any)
	if !ok || len(v) != 5 {
		t.Fatalf("sections read = %T len %d", s.Read("sections"), len(v))
	}
}

func TestNilStoreAccessors(t *testing.T) {
	var s *preview.Store

	s.Write("site.brand", "ignored")
	if got := s.Read("site.brand"); got != nil {
		t.Fatalf("nil store read = %v, want nil", got)
	}
	if s.HasChanges() {
		t.Fatal("nil store reports changes")
	}
	if got := s.Patch(); len(got) != 0 {
		t.Fatalf("nil store patch = %v, want empty", got)
	}
	if got := s.SiteValues(); len(got) != 0 {
		t.Fatalf("nil store site values = %v, want empty", got)
	}
	if got := s.FeatureValues(); len(got) != 0 {
		t.Fatalf("nil store feature values = %v, want empty", got)
	}
}
