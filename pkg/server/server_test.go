package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-sitepreview/pkg/preview"
	"github.com/goliatone/go-sitepreview/pkg/render"
	"github.com/goliatone/go-sitepreview/pkg/schema"
	"github.com/goliatone/go-sitepreview/pkg/site"
)

const testSchema = `{
  "site": {"brand": {"type": "string", "editable": true}},
  "features": {"blogEnabled": {"type": "boolean", "editable": true}},
  "sections": {
    "hero-main": {
      "title": {"type": "string", "editable": true},
      "badge": {"type": "string", "editable": false}
    },
    "services": {
      "items": {
        "type": "array",
        "editable": true,
        "maxItems": 3,
        "itemSchema": {"name": {"type": "string", "editable": true}}
      }
    },
    "testimonial": {"quote": {"type": "string", "editable": true}}
  },
  "sectionTypes": {
    "hero": {"displayName": "Hero", "singleton": true, "schemaId": "hero-main"},
    "testimonial": {"displayName": "Testimonial", "singleton": false, "schemaId": "testimonial"}
  }
}`

const testBaseline = `{
  "site": {"brand": "Acme Plumbing"},
  "features": {"blogEnabled": false},
  "sections": [
    {"id": "hero-main", "type": "hero", "enabled": true, "order": 10,
     "data": {"title": "Fast Local Plumbers", "badge": "Licensed"}},
    {"id": "services", "type": "services", "enabled": true, "order": 20,
     "data": {"items": [{"name": "Drain Cleaning"}, {"name": "Repiping"}]}}
  ]
}`

func testApp(t *testing.T, options ...preview.Option) *App {
	t.Helper()
	sch, err := schema.Parse([]byte(testSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	baseline, err := site.Parse([]byte(testBaseline))
	if err != nil {
		t.Fatalf("parse baseline: %v", err)
	}
	engine, err := render.NewEngine(render.WithTemplatesFS(render.DefaultTemplates()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return New(preview.New(sch, baseline, options...), engine)
}

func doJSON(t *testing.T, app *App, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleServicePage(t *testing.T) {
	app := testApp(t)

	body := `{"path": "sections.hero-main.title", "value": "Expert {{serviceName}} Service"}`
	if rec := doJSON(t, app, http.MethodPut, "/api/preview/value", body); rec.Code != http.StatusOK {
		t.Fatalf("set value status = %d: %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, app, http.MethodGet, "/services/repiping", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Expert Repiping Service") {
		t.Fatal("service name not substituted into rendered page")
	}

	if rec := doJSON(t, app, http.MethodGet, "/services/duct-sealing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown service status = %d", rec.Code)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Drain Cleaning": "drain-cleaning",
		"Water Heaters":  "water-heaters",
		"  Re-Piping!  ": "re-piping",
		"24/7 Emergency": "24-7-emergency",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandlePage(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	html := rec.Body.String()
	if !strings.Contains(html, "Acme Plumbing") {
		t.Fatal("brand missing from rendered page")
	}
	if !strings.Contains(html, `data-path="sections.hero-main.title"`) {
		t.Fatal("field annotations missing from rendered page")
	}
}

func TestValueRoundTrip(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodPut, "/api/preview/value",
		`{"path": "sections.hero-main.title", "value": "Plumbers You Trust"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, app, http.MethodGet, "/api/preview/value?path=sections.hero-main.title", "")
	var got struct {
		Value    any  `json:"value"`
		Editable bool `json:"editable"`
	}
	decode(t, rec, &got)
	if got.Value != "Plumbers You Trust" || !got.Editable {
		t.Fatalf("value = %+v", got)
	}
}

func TestSetValue_NonEditableRejected(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodPut, "/api/preview/value",
		`{"path": "sections.hero-main.badge", "value": "Unlicensed"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, app, http.MethodGet, "/api/preview/state", "")
	var state struct {
		HasChanges bool `json:"hasChanges"`
	}
	decode(t, rec, &state)
	if state.HasChanges {
		t.Fatal("rejected write must not change state")
	}
}

func TestSetValue_MissingPath(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodPut, "/api/preview/value", `{"value": "x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSectionLifecycle(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodPost, "/api/preview/sections", `{"type": "testimonial"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d: %s", rec.Code, rec.Body.String())
	}
	var sections []site.Section
	decode(t, rec, &sections)
	if len(sections) != 3 {
		t.Fatalf("section count = %d", len(sections))
	}
	added := sections[2]
	if added.Type != "testimonial" {
		t.Fatalf("added type = %q", added.Type)
	}

	rec = doJSON(t, app, http.MethodDelete, "/api/preview/sections/"+added.ID, "")
	decode(t, rec, &sections)
	if len(sections) != 2 {
		t.Fatalf("section count after remove = %d", len(sections))
	}
}

func TestSectionTypes(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/preview/section-types", "")
	var types map[string]preview.TypeStatus
	decode(t, rec, &types)
	if !types["hero"].IsAdded || types["hero"].CanAdd {
		t.Fatalf("hero = %+v", types["hero"])
	}
}

func TestItemOps(t *testing.T) {
	app := testApp(t)
	path := "sections.services.items"

	rec := doJSON(t, app, http.MethodPost, "/api/preview/items", `{"path": "`+path+`"}`)
	var got struct {
		Value  []any `json:"value"`
		CanAdd bool  `json:"canAdd"`
	}
	decode(t, rec, &got)
	if len(got.Value) != 3 {
		t.Fatalf("items = %d", len(got.Value))
	}
	if got.CanAdd {
		t.Fatal("cap of 3 reached, canAdd should be false")
	}

	rec = doJSON(t, app, http.MethodPost, "/api/preview/items/move", `{"path": "`+path+`", "from": 0, "to": 1}`)
	decode(t, rec, &got)
	first := got.Value[0].(map[string]any)
	if first["name"] != "Repiping" {
		t.Fatalf("first item after move = %v", first)
	}

	rec = doJSON(t, app, http.MethodDelete, "/api/preview/items", `{"path": "`+path+`", "index": 2}`)
	decode(t, rec, &got)
	if len(got.Value) != 2 {
		t.Fatalf("items after remove = %d", len(got.Value))
	}
}

func TestPublishAndDiscard(t *testing.T) {
	var published bool
	app := testApp(t, preview.WithPublisher(preview.PublisherFunc(
		func(context.Context, string, *site.Data, map[string]any) error {
			published = true
			return nil
		})))

	doJSON(t, app, http.MethodPut, "/api/preview/value",
		`{"path": "sections.hero-main.title", "value": "New Title"}`)

	rec := doJSON(t, app, http.MethodPost, "/api/preview/publish", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", rec.Code, rec.Body.String())
	}
	if !published {
		t.Fatal("publisher was not invoked")
	}

	doJSON(t, app, http.MethodPut, "/api/preview/value",
		`{"path": "sections.hero-main.title", "value": "Scratch"}`)
	rec = doJSON(t, app, http.MethodPost, "/api/preview/discard", "")
	var state struct {
		HasChanges bool `json:"hasChanges"`
	}
	decode(t, rec, &state)
	if state.HasChanges {
		t.Fatal("discard must clear pending edits")
	}
}

func TestPublish_FailureReturns502(t *testing.T) {
	app := testApp(t, preview.WithPublisher(preview.PublisherFunc(
		func(context.Context, string, *site.Data, map[string]any) error {
			return errors.New("backend down")
		})))

	doJSON(t, app, http.MethodPut, "/api/preview/value",
		`{"path": "sections.hero-main.title", "value": "New Title"}`)

	rec := doJSON(t, app, http.MethodPost, "/api/preview/publish", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	rec = doJSON(t, app, http.MethodGet, "/api/preview/state", "")
	var state struct {
		HasChanges bool `json:"hasChanges"`
	}
	decode(t, rec, &state)
	if !state.HasChanges {
		t.Fatal("edits must survive a failed publish")
	}
}

func TestBlog_DisabledBy404(t *testing.T) {
	app := testApp(t)

	rec := doJSON(t, app, http.MethodGet, "/blog", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when blog is disabled", rec.Code)
	}
}
