package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type scaffoldAnswers struct {
	Brand    string
	SiteID   string
	Sections []string
	Blog     bool
	Dir      string
}

// runNew walks the operator through scaffolding a new site: a starter
// schema, a baseline document, and the server configuration pointing at
// them.
func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory to scaffold into")
	if err := fs.Parse(args); err != nil {
		return err
	}

	answers := scaffoldAnswers{Dir: *dir}
	if err := ask(&answers); err != nil {
		return err
	}

	if err := os.MkdirAll(answers.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	files := map[string][]byte{
		"schema.json":      starterSchema(answers),
		"site.json":        starterSite(answers),
		"sitepreview.yaml": starterConfig(answers),
	}
	for name, payload := range files {
		path := filepath.Join(answers.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("created %s\n", path)
	}

	fmt.Println("\nstart the preview server with:")
	fmt.Printf("  sitepreview -config %s\n", filepath.Join(answers.Dir, "sitepreview.yaml"))
	return nil
}

func ask(answers *scaffoldAnswers) error {
	if err := survey.AskOne(&survey.Input{
		Message: "Site brand name:",
		Default: "My Business",
	}, &answers.Brand); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Site id (lowercase, dashes):",
		Default: slugify(answers.Brand),
	}, &answers.SiteID, survey.WithValidator(func(v any) error {
		s, _ := v.(string)
		if !slugPattern.MatchString(s) {
			return errors.New("use lowercase letters, digits, and dashes")
		}
		return nil
	})); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.MultiSelect{
		Message: "Sections to start with:",
		Options: []string{"hero", "about", "services", "testimonial"},
		Default: []string{"hero", "about", "services"},
	}, &answers.Sections); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Confirm{
		Message: "Enable the blog feature?",
		Default: false,
	}, &answers.Blog); err != nil {
		return err
	}

	return nil
}

func slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func starterSchema(a scaffoldAnswers) []byte {
	editable := func(kind string) map[string]any {
		return map[string]any{"type": kind, "editable": true}
	}

	sections := map[string]any{}
	sectionTypes := map[string]any{}
	add := func(name string, singleton bool, schema map[string]any) {
		if !contains(a.Sections, name) {
			return
		}
		schemaID := name
		if name == "hero" {
			schemaID = "hero-main"
		}
		sections[schemaID] = schema
		sectionTypes[name] = map[string]any{
			"displayName": titleCase(name),
			"singleton":   singleton,
			"schemaId":    schemaID,
		}
	}

	add("hero", true, map[string]any{
		"title":    editable("string"),
		"subtitle": editable("string"),
		"primaryCta": map[string]any{
			"label": editable("string"),
			"href":  map[string]any{"type": "string", "editable": false},
		},
	})
	add("about", true, map[string]any{
		"title":       editable("string"),
		"description": editable("string"),
	})
	add("services", true, map[string]any{
		"title": editable("string"),
		"items": map[string]any{
			"type":     "array",
			"editable": true,
			"maxItems": 8,
			"itemSchema": map[string]any{
				"name":        editable("string"),
				"description": editable("string"),
				"price":       editable("string"),
			},
		},
	})
	add("testimonial", false, map[string]any{
		"quote":      editable("string"),
		"authorName": editable("string"),
	})

	doc := map[string]any{
		"site": map[string]any{
			"brand": editable("string"),
			"phone": editable("string"),
			"email": editable("string"),
		},
		"features": map[string]any{
			"blogEnabled": editable("boolean"),
		},
		"sections":     sections,
		"sectionTypes": sectionTypes,
	}
	payload, _ := json.MarshalIndent(doc, "", "  ")
	return append(payload, '\n')
}

func starterSite(a scaffoldAnswers) []byte {
	var sections []map[string]any
	order := 0
	add := func(id, typeName string, data map[string]any) {
		if !contains(a.Sections, typeName) {
			return
		}
		order += 10
		sections = append(sections, map[string]any{
			"id": id, "type": typeName, "enabled": true, "order": order, "data": data,
		})
	}

	add("hero-main", "hero", map[string]any{
		"title":    "Welcome to " + a.Brand,
		"subtitle": "Placeholder Subtitle",
		"primaryCta": map[string]any{
			"label": "Contact Us",
			"href":  "#contact",
		},
	})
	add("about", "about", map[string]any{
		"title":       "About " + a.Brand,
		"description": "Placeholder description...",
	})
	add("services", "services", map[string]any{
		"title": "Our Services",
		"items": []map[string]any{
			{"name": "Placeholder Name", "description": "Placeholder description...", "price": "$$"},
		},
	})

	doc := map[string]any{
		"site": map[string]any{
			"brand": a.Brand,
			"phone": "(555) 000-0000",
			"email": "hello@example.com",
		},
		"features": map[string]any{
			"blogEnabled": a.Blog,
		},
		"sections": sections,
	}
	payload, _ := json.MarshalIndent(doc, "", "  ")
	return append(payload, '\n')
}

func starterConfig(a scaffoldAnswers) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "site:\n")
	fmt.Fprintf(&b, "  id: %q\n", a.SiteID)
	fmt.Fprintf(&b, "  schema_path: %q\n", filepath.Join(a.Dir, "schema.json"))
	fmt.Fprintf(&b, "  data_path: %q\n", filepath.Join(a.Dir, "site.json"))
	fmt.Fprintf(&b, "\ncache:\n  path: %q\n", filepath.Join(a.Dir, "data", "preview.db"))
	fmt.Fprintf(&b, "\npublish:\n  path: %q\n", filepath.Join(a.Dir, "data", "snapshots.db"))
	fmt.Fprintf(&b, "\ntheme:\n  name: \"default\"\n")
	fmt.Fprintf(&b, "\nlogging:\n  level: \"info\"\n  format: \"console\"\n")
	return []byte(b.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
