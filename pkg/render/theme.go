package render

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeResolver selects theme manifests by name and variant. It implements
// the go-theme selector contract over a fixed manifest set.
type ThemeResolver struct {
	manifests map[string]*theme.Manifest
	fallback  string
}

// NewThemeResolver builds a resolver over the given manifests. The first
// manifest is the fallback when no theme name is requested.
func NewThemeResolver(manifests ...*theme.Manifest) *ThemeResolver {
	r := &ThemeResolver{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, m := range manifests {
		if m == nil || m.Name == "" {
			continue
		}
		if r.fallback == "" {
			r.fallback = m.Name
		}
		r.manifests[m.Name] = m
	}
	return r
}

var _ theme.ThemeSelector = (*ThemeResolver)(nil)

// Select resolves name and variant to a theme selection. An empty name falls
// back to the first registered manifest; unknown variants resolve to the
// manifest's base configuration.
func (r *ThemeResolver) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = r.fallback
	}
	manifest, ok := r.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not registered", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			variant = ""
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// BuildThemeConfig flattens a selection into the renderer configuration:
// variant values overlay the manifest base, tokens double as CSS custom
// properties, and asset keys resolve against the manifest prefix.
func BuildThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := overlayStrings(manifest.Tokens, nil)
	partials := overlayStrings(manifest.Templates, nil)
	assets := overlayStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if selection.Variant != "" {
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			tokens = overlayStrings(tokens, variant.Tokens)
			partials = overlayStrings(partials, variant.Templates)
			assets = overlayStrings(assets, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for name, value := range tokens {
		cssVars["--"+name] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, assets),
	}
}

// CSSVarsStyle renders CSS custom properties as an inline style payload for
// the page shell.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(vars[name])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + file
	}
}

func overlayStrings(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}
