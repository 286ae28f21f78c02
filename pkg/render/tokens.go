package render

import "strings"

// SubstituteTokens replaces {{name}} style tokens in text with values from
// vars. Unknown tokens are left intact so a missing value is visible instead
// of silently blank.
func SubstituteTokens(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	out := text
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}

// SubstituteTokensDeep applies SubstituteTokens to every string leaf in a
// generic document, returning a new value. Service detail pages use this to
// stamp the selected service's name into shared section content.
func SubstituteTokensDeep(value any, vars map[string]string) any {
	switch v := value.(type) {
	case string:
		return SubstituteTokens(v, vars)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = SubstituteTokensDeep(child, vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = SubstituteTokensDeep(child, vars)
		}
		return out
	default:
		return v
	}
}
