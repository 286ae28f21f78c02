package render

import (
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	displayPolicyOnce sync.Once
	displayPolicy     *bluemonday.Policy
)

// DisplayString coerces a field value into the string the editor shows.
// Strings pass through a sanitizer so markup smuggled into content cannot
// reach the page; numbers drop their trailing zeros the way the inputs
// produced them.
func DisplayString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return sanitizeDisplay(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func sanitizeDisplay(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(displaySanitizer().Sanitize(trimmed))
}

func displaySanitizer() *bluemonday.Policy {
	displayPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		// Inline emphasis survives; everything structural is stripped.
		policy.AllowElements("b", "strong", "i", "em", "br")
		displayPolicy = policy
	})
	return displayPolicy
}
