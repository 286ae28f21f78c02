// Package pathutil provides read and write access to nested map and slice
// structures addressed by dot-delimited string paths such as
// "sections.hero-main.primaryCta.label" or "sections.services.items.2.price".
//
// Lookups use optional-chaining semantics: a missing segment or a segment
// applied to a non-container value resolves to a miss, never a panic. Writes
// create intermediate map nodes on demand and mutate the supplied root in
// place; callers that need immutability copy first.
package pathutil

import (
	"strconv"
	"strings"
)

// Get walks path against root and returns the addressed value. The boolean
// reports whether every segment resolved; a stored nil value is returned with
// ok set to true, distinguishing it from a missing path.
func Get(root any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := root
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set assigns value at path inside root, creating intermediate map nodes for
// segments that do not exist yet. Existing slices are indexed when the next
// segment parses as an in-range integer; an out-of-range index makes the
// write a silent no-op. The mutated root is returned for chaining.
func Set(root map[string]any, path string, value any) map[string]any {
	if root == nil || path == "" {
		return root
	}
	Update(root, path, func(any) any { return value })
	return root
}

// Update resolves path like Set but hands the existing value (nil when the
// leaf is absent) to fn and stores the result. It exists so callers can merge
// into the addressed slot instead of overwriting it.
func Update(root map[string]any, path string, fn func(existing any) any) {
	if root == nil || path == "" || fn == nil {
		return
	}
	segs := strings.Split(path, ".")
	last := segs[len(segs)-1]

	var current any = root
	for _, seg := range segs[:len(segs)-1] {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok || !isContainer(next) {
				child := map[string]any{}
				node[seg] = child
				current = child
				continue
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return
			}
			if !isContainer(node[idx]) {
				child := map[string]any{}
				node[idx] = child
				current = child
				continue
			}
			current = node[idx]
		default:
			return
		}
	}

	switch node := current.(type) {
	case map[string]any:
		node[last] = fn(node[last])
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(node) {
			return
		}
		node[idx] = fn(node[idx])
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
