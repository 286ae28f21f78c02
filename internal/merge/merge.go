// Package merge implements the deep-copy and deep-merge semantics shared by
// the preview store: arrays replace wholesale, maps merge key by key, and
// scalars overwrite. Every value that crosses into or out of a patch is
// cloned so no two patch entries can alias the same nested object.
package merge

// Clone returns a deep copy of v. Maps and slices are rebuilt recursively;
// scalars are returned as-is.
func Clone(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// Merge layers src over dst and returns the result without mutating either
// input. When both sides are maps the keys merge recursively; any other
// combination resolves to a clone of src, which gives arrays replace-wholesale
// semantics and lets scalars overwrite.
func Merge(dst, src any) any {
	srcMap, srcOK := src.(map[string]any)
	dstMap, dstOK := dst.(map[string]any)
	if !srcOK || !dstOK {
		return Clone(src)
	}
	out := make(map[string]any, len(dstMap)+len(srcMap))
	for k, v := range dstMap {
		out[k] = Clone(v)
	}
	for k, v := range srcMap {
		if existing, ok := out[k]; ok {
			out[k] = Merge(existing, v)
			continue
		}
		out[k] = Clone(v)
	}
	return out
}
