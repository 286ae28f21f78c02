package preview

import "github.com/goliatone/go-sitepreview/pkg/schema"

// AddItem appends a derived-default element to the array at arrayPath. The
// current effective array (baseline merged with pending edits) is read so
// repeated operations compose within a session. When the array schema caps
// the item count and the cap is reached, the call is a silent no-op.
func (s *Store) AddItem(arrayPath string) {
	current := s.effectiveArray(arrayPath)
	node, ok := s.resolver().ArrayNode(arrayPath)
	if ok && node.MaxItems > 0 && len(current) >= node.MaxItems {
		return
	}

	var item any = ""
	if ok {
		item = schema.DeriveItem(node)
	}

	next := make([]any, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, item)
	s.Write(arrayPath, next)
}

// CanAddItem reports whether AddItem would grow the array, exposed as a pure
// predicate so the UI can disable its affordance.
func (s *Store) CanAddItem(arrayPath string) bool {
	node, ok := s.resolver().ArrayNode(arrayPath)
	if !ok || node.MaxItems <= 0 {
		return true
	}
	return len(s.effectiveArray(arrayPath)) < node.MaxItems
}

// RemoveItem drops the element at index. Out-of-range indices are a silent
// no-op.
func (s *Store) RemoveItem(arrayPath string, index int) {
	current := s.effectiveArray(arrayPath)
	if index < 0 || index >= len(current) {
		return
	}
	next := make([]any, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	s.Write(arrayPath, next)
}

// MoveItem repositions the element at from to index to, shifting the
// in-between elements. Invalid indices or from == to are a silent no-op.
func (s *Store) MoveItem(arrayPath string, from, to int) {
	current := s.effectiveArray(arrayPath)
	if from == to || from < 0 || from >= len(current) || to < 0 || to >= len(current) {
		return
	}
	next := make([]any, 0, len(current))
	next = append(next, current...)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	rest := append(next[:to:to], moved)
	next = append(rest, next[to:]...)
	s.Write(arrayPath, next)
}

func (s *Store) effectiveArray(arrayPath string) []any {
	if arr, ok := s.Read(arrayPath).([]any); ok {
		return arr
	}
	return nil
}
