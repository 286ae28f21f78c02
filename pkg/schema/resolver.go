package schema

import (
	"strconv"
	"strings"
)

const sectionsPrefix = "sections"

// TypeLookup reports the runtime type of a section instance by its id. The
// preview store supplies one backed by the current working section
// collection, so sections added during the session resolve through their
// type's schema id rather than the generated instance id.
type TypeLookup func(sectionID string) (string, bool)

// Resolver maps dot-delimited data paths to editability decisions by walking
// the schema tree. Every miss fails closed: an unknown section, a missing
// field, or a token that cannot be resolved yields "not editable" rather
// than an error.
type Resolver struct {
	schema *Schema
	lookup TypeLookup
}

// NewResolver builds a resolver over schema. lookup may be nil when only
// baseline section ids need to resolve.
func NewResolver(s *Schema, lookup TypeLookup) *Resolver {
	return &Resolver{schema: s, lookup: lookup}
}

// IsEditable reports whether the exact field addressed by path may be
// edited.
//
// Array-index segments are resolved against the array's item schema, not
// against the current array bounds: "sections.services.items.99.price" is
// editable whenever the item schema marks price editable, even if the array
// holds fewer items. The check is a schema-shape decision, deliberately not
// an instance-bounds one.
func (r *Resolver) IsEditable(path string) bool {
	node, ok := r.Node(path)
	return ok && node != nil && node.Editable
}

// Node resolves path to its schema node. Paths outside the sections
// namespace resolve against the site and features schemas directly.
func (r *Resolver) Node(path string) (*Node, bool) {
	if r == nil || r.schema == nil || path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")

	if parts[0] != sectionsPrefix {
		return r.siteNode(parts)
	}
	if len(parts) < 3 {
		return nil, false
	}
	root, ok := r.SectionSchema(parts[1])
	if !ok {
		return nil, false
	}
	return walk(root, parts[2:])
}

// ArrayNode resolves path and returns the node when it describes an array
// field, for callers that need maxItems or the item schema.
func (r *Resolver) ArrayNode(path string) (*Node, bool) {
	node, ok := r.Node(path)
	if !ok || node == nil || node.Type != FieldTypeArray {
		return nil, false
	}
	return node, true
}

// SectionSchema looks up a section's schema by its runtime id, falling back
// to the type registry's schema id indirection for repeatable instances.
func (r *Resolver) SectionSchema(sectionID string) (*Node, bool) {
	if node, ok := r.schema.SectionSchemaByID(sectionID); ok {
		return node, true
	}
	if r.lookup == nil {
		return nil, false
	}
	typeName, ok := r.lookup(sectionID)
	if !ok {
		return nil, false
	}
	schemaID, ok := r.schema.SchemaIDForType(typeName)
	if !ok {
		return nil, false
	}
	return r.schema.SectionSchemaByID(schemaID)
}

func (r *Resolver) siteNode(parts []string) (*Node, bool) {
	var roots map[string]*Node
	switch parts[0] {
	case "site":
		roots = r.schema.Site
	case "features":
		roots = r.schema.Features
	default:
		return nil, false
	}
	if len(parts) < 2 {
		return nil, false
	}
	node, ok := roots[parts[1]]
	if !ok {
		return nil, false
	}
	return walk(node, parts[2:])
}

// permissiveItem stands in for the element schema of a schema-less array;
// such items are presumed editable.
var permissiveItem = &Node{Type: FieldTypeString, Editable: true}

func walk(node *Node, tokens []string) (*Node, bool) {
	for _, token := range tokens {
		if node == nil {
			return nil, false
		}
		if node.Type == FieldTypeArray {
			if _, err := strconv.Atoi(token); err == nil {
				if node.Items != nil {
					node = node.Items
				} else {
					node = permissiveItem
				}
				continue
			}
			return nil, false
		}
		if !node.Compound() {
			return nil, false
		}
		next, ok := node.Fields[token]
		if !ok {
			return nil, false
		}
		node = next
	}
	if node == nil {
		return nil, false
	}
	return node, true
}
