// Package schema holds the static description of every editable part of a
// site: field schemas, per-section schemas, the section type registry, and
// per-page allow-lists. It also derives placeholder values for new sections
// and array items and resolves whether a given data path may be edited.
//
// The schema tree is the single source of truth for the shape of section
// data: section payloads are dynamically shaped, tagged by the section type,
// and every path-walking decision is made against this one description.
package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType enumerates the leaf value kinds a field schema can describe.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeImage   FieldType = "image"
	FieldTypeArray   FieldType = "array"
)

// Node is one vertex of a schema tree. A node is either a field descriptor
// (Type is set) or a compound mapping of named child nodes (Type empty,
// Fields populated), mirroring how section schemas nest sub-objects such as
// a call-to-action label/href pair.
//
// Array fields carry their element shape in Items: a primitive field node, a
// compound node for object items, or nil for schema-less arrays whose items
// are presumed editable.
type Node struct {
	Type        FieldType
	Editable    bool
	Description string
	MaxLength   int
	MaxItems    int
	Items       *Node
	Fields      map[string]*Node
}

// Compound reports whether the node is a mapping of child nodes rather than
// a field descriptor.
func (n *Node) Compound() bool {
	return n != nil && n.Type == ""
}

// Field returns the named child of a compound node.
func (n *Node) Field(name string) (*Node, bool) {
	if n == nil || n.Fields == nil {
		return nil, false
	}
	child, ok := n.Fields[name]
	return child, ok
}

type fieldNode struct {
	Type        FieldType `json:"type" yaml:"type"`
	Editable    bool      `json:"editable" yaml:"editable"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	MaxLength   int       `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	MaxItems    int       `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Items       *Node     `json:"itemSchema,omitempty" yaml:"itemSchema,omitempty"`
}

// UnmarshalJSON decodes either shape of a schema node: objects carrying a
// "type" key become field descriptors, anything else becomes a compound
// mapping of child nodes.
func (n *Node) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("schema: node must be an object: %w", err)
	}
	if _, ok := keys["type"]; ok {
		var field fieldNode
		if err := json.Unmarshal(data, &field); err != nil {
			return fmt.Errorf("schema: decode field node: %w", err)
		}
		*n = fieldFromWire(field)
		return nil
	}
	fields := make(map[string]*Node, len(keys))
	for key, raw := range keys {
		child := &Node{}
		if err := json.Unmarshal(raw, child); err != nil {
			return fmt.Errorf("schema: decode compound field %q: %w", key, err)
		}
		fields[key] = child
	}
	*n = Node{Fields: fields}
	return nil
}

// MarshalJSON writes the wire shape back out, so loaded documents round-trip
// and the scaffolder can emit starter schemas.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	if n.Compound() {
		return json.Marshal(n.Fields)
	}
	return json.Marshal(fieldNode{
		Type:        n.Type,
		Editable:    n.Editable,
		Description: n.Description,
		MaxLength:   n.MaxLength,
		MaxItems:    n.MaxItems,
		Items:       n.Items,
	})
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("schema: node must be a mapping, got %v", value.Kind)
	}
	isField := false
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "type" {
			isField = true
			break
		}
	}
	if isField {
		var field fieldNode
		if err := value.Decode(&field); err != nil {
			return fmt.Errorf("schema: decode field node: %w", err)
		}
		*n = fieldFromWire(field)
		return nil
	}
	fields := make(map[string]*Node, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		child := &Node{}
		if err := value.Content[i+1].Decode(child); err != nil {
			return fmt.Errorf("schema: decode compound field %q: %w", value.Content[i].Value, err)
		}
		fields[value.Content[i].Value] = child
	}
	*n = Node{Fields: fields}
	return nil
}

func fieldFromWire(field fieldNode) Node {
	return Node{
		Type:        field.Type,
		Editable:    field.Editable,
		Description: field.Description,
		MaxLength:   field.MaxLength,
		MaxItems:    field.MaxItems,
		Items:       field.Items,
	}
}

// SectionType is one registry entry describing an addable section kind.
type SectionType struct {
	DisplayName string         `json:"displayName" yaml:"displayName"`
	Description string         `json:"description" yaml:"description"`
	Singleton   bool           `json:"singleton" yaml:"singleton"`
	SchemaID    string         `json:"schemaId" yaml:"schemaId"`
	DefaultData map[string]any `json:"defaultData,omitempty" yaml:"defaultData,omitempty"`
}

// PageSchema scopes the section picker and supplies the section schemas used
// by secondary page templates, such as a per-service detail page.
type PageSchema struct {
	AllowedSectionTypes []string         `json:"allowedSectionTypes,omitempty" yaml:"allowedSectionTypes,omitempty"`
	Sections            map[string]*Node `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Schema is the full static model: site-level fields, feature flags, section
// schemas keyed by schema id (which doubles as the instance id for singleton
// types), the section type registry, and optional per-page schemas. It is
// read-only once loaded and safe to share by reference.
type Schema struct {
	Site         map[string]*Node       `json:"site" yaml:"site"`
	Features     map[string]*Node       `json:"features" yaml:"features"`
	Sections     map[string]*Node       `json:"sections" yaml:"sections"`
	SectionTypes map[string]SectionType `json:"sectionTypes" yaml:"sectionTypes"`
	Pages        map[string]PageSchema  `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// SectionSchemaByID returns the section schema registered directly under id.
func (s *Schema) SectionSchemaByID(id string) (*Node, bool) {
	if s == nil {
		return nil, false
	}
	node, ok := s.Sections[id]
	return node, ok
}

// SchemaIDForType resolves a registry entry's schema id, falling back to the
// type name itself when the entry does not pin one.
func (s *Schema) SchemaIDForType(typeName string) (string, bool) {
	if s == nil {
		return "", false
	}
	entry, ok := s.SectionTypes[typeName]
	if !ok {
		return "", false
	}
	if entry.SchemaID != "" {
		return entry.SchemaID, true
	}
	return typeName, true
}
