package schema

import "strings"

// DeriveDefault produces a placeholder value for a field schema. String
// placeholders are chosen by keyword in the field name so a freshly added
// section reads like content instead of empty boxes; the keyword table
// matches the section payloads this model ships with.
func DeriveDefault(n *Node, fieldKey string) any {
	if n == nil {
		return ""
	}
	if n.Compound() {
		out := make(map[string]any, len(n.Fields))
		for name, child := range n.Fields {
			out[name] = DeriveDefault(child, name)
		}
		return out
	}
	switch n.Type {
	case FieldTypeString:
		return placeholderString(fieldKey)
	case FieldTypeNumber:
		return float64(0)
	case FieldTypeBoolean:
		return false
	case FieldTypeImage:
		return ""
	case FieldTypeArray:
		if n.Items == nil {
			return []any{}
		}
		return []any{DeriveItem(n)}
	default:
		return ""
	}
}

// DeriveItem produces a placeholder element for an array field. Compound
// item schemas derive each property; primitive item schemas derive directly;
// schema-less arrays get an empty string item.
func DeriveItem(array *Node) any {
	if array == nil || array.Items == nil {
		return ""
	}
	return DeriveDefault(array.Items, "")
}

// DeriveSectionData seeds the data payload for a newly added section whose
// registry entry carries no explicit defaultData.
func DeriveSectionData(section *Node) map[string]any {
	if !section.Compound() {
		return map[string]any{}
	}
	out := make(map[string]any, len(section.Fields))
	for name, child := range section.Fields {
		out[name] = DeriveDefault(child, name)
	}
	return out
}

func placeholderString(fieldKey string) string {
	key := strings.ToLower(fieldKey)
	switch {
	case strings.Contains(key, "name"):
		return "Placeholder Name"
	case strings.Contains(key, "subtitle"):
		return "Placeholder Subtitle"
	case strings.Contains(key, "title"):
		return "Placeholder Title"
	case strings.Contains(key, "description"), strings.Contains(key, "excerpt"):
		return "Placeholder description..."
	case strings.Contains(key, "price"):
		return "$$"
	case strings.Contains(key, "email"):
		return "email@example.com"
	case strings.Contains(key, "phone"):
		return "(555) 000-0000"
	case strings.Contains(key, "address"):
		return "123 Main St"
	case strings.Contains(key, "date"):
		return "2024-01-01"
	case strings.Contains(key, "company"):
		return "Company"
	case strings.Contains(key, "slug"):
		return "placeholder-slug"
	case strings.Contains(key, "message"):
		return "Placeholder message"
	case strings.Contains(key, "label"):
		return "Click me"
	case key == "href":
		return "#"
	default:
		return ""
	}
}
