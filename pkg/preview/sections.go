package preview

import (
	"github.com/goliatone/go-sitepreview/internal/merge"
	"github.com/goliatone/go-sitepreview/pkg/schema"
	"github.com/goliatone/go-sitepreview/pkg/site"
)

// TypeStatus describes one registry entry for the section picker.
type TypeStatus struct {
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	IsAdded     bool   `json:"isAdded"`
	CanAdd      bool   `json:"canAdd"`
}

// ListSections returns the working section collection with pending
// per-section edits deep-merged into each section's data.
func (s *Store) ListSections() []site.Section {
	out := make([]site.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		merged, ok := s.mergedSection(sec.ID)
		if !ok {
			merged = sec.Clone()
		}
		out = append(out, merged)
	}
	return out
}

// AddSection appends a new section of the given registry type. Unknown types
// are ignored, and singleton types refuse a second instance; both are silent
// no-ops per the constraint-violation contract.
func (s *Store) AddSection(typeName string) {
	s.addSection(typeName, -1)
}

// AddSectionAt inserts a new section at the given collection position and
// renumbers every section's order to (index+1)*10 so the total order matches
// the new array order while keeping coarse gaps for manual reordering.
func (s *Store) AddSectionAt(typeName string, position int) {
	if position < 0 {
		position = 0
	}
	s.addSection(typeName, position)
}

func (s *Store) addSection(typeName string, position int) {
	entry, ok := s.schema.SectionTypes[typeName]
	if !ok {
		return
	}
	if entry.Singleton && s.hasType(typeName) {
		return
	}

	schemaID, _ := s.schema.SchemaIDForType(typeName)
	data := s.sectionDefaults(entry, schemaID)

	// Singleton ids equal the schema id so schema lookups hit directly;
	// repeatable instances get a uniqueness suffix and resolve through the
	// type registry instead.
	id := schemaID
	if !entry.Singleton {
		id = schemaID + "-" + s.idSuffix()
	}

	sec := site.Section{ID: id, Type: typeName, Enabled: true, Data: data}

	if position >= 0 {
		if position > len(s.sections) {
			position = len(s.sections)
		}
		next := make([]site.Section, 0, len(s.sections)+1)
		next = append(next, s.sections[:position]...)
		next = append(next, sec)
		next = append(next, s.sections[position:]...)
		s.sections = next
		for i := range s.sections {
			s.sections[i].Order = (i + 1) * 10
		}
	} else {
		sec.Order = (len(s.sections) + 1) * 10
		s.sections = append(s.sections, sec)
	}

	s.writeSections()
}

// RemoveSection drops the section with the given id. Remaining order values
// are left untouched; only positioned inserts renumber. Unknown ids are a
// silent no-op.
func (s *Store) RemoveSection(id string) {
	idx := s.sectionIndex(id)
	if idx < 0 {
		return
	}
	s.sections = append(s.sections[:idx:idx], s.sections[idx+1:]...)
	s.writeSections()
}

// AvailableSectionTypes reports every registry entry with its picker status.
// When the store carries a page scope whose schema declares an allow-list,
// entries outside it are omitted entirely.
func (s *Store) AvailableSectionTypes() map[string]TypeStatus {
	var allowed map[string]bool
	if s.pageScope != "" {
		if page, ok := s.schema.Pages[s.pageScope]; ok && len(page.AllowedSectionTypes) > 0 {
			allowed = make(map[string]bool, len(page.AllowedSectionTypes))
			for _, typeName := range page.AllowedSectionTypes {
				allowed[typeName] = true
			}
		}
	}

	out := make(map[string]TypeStatus, len(s.schema.SectionTypes))
	for typeName, entry := range s.schema.SectionTypes {
		if allowed != nil && !allowed[typeName] {
			continue
		}
		isAdded := s.hasType(typeName)
		canAdd := true
		if entry.Singleton {
			canAdd = !isAdded
		}
		out[typeName] = TypeStatus{
			DisplayName: entry.DisplayName,
			Description: entry.Description,
			IsAdded:     isAdded,
			CanAdd:      canAdd,
		}
	}
	return out
}

func (s *Store) sectionDefaults(entry schema.SectionType, schemaID string) map[string]any {
	if len(entry.DefaultData) > 0 {
		return merge.Clone(entry.DefaultData).(map[string]any)
	}
	if node, ok := s.schema.SectionSchemaByID(schemaID); ok {
		return schema.DeriveSectionData(node)
	}
	return map[string]any{}
}

func (s *Store) hasType(typeName string) bool {
	for _, sec := range s.sections {
		if sec.Type == typeName {
			return true
		}
	}
	return false
}

// writeSections records the whole working collection as a single patch entry
// so downstream reads and the durable cache observe collection changes.
// Pending per-section edits are folded into the working collection first:
// the snapshot write supersedes the deeper patch keys it absorbs, so their
// values must survive in the collection itself.
func (s *Store) writeSections() {
	s.sections = s.ListSections()
	s.Write("sections", s.sectionsValue())
}

func (s *Store) sectionsValue() []any {
	sections := s.ListSections()
	out := make([]any, len(sections))
	for i, sec := range sections {
		out[i] = sec.AsMap()
	}
	return out
}
