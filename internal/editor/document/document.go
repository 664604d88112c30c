// Package document holds the mutable editor state for one page: an ordered
// sequence of sections, the document-wide page properties, and a dirty flag
// tracking unsaved mutations.
package document

import (
	"github.com/vkazarins/pagecraft/internal/editor/section"
)

// Meta is page-level metadata rendered into the document head.
type Meta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Properties is the document-wide settings record. It applies to the whole
// page, independent of any single section.
type Properties struct {
	Background  string `json:"background,omitempty"`
	FontFamily  string `json:"fontFamily,omitempty"`
	MaxWidth    string `json:"maxWidth,omitempty"`
	RevealCount int    `json:"revealCount,omitempty"`
	Meta        Meta   `json:"meta,omitempty"`
}

// Document is the ordered section list plus page properties for one page.
// Order is the vertical render order and is persisted verbatim. Section ids
// are unique within a document.
//
// Document is not safe for concurrent mutation; the editor drives it from a
// single logical thread of UI events.
type Document struct {
	sections []section.Section
	props    Properties
	dirty    bool
}

// New builds an empty, clean document.
func New() *Document {
	return &Document{}
}

// FromParts builds a clean document from already-persisted state.
func FromParts(sections []section.Section, props Properties) *Document {
	return &Document{sections: sections, props: props}
}

// Sections returns the ordered section slice. The slice is shared; callers
// must treat it as read-only and go through the mutation operations.
func (d *Document) Sections() []section.Section {
	return d.sections
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.sections)
}

// Section returns a copy of the section at index i, and whether i was in range.
func (d *Document) Section(i int) (section.Section, bool) {
	if i < 0 || i >= len(d.sections) {
		return section.Section{}, false
	}
	return d.sections[i], true
}

// SectionIDs returns the ordered id sequence.
func (d *Document) SectionIDs() []string {
	ids := make([]string, len(d.sections))
	for i := range d.sections {
		ids[i] = d.sections[i].ID
	}
	return ids
}

// Properties returns the page-wide settings record.
func (d *Document) Properties() Properties {
	return d.props
}

// SetProperties replaces the page-wide settings and marks the document dirty.
func (d *Document) SetProperties(p Properties) {
	d.props = p
	d.dirty = true
}

// Dirty reports whether the document has unsaved mutations relative to the
// last successful load or save.
func (d *Document) Dirty() bool {
	return d.dirty
}

// MarkClean clears the dirty flag after a successful load or save.
func (d *Document) MarkClean() {
	d.dirty = false
}

// Clone returns a deep, clean copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{props: d.props}
	out.sections = make([]section.Section, len(d.sections))
	for i := range d.sections {
		out.sections[i] = d.sections[i].Clone()
	}
	return out
}
