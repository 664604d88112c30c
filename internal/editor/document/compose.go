package document

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkazarins/pagecraft/internal/editor/section"
)

// Direction selects a neighbor for Move.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// AppendEnd is the afterIndex value that appends a new section at the end.
const AppendEnd = -1

// Composition operations. All of them are pure transformations of the
// in-memory document and mark it dirty; out-of-range indices are silent
// no-ops so the editor stays resilient to races between UI events and state
// updates.

// Insert builds a default section of the given type and splices it
// immediately after afterIndex (the new element lands at afterIndex+1).
// When afterIndex is AppendEnd or outside [0, Len), the section is appended.
// Returns the inserted section.
func (d *Document) Insert(t section.Type, afterIndex int) (section.Section, error) {
	s, err := section.New(t)
	if err != nil {
		return section.Section{}, err
	}
	d.insertAt(s, afterIndex)
	d.dirty = true
	return s, nil
}

func (d *Document) insertAt(s section.Section, afterIndex int) {
	if afterIndex < 0 || afterIndex >= len(d.sections) {
		d.sections = append(d.sections, s)
		return
	}
	at := afterIndex + 1
	d.sections = append(d.sections, section.Section{})
	copy(d.sections[at+1:], d.sections[at:])
	d.sections[at] = s
}

// Remove deletes the section at index i.
func (d *Document) Remove(i int) {
	if i < 0 || i >= len(d.sections) {
		return
	}
	d.sections = append(d.sections[:i], d.sections[i+1:]...)
	d.dirty = true
}

// Move swaps the section at index i with its immediate neighbor in the given
// direction. At the boundary (first section moving up, last moving down) the
// order is left untouched; the document is still marked dirty to match the
// behavior of the other operations.
func (d *Document) Move(i int, dir Direction) {
	if i < 0 || i >= len(d.sections) {
		return
	}
	j := i
	switch dir {
	case Up:
		j = i - 1
	case Down:
		j = i + 1
	default:
		return
	}
	d.dirty = true
	if j < 0 || j >= len(d.sections) {
		return
	}
	d.sections[i], d.sections[j] = d.sections[j], d.sections[i]
}

// SetVisible sets the visibility flag of the section at index i. Section
// types without a visibility toggle (page chrome) are left untouched, but
// the document is still marked dirty — legacy editors did exactly this and
// persisted payloads depend on it.
func (d *Document) SetVisible(i int, visible bool) {
	if i < 0 || i >= len(d.sections) {
		return
	}
	d.dirty = true
	if !section.HasVisibilityToggle(d.sections[i].Type) {
		return
	}
	d.sections[i].SetVisible(visible)
}

// Patch shallow-merges the partial field set into the section at index i.
// The id and type fields are preserved regardless of the patch contents.
// A nil value clears the field. Returns an error only when the merged
// payload does not decode back into a section.
func (d *Document) Patch(i int, partial map[string]any) error {
	if i < 0 || i >= len(d.sections) {
		return nil
	}
	merged, err := mergeSection(d.sections[i], partial)
	if err != nil {
		return err
	}
	d.sections[i] = merged
	d.dirty = true
	return nil
}

func mergeSection(s section.Section, partial map[string]any) (section.Section, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return section.Section{}, fmt.Errorf("encode section: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return section.Section{}, fmt.Errorf("decode section: %w", err)
	}

	for k, v := range partial {
		m[k] = v
	}
	// id and type are immutable after creation.
	m["id"] = s.ID
	m["type"] = string(s.Type)

	data, err = json.Marshal(m)
	if err != nil {
		return section.Section{}, fmt.Errorf("encode merged section: %w", err)
	}
	var out section.Section
	if err := json.Unmarshal(data, &out); err != nil {
		return section.Section{}, fmt.Errorf("decode merged section: %w", err)
	}
	return out, nil
}

// Duplicate clones the section at index i under a fresh id (cards get fresh
// ids as well) and inserts the clone immediately after the original.
func (d *Document) Duplicate(i int) {
	if i < 0 || i >= len(d.sections) {
		return
	}
	clone := d.sections[i].Clone()
	clone.ID = uuid.NewString()
	for c := range clone.Cards {
		clone.Cards[c].ID = uuid.NewString()
	}
	d.insertAt(clone, i)
	d.dirty = true
}

// Replace swaps in a full replacement for the section at index i, preserving
// the existing id and type. This is the funnel for renderer onChange
// callbacks.
func (d *Document) Replace(i int, s section.Section) {
	if i < 0 || i >= len(d.sections) {
		return
	}
	s.ID = d.sections[i].ID
	s.Type = d.sections[i].Type
	d.sections[i] = s
	d.dirty = true
}
