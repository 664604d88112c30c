// Package store defines the editor's contract with the external named
// component store. One record holds one opaque component payload under the
// unique key (page slug, component type); records are upserted in place and
// soft-deactivated, never physically deleted.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known component types. Pages may persist further auxiliary components
// (sliders, section-order overrides) under free-form names.
const (
	ComponentSections       = "sections"
	ComponentPageProperties = "page_properties"
	ComponentHero           = "hero"
	ComponentSlider         = "slider"
	ComponentHeroSlider     = "hero_slider"
	ComponentSectionOrder   = "section_order"
)

// Record is one persisted component. Version implements optimistic
// concurrency: an upsert carries the version the writer last observed and
// fails with common.ErrVersionConflict when the stored row has moved on.
// Version 0 means the record has never been stored.
type Record struct {
	PageSlug      string
	ComponentType string
	Content       json.RawMessage
	IsActive      bool
	Version       int64
	UpdatedAt     time.Time
	UpdatedBy     string
}

// Store is the component store as seen from the editor.
type Store interface {
	// SelectActive returns all active records for the page slug.
	SelectActive(ctx context.Context, pageSlug string) ([]Record, error)

	// Upsert writes the record under its (slug, type) key. On success the
	// record's Version is advanced to the stored value.
	Upsert(ctx context.Context, rec *Record) error

	// Deactivate soft-deletes one component without touching its payload.
	Deactivate(ctx context.Context, pageSlug, componentType string, updatedBy string) error
}
