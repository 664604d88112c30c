// Package gateway translates between the in-memory page document and the
// named component store: it aggregates active component records into a page
// state on load, and fans a page state out into independent per-component
// upserts on save.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vkazarins/pagecraft/internal/common"
	"github.com/vkazarins/pagecraft/internal/editor/document"
	"github.com/vkazarins/pagecraft/internal/editor/section"
	"github.com/vkazarins/pagecraft/internal/editor/store"
	"github.com/vkazarins/pagecraft/internal/logging"
)

// Gateway maps page documents onto component records for one store.
type Gateway struct {
	store       store.Store
	log         logging.Logger
	dropFooters bool
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithGlobalFooter tells the gateway the embedding page renders its own
// footer; persisted footer sections are filtered out at load time.
func WithGlobalFooter() Option {
	return func(g *Gateway) { g.dropFooters = true }
}

// WithLogger replaces the default slog-backed logger.
func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// New builds a Gateway over the given component store.
func New(st store.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store: st,
		log:   logging.NewSlogLogger(slog.Default()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PageState is the hydrated editing state for one page: the document, any
// auxiliary components the page persists besides sections and properties,
// and the per-component versions observed at load (used for optimistic
// concurrency on the next save).
type PageState struct {
	Doc *document.Document
	Aux map[string]json.RawMessage

	versions map[string]int64
}

// Version returns the last observed store version for a component; 0 for a
// component that has never been stored.
func (st *PageState) Version(componentType string) int64 {
	return st.versions[componentType]
}

// NewPageState builds a fresh state around the given document, as if every
// component were unstored. Used when starting a page from scratch.
func NewPageState(doc *document.Document) *PageState {
	return &PageState{
		Doc:      doc,
		Aux:      map[string]json.RawMessage{},
		versions: map[string]int64{},
	}
}

// Snapshot returns a deep copy of the state. Callers that keep mutating the
// live document while a save is in flight must hand Save a snapshot, never
// the live state.
func (st *PageState) Snapshot() *PageState {
	out := &PageState{
		Doc:      st.Doc.Clone(),
		Aux:      make(map[string]json.RawMessage, len(st.Aux)),
		versions: make(map[string]int64, len(st.versions)),
	}
	for k, v := range st.Aux {
		out.Aux[k] = v
	}
	for k, v := range st.versions {
		out.versions[k] = v
	}
	return out
}

// SyncVersions copies the component versions observed by other into st.
// After a snapshot's save succeeds, the live state adopts the versions the
// store advanced on the snapshot.
func (st *PageState) SyncVersions(other *PageState) {
	for k, v := range other.versions {
		st.versions[k] = v
	}
}

// Load fetches all active component records for the slug, partitions them by
// component type and decodes the typed ones. Legacy payloads are normalized
// (see normalizeSections); the resulting document is clean.
func (g *Gateway) Load(ctx context.Context, pageSlug string) (*PageState, error) {
	records, err := g.store.SelectActive(ctx, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("select components for %q: %w", pageSlug, err)
	}

	st := NewPageState(document.New())
	var (
		sections []section.Section
		props    document.Properties
	)

	for _, rec := range records {
		st.versions[rec.ComponentType] = rec.Version
		switch rec.ComponentType {
		case store.ComponentSections:
			if err := json.Unmarshal(rec.Content, &sections); err != nil {
				return nil, fmt.Errorf("decode sections for %q: %w", pageSlug, err)
			}
		case store.ComponentPageProperties:
			if err := json.Unmarshal(rec.Content, &props); err != nil {
				return nil, fmt.Errorf("decode page properties for %q: %w", pageSlug, err)
			}
		default:
			st.Aux[rec.ComponentType] = rec.Content
		}
	}

	sections = normalizeSections(sections, g.dropFooters)
	st.Doc = document.FromParts(sections, props)

	g.log.Debug(ctx, "page loaded", "slug", pageSlug, "sections", len(sections), "aux", len(st.Aux))
	return st, nil
}

// LoadOrDefault loads the page state, falling back to a state around the
// given default document when the store is unreachable. The editor must
// stay usable even when hydration fails.
func (g *Gateway) LoadOrDefault(ctx context.Context, pageSlug string, def *document.Document) *PageState {
	st, err := g.Load(ctx, pageSlug)
	if err != nil {
		g.log.Warn(ctx, "page load failed, using default document", "slug", pageSlug, "error", err)
		return NewPageState(def)
	}
	return st
}

// Save upserts one record per logical component: sections, page properties
// and every auxiliary component in the state. Upserts are independent — a
// failure on one component never prevents attempting the rest — and the
// overall save succeeds only if every upsert succeeded; otherwise a
// *SaveError names each failed component. The document is serialized at the
// start of the call, so mutations racing an in-flight save land in a later
// one.
//
// An empty actor aborts the save before any upsert with ErrMissingActor:
// every write must be attributable.
func (g *Gateway) Save(ctx context.Context, pageSlug string, st *PageState, actor string) error {
	if actor == "" {
		return fmt.Errorf("save %q: %w", pageSlug, common.ErrMissingActor)
	}

	sections := st.Doc.Sections()
	if sections == nil {
		sections = []section.Section{}
	}
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("encode sections for %q: %w", pageSlug, err)
	}
	propsJSON, err := json.Marshal(st.Doc.Properties())
	if err != nil {
		return fmt.Errorf("encode page properties for %q: %w", pageSlug, err)
	}

	type component struct {
		name    string
		content json.RawMessage
	}
	components := []component{
		{store.ComponentSections, sectionsJSON},
		{store.ComponentPageProperties, propsJSON},
	}
	auxNames := make([]string, 0, len(st.Aux))
	for name := range st.Aux {
		auxNames = append(auxNames, name)
	}
	sort.Strings(auxNames)
	for _, name := range auxNames {
		components = append(components, component{name, st.Aux[name]})
	}

	now := time.Now().UTC()
	var failed []ComponentError
	for _, c := range components {
		rec := store.Record{
			PageSlug:      pageSlug,
			ComponentType: c.name,
			Content:       c.content,
			IsActive:      true,
			Version:       st.versions[c.name],
			UpdatedAt:     now,
			UpdatedBy:     actor,
		}
		if err := g.store.Upsert(ctx, &rec); err != nil {
			g.log.Error(ctx, "component upsert failed", "slug", pageSlug, "component", c.name, "error", err)
			failed = append(failed, ComponentError{Component: c.name, Err: err})
			continue
		}
		st.versions[c.name] = rec.Version
	}

	if len(failed) > 0 {
		return &SaveError{Failed: failed}
	}
	g.log.Info(ctx, "page saved", "slug", pageSlug, "components", len(components), "actor", actor)
	return nil
}
