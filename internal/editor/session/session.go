// Package session implements the save/edit state machine for one editor
// session: it gates mutations on the editing and preview states, tracks the
// pending media target, and coalesces concurrent save triggers into a single
// in-flight request.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vkazarins/pagecraft/internal/editor/document"
	"github.com/vkazarins/pagecraft/internal/editor/gateway"
	"github.com/vkazarins/pagecraft/internal/editor/mediaroute"
	"github.com/vkazarins/pagecraft/internal/editor/section"
	"github.com/vkazarins/pagecraft/internal/logging"
)

// State is the coarse editor state. Saving is reported while a save is in
// flight, but does not block further mutations: they land in the live
// document and ride along with whichever save starts next (latest wins).
type State string

const (
	StateViewing State = "viewing"
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

var (
	// ErrNotEditing is returned when a mutation or save is attempted outside
	// the editing state (or while previewing).
	ErrNotEditing = errors.New("session is not in editing state")

	// ErrNotLoaded is returned when the session is used before hydration.
	ErrNotLoaded = errors.New("session has no loaded page state")
)

// DefaultSaveTimeout bounds one save round-trip to the store.
const DefaultSaveTimeout = 30 * time.Second

// pendingTarget is the out-of-band state between "user clicked a media slot"
// and "picker returned". It is consumed exactly once.
type pendingTarget struct {
	index  int
	target mediaroute.Target
}

// Session owns the editing state for one page. All exported methods are safe
// for concurrent use; mutations themselves are expected to arrive from a
// single UI thread, but saves and picker results are asynchronous.
type Session struct {
	slug string
	gw   *gateway.Gateway
	log  logging.Logger

	saveTimeout time.Duration

	mu       sync.Mutex
	state    *gateway.PageState
	saved    *document.Document // snapshot for discard-on-leave
	editing  bool
	preview  bool
	saving   bool
	lastErr  error
	pending  *pendingTarget
	actor    string
	sfGroup  singleflight.Group
}

// Option configures a Session.
type Option func(*Session)

// WithSaveTimeout overrides DefaultSaveTimeout.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Session) { s.saveTimeout = d }
}

// WithLogger replaces the default slog-backed logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New creates a session for one page slug. The actor identity is fixed for
// the lifetime of the session; it stamps every save.
func New(slug string, gw *gateway.Gateway, actor string, opts ...Option) *Session {
	s := &Session{
		slug:        slug,
		gw:          gw,
		actor:       actor,
		log:         logging.NewSlogLogger(slog.Default()),
		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the session from the store, falling back to an empty
// document when the store is unreachable. Always leaves the session in the
// viewing state.
func (s *Session) Load(ctx context.Context) {
	st := s.gw.LoadOrDefault(ctx, s.slug, document.New())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.saved = st.Doc.Clone()
	s.editing = false
	s.preview = false
	s.pending = nil
	s.lastErr = nil
}

// State reports the current coarse state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return StateSaving
	}
	if s.editing {
		return StateEditing
	}
	return StateViewing
}

// Document returns the live page state; nil before Load.
func (s *Session) Document() *gateway.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsDirty reports whether there are unsaved mutations.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil && s.state.Doc.Dirty()
}

// LastError returns the error surfaced by the most recent failed save.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// BeginEdit moves the session from viewing to editing.
func (s *Session) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ErrNotLoaded
	}
	s.editing = true
	return nil
}

// SetPreview toggles preview mode. Preview is orthogonal to editing: it
// suppresses mutations without touching dirty or saving state.
func (s *Session) SetPreview(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = on
}

// Preview reports whether preview mode is on.
func (s *Session) Preview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// mutable guards a mutation; the caller must hold mu.
func (s *Session) mutable() error {
	if s.state == nil {
		return ErrNotLoaded
	}
	if !s.editing || s.preview {
		return ErrNotEditing
	}
	return nil
}

// Insert adds a default section of the given type after afterIndex.
func (s *Session) Insert(t section.Type, afterIndex int) (section.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return section.Section{}, err
	}
	return s.state.Doc.Insert(t, afterIndex)
}

// Remove deletes the section at index i.
func (s *Session) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.state.Doc.Remove(i)
	return nil
}

// Move swaps the section at index i with its neighbor.
func (s *Session) Move(i int, dir document.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.state.Doc.Move(i, dir)
	return nil
}

// SetVisible toggles visibility of the section at index i.
func (s *Session) SetVisible(i int, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.state.Doc.SetVisible(i, visible)
	return nil
}

// Patch shallow-merges the partial field set into the section at index i.
func (s *Session) Patch(i int, partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	return s.state.Doc.Patch(i, partial)
}

// Duplicate clones the section at index i.
func (s *Session) Duplicate(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.state.Doc.Duplicate(i)
	return nil
}

// Replace funnels a renderer onChange callback into the document.
func (s *Session) Replace(i int, sec section.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.state.Doc.Replace(i, sec)
	return nil
}

// SetProperties replaces the page-wide settings record.
func (s *Session) SetProperties(p document.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.state.Doc.SetProperties(p)
	return nil
}

// RequestMedia records the pending media target before the picker opens.
// A new request overwrites any previous one: the picker is modal, so only
// the latest request can still resolve.
func (s *Session) RequestMedia(index int, slot section.Slot, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.pending = &pendingTarget{
		index:  index,
		target: mediaroute.Target{CardID: cardID, Slot: slot},
	}
	return nil
}

// CompleteMedia consumes the pending target and routes the picked asset into
// the targeted section. The pending target is cleared unconditionally, even
// when routing fails, so a later unrelated selection can never be misrouted.
// Returns whether the asset was routed.
func (s *Session) CompleteMedia(url string, kind section.MediaKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.pending
	s.pending = nil
	if pending == nil || s.state == nil {
		return false
	}

	sec, ok := s.state.Doc.Section(pending.index)
	if !ok {
		return false
	}
	routed, ok := mediaroute.Apply(sec, pending.target, url, kind)
	if !ok {
		return false
	}
	s.state.Doc.Replace(pending.index, routed)
	return true
}

// CancelMedia clears the pending target without routing anything.
func (s *Session) CancelMedia() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// HasPendingMedia reports whether a media selection is awaited.
func (s *Session) HasPendingMedia() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Save persists the current document. Concurrent triggers coalesce into one
// in-flight save via singleflight; the state is snapshotted under the lock
// before the save starts, so mutations arriving later hit only the live
// document and ride with the next save. On success the document is marked
// clean and the discard snapshot advances; on failure the document stays
// dirty and the error is retained for the UI.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if !s.editing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	snap := s.state.Snapshot()
	s.saving = true
	s.mu.Unlock()

	// Coalesced callers adopt the snapshot that actually saved, not their own.
	v, err, _ := s.sfGroup.Do(s.slug, func() (any, error) {
		saveCtx, cancel := context.WithTimeout(ctx, s.saveTimeout)
		defer cancel()
		return snap, s.gw.Save(saveCtx, s.slug, snap, s.actor)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	saved := v.(*gateway.PageState)
	s.state.SyncVersions(saved)
	s.state.Doc.MarkClean()
	s.saved = saved.Doc
	return nil
}

// Leave attempts to exit editing. With unsaved changes, confirm is consulted
// first; declining keeps the session editing. Accepting discards the
// in-memory changes by restoring the last saved snapshot and returns the
// session to viewing with a clean document. Reports whether the session left
// editing.
func (s *Session) Leave(confirm func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || !s.editing {
		return true
	}
	if s.state.Doc.Dirty() {
		if confirm == nil || !confirm() {
			return false
		}
		s.state.Doc = s.saved.Clone()
	}
	s.editing = false
	s.preview = false
	s.pending = nil
	return true
}
