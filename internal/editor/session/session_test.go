package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkazarins/pagecraft/internal/common"
	"github.com/vkazarins/pagecraft/internal/editor/document"
	"github.com/vkazarins/pagecraft/internal/editor/gateway"
	"github.com/vkazarins/pagecraft/internal/editor/section"
	"github.com/vkazarins/pagecraft/internal/editor/store"
)

// memStore is a minimal in-memory component store for session tests.
type memStore struct {
	mu        sync.Mutex
	records   map[string]store.Record
	upserts   atomic.Int32
	upsertErr error
	// when set, the first Upsert signals started and blocks until released.
	started  chan struct{}
	released chan struct{}
	gateOnce sync.Once
}

func newMemStore() *memStore {
	return &memStore{records: map[string]store.Record{}}
}

func (m *memStore) SelectActive(_ context.Context, _ string) ([]store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Record, 0, len(m.records))
	for _, r := range m.records {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, rec *store.Record) error {
	if m.started != nil {
		m.gateOnce.Do(func() {
			close(m.started)
			<-m.released
		})
	}
	m.upserts.Add(1)
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Version++
	m.records[rec.ComponentType] = *rec
	return nil
}

func (m *memStore) Deactivate(_ context.Context, _, componentType, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[componentType]
	if !ok {
		return common.ErrNotFound
	}
	rec.IsActive = false
	m.records[componentType] = rec
	return nil
}

func newTestSession(t *testing.T, ms *memStore, opts ...Option) *Session {
	t.Helper()
	s := New("home", gateway.New(ms), "alice", opts...)
	s.Load(context.Background())
	return s
}

func TestMutations_RequireEditing(t *testing.T) {
	s := newTestSession(t, newMemStore())

	_, err := s.Insert(section.TypeHero, document.AppendEnd)
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, s.Remove(0), ErrNotEditing)
	assert.ErrorIs(t, s.Move(0, document.Up), ErrNotEditing)
	assert.ErrorIs(t, s.Patch(0, map[string]any{"title": "x"}), ErrNotEditing)
	assert.Equal(t, StateViewing, s.State())
}

func TestMutations_SuppressedInPreview(t *testing.T) {
	s := newTestSession(t, newMemStore())
	require.NoError(t, s.BeginEdit())
	s.SetPreview(true)

	_, err := s.Insert(section.TypeHero, document.AppendEnd)
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.False(t, s.IsDirty(), "preview must not change dirty state")

	s.SetPreview(false)
	_, err = s.Insert(section.TypeHero, document.AppendEnd)
	assert.NoError(t, err)
}

func TestEditSaveCycle(t *testing.T) {
	ms := newMemStore()
	s := newTestSession(t, ms)
	ctx := context.Background()

	require.NoError(t, s.BeginEdit())
	assert.Equal(t, StateEditing, s.State())

	_, err := s.Insert(section.TypeHero, document.AppendEnd)
	require.NoError(t, err)
	assert.True(t, s.IsDirty())

	require.NoError(t, s.Save(ctx))
	assert.False(t, s.IsDirty())
	assert.NoError(t, s.LastError())
	assert.Equal(t, StateEditing, s.State(), "saving returns to editing, not viewing")
}

func TestSave_FailureKeepsDirtyAndSurfacesError(t *testing.T) {
	ms := newMemStore()
	ms.upsertErr = fmt.Errorf("store down")
	s := newTestSession(t, ms)
	ctx := context.Background()

	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeHero, document.AppendEnd)
	require.NoError(t, err)

	err = s.Save(ctx)
	require.Error(t, err)

	var saveErr *gateway.SaveError
	assert.True(t, errors.As(err, &saveErr))
	assert.True(t, s.IsDirty(), "dirty must survive a failed save")
	assert.Error(t, s.LastError())

	// The in-memory document is never discarded on save errors.
	assert.Equal(t, 1, s.Document().Doc.Len())
}

func TestSave_RequiresEditing(t *testing.T) {
	s := newTestSession(t, newMemStore())
	assert.ErrorIs(t, s.Save(context.Background()), ErrNotEditing)
}

func TestSave_ConcurrentTriggersCoalesce(t *testing.T) {
	ms := newMemStore()
	ms.started = make(chan struct{})
	ms.released = make(chan struct{})
	s := newTestSession(t, ms)
	ctx := context.Background()

	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeHero, document.AppendEnd)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = s.Save(ctx)
	}()
	<-ms.started // first save is now inside the store

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = s.Save(ctx)
	}()
	// Give the second trigger a moment to join the in-flight save.
	time.Sleep(20 * time.Millisecond)
	close(ms.released)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, int32(2), ms.upserts.Load(),
		"one coalesced save writes sections and page_properties exactly once")
}

func TestSave_SerializesStateAtSaveStart(t *testing.T) {
	ms := newMemStore()
	ms.started = make(chan struct{})
	ms.released = make(chan struct{})
	s := newTestSession(t, ms)
	ctx := context.Background()

	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeText, document.AppendEnd)
	require.NoError(t, err)
	require.NoError(t, s.Patch(0, map[string]any{"title": "before"}))

	done := make(chan error, 1)
	go func() { done <- s.Save(ctx) }()
	<-ms.started

	// Mutations are not blocked while the save is in flight; they hit the
	// live document only and must not leak into the snapshotted payload.
	require.NoError(t, s.Patch(0, map[string]any{"title": "after"}))

	close(ms.released)
	require.NoError(t, <-done)

	ms.mu.Lock()
	content := ms.records[store.ComponentSections].Content
	ms.mu.Unlock()
	var persisted []section.Section
	require.NoError(t, json.Unmarshal(content, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "before", persisted[0].Title)

	sec, ok := s.Document().Doc.Section(0)
	require.True(t, ok)
	assert.Equal(t, "after", sec.Title, "the live document keeps the later mutation")
}

func TestSave_RacingMutationsNeverCorruptPayload(t *testing.T) {
	ms := newMemStore()
	s := newTestSession(t, ms)
	ctx := context.Background()

	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeText, document.AppendEnd)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = s.Save(ctx)
		}
	}()
	for i := 0; i < 50; i++ {
		_ = s.Patch(0, map[string]any{"title": fmt.Sprintf("rev-%d", i)})
		_, _ = s.Insert(section.TypeHero, document.AppendEnd)
		_ = s.Remove(1)
	}
	<-done

	// Whatever interleaving happened, the stored payload must be a complete
	// serialization of some past document state.
	ms.mu.Lock()
	content := ms.records[store.ComponentSections].Content
	ms.mu.Unlock()
	var persisted []section.Section
	require.NoError(t, json.Unmarshal(content, &persisted))
	require.NotEmpty(t, persisted)
	assert.Equal(t, section.TypeText, persisted[0].Type)
}

func TestLeave_DirtyRequiresConfirmation(t *testing.T) {
	s := newTestSession(t, newMemStore())
	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeHero, document.AppendEnd)
	require.NoError(t, err)

	left := s.Leave(func() bool { return false })
	assert.False(t, left, "declining the confirm keeps the session editing")
	assert.Equal(t, StateEditing, s.State())
	assert.True(t, s.IsDirty())

	left = s.Leave(func() bool { return true })
	assert.True(t, left)
	assert.Equal(t, StateViewing, s.State())
	assert.False(t, s.IsDirty())
	assert.Equal(t, 0, s.Document().Doc.Len(), "discard restores the last saved snapshot")
}

func TestLeave_CleanLeavesWithoutConfirm(t *testing.T) {
	s := newTestSession(t, newMemStore())
	require.NoError(t, s.BeginEdit())

	left := s.Leave(func() bool {
		t.Fatal("confirm must not be consulted for a clean document")
		return false
	})
	assert.True(t, left)
}

func TestMediaFlow_RoutesIntoPendingTarget(t *testing.T) {
	s := newTestSession(t, newMemStore())
	require.NoError(t, s.BeginEdit())

	_, err := s.Insert(section.TypeMediaTextLeft, document.AppendEnd)
	require.NoError(t, err)

	require.NoError(t, s.RequestMedia(0, section.SlotMedia, ""))
	assert.True(t, s.HasPendingMedia())

	routed := s.CompleteMedia("https://x/y.png", section.MediaImage)
	assert.True(t, routed)
	assert.False(t, s.HasPendingMedia(), "the target is consumed exactly once")

	sec, ok := s.Document().Doc.Section(0)
	require.True(t, ok)
	assert.Equal(t, "https://x/y.png", sec.MediaURL)
	assert.Equal(t, section.MediaImage, sec.MediaType)
	assert.Equal(t, section.PositionLeft, sec.MediaPosition)
}

func TestMediaFlow_CancelClearsTarget(t *testing.T) {
	s := newTestSession(t, newMemStore())
	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeText, document.AppendEnd)
	require.NoError(t, err)

	require.NoError(t, s.RequestMedia(0, section.SlotMedia, ""))
	s.CancelMedia()
	assert.False(t, s.HasPendingMedia())

	assert.False(t, s.CompleteMedia("https://x/y.png", section.MediaImage),
		"a selection after cancel must be dropped")
	sec, _ := s.Document().Doc.Section(0)
	assert.Empty(t, sec.MediaURL)
}

func TestMediaFlow_SectionRemovedWhilePickerOpen(t *testing.T) {
	s := newTestSession(t, newMemStore())
	require.NoError(t, s.BeginEdit())
	_, err := s.Insert(section.TypeText, document.AppendEnd)
	require.NoError(t, err)

	require.NoError(t, s.RequestMedia(0, section.SlotMedia, ""))
	require.NoError(t, s.Remove(0))

	assert.False(t, s.CompleteMedia("https://x/y.png", section.MediaImage))
	assert.False(t, s.HasPendingMedia(), "the target is cleared even when routing fails")
}

func TestRequestMedia_RequiresEditing(t *testing.T) {
	s := newTestSession(t, newMemStore())
	assert.ErrorIs(t, s.RequestMedia(0, section.SlotMedia, ""), ErrNotEditing)
}
