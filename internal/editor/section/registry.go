package section

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vkazarins/pagecraft/internal/common"
)

// Slot names a routable media destination inside a section.
type Slot string

const (
	SlotMedia               Slot = "media"
	SlotThumbnail           Slot = "thumbnail"
	SlotProfileImage        Slot = "profile-image"
	SlotBackgroundLeftMedia Slot = "background-left-media"
)

// definition describes one known section type: how to build its default
// value and which media slots it exposes. Behavior lives in this table, not
// in per-operation switch statements.
type definition struct {
	// init fills type-specific placeholder content on a freshly built section.
	init func(*Section)
	// slots lists the media destinations reachable on this type. SlotMedia
	// on a type without cards refers to the top-level media field; on a
	// card-bearing type it refers to cards[].mediaUrl.
	slots []Slot
	// cards marks types whose media slots route into the cards collection.
	cards bool
	// fixedVisibility marks types that do not carry a visibility toggle
	// (page chrome that always renders).
	fixedVisibility bool
}

// sampleCard seeds card-bearing types with a single empty card so the
// editor has something to render and edit in place.
func sampleCard(s *Section) {
	s.Cards = []Card{NewCard()}
}

func mediaTextDefaults(pos Position) func(*Section) {
	return func(s *Section) {
		s.MediaPosition = pos
	}
}

func columnsDefault(n int) func(*Section) {
	return func(s *Section) {
		s.Columns = n
	}
}

var registry = map[Type]definition{
	TypeHero:       {},
	TypeSplitHero:  {slots: []Slot{SlotProfileImage, SlotBackgroundLeftMedia}},
	TypeHeroSlider: {init: sampleCard, cards: true},

	TypeText:           {slots: []Slot{SlotMedia}},
	TypeMediaTextLeft:  {init: mediaTextDefaults(PositionLeft), slots: []Slot{SlotMedia}},
	TypeMediaTextRight: {init: mediaTextDefaults(PositionRight), slots: []Slot{SlotMedia}},

	TypeCTA: {},

	TypeCardGrid:     {init: sampleCard, slots: []Slot{SlotMedia, SlotThumbnail}, cards: true},
	TypeIconGrid:     {init: sampleCard, slots: []Slot{SlotMedia}, cards: true},
	TypeGallery:      {init: sampleCard, slots: []Slot{SlotMedia, SlotThumbnail}, cards: true},
	TypeCarousel:     {init: sampleCard, slots: []Slot{SlotMedia, SlotThumbnail}, cards: true},
	TypeTestimonials: {init: sampleCard, slots: []Slot{SlotMedia}, cards: true},
	TypeTeam:         {init: sampleCard, slots: []Slot{SlotMedia}, cards: true},

	TypePricing:   {init: columnsDefault(3)},
	TypeFAQ:       {},
	TypeAccordion: {},
	TypeQuote:     {},
	TypeStats:     {init: columnsDefault(4)},
	TypeTimeline:  {},
	TypeLogoWall:  {},

	TypeNewsletter: {},
	TypeVideo:      {init: func(s *Section) { s.MediaType = MediaVideo }, slots: []Slot{SlotMedia}},
	TypeBanner:     {slots: []Slot{SlotMedia}},
	TypeFeatures:   {init: columnsDefault(3)},
	TypeServices:   {},
	TypeProducts:   {},
	TypeContact:    {},
	TypeForm:       {},

	TypeFooter:       {fixedVisibility: true},
	TypeSimpleFooter: {fixedVisibility: true},
}

// NewCard builds an empty card with a fresh id.
func NewCard() Card {
	return Card{ID: uuid.NewString()}
}

// New builds a render-ready default section of the given type: fresh id,
// explicit visible=true, speech flags off, and the type's placeholder
// content. Unknown types return common.ErrUnknownSectionType; the two
// divergent legacy behaviors (silent generic-text fallback vs. silent no-op)
// are both replaced by a uniform reported error.
func New(t Type) (Section, error) {
	def, ok := registry[t]
	if !ok {
		return Section{}, fmt.Errorf("%w: %q", common.ErrUnknownSectionType, t)
	}
	s := Section{
		ID:      uuid.NewString(),
		Type:    t,
		Visible: Bool(true),
	}
	if def.init != nil {
		def.init(&s)
	}
	return s, nil
}

// IsKnown reports whether t is in the closed set of section types.
func IsKnown(t Type) bool {
	_, ok := registry[t]
	return ok
}

// KnownTypes returns all registered types in stable sorted order.
func KnownTypes() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MediaTargets returns the media slots routable on sections of type t.
// Unknown types have no targets.
func MediaTargets(t Type) []Slot {
	return registry[t].slots
}

// HasSlot reports whether type t exposes the given media slot.
func HasSlot(t Type, slot Slot) bool {
	for _, s := range registry[t].slots {
		if s == slot {
			return true
		}
	}
	return false
}

// HasCards reports whether media slots on type t route into a cards
// collection rather than top-level fields.
func HasCards(t Type) bool {
	return registry[t].cards
}

// HasVisibilityToggle reports whether sections of type t carry a visibility
// flag. Page chrome like footers always renders.
func HasVisibilityToggle(t Type) bool {
	def, ok := registry[t]
	return ok && !def.fixedVisibility
}
