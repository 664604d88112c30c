// Package mediaroute directs an asynchronously chosen media asset to the
// right field inside a section: a top-level media field, a slot on one card
// of the section's card collection, or one of the split-hero destinations.
// The routing table is the registry's per-type target metadata.
package mediaroute

import (
	"github.com/vkazarins/pagecraft/internal/editor/section"
)

// Target describes where a pending media selection should land once the
// picker returns. CardID is empty for top-level destinations.
type Target struct {
	CardID string
	Slot   section.Slot
}

// Apply routes (url, kind) into sec according to the target and returns the
// patched copy. The boolean reports whether anything was routed; for any
// combination the section's type does not support, the original section is
// returned unchanged and the URL is deliberately dropped — stale or
// misdirected picker results must never land in an unrelated field.
func Apply(sec section.Section, tgt Target, url string, kind section.MediaKind) (section.Section, bool) {
	if url == "" {
		return sec, false
	}

	// Card slots: the section must own a cards collection and the card must
	// still exist (it may have been removed while the picker was open).
	if tgt.CardID != "" {
		if !section.HasCards(sec.Type) || !section.HasSlot(sec.Type, tgt.Slot) {
			return sec, false
		}
		out := sec.Clone()
		card := out.CardByID(tgt.CardID)
		if card == nil {
			return sec, false
		}
		switch tgt.Slot {
		case section.SlotMedia:
			card.MediaURL = url
			card.MediaType = kind
		case section.SlotThumbnail:
			card.ThumbnailURL = url
		default:
			return sec, false
		}
		return out, true
	}

	if !section.HasSlot(sec.Type, tgt.Slot) {
		return sec, false
	}

	out := sec.Clone()
	switch tgt.Slot {
	case section.SlotMedia:
		if section.HasCards(sec.Type) {
			// Card-bearing types take top-level media only through a card id.
			return sec, false
		}
		out.MediaURL = url
		out.MediaType = kind
	case section.SlotProfileImage:
		out.ProfileImageURL = url
	case section.SlotBackgroundLeftMedia:
		out.BackgroundLeftMedia = url
		out.BackgroundLeftMediaType = kind
	default:
		return sec, false
	}
	return out, true
}
