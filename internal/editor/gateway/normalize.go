package gateway

import (
	"github.com/vkazarins/pagecraft/internal/editor/section"
)

// normalizeSections repairs legacy persisted payloads at load time. This is
// not a user mutation: the document stays clean afterwards.
//
// Rules:
//   - media-text sections stored before mediaPosition existed get it
//     back-filled from their type tag;
//   - when the gateway is configured with a page-global footer, persisted
//     footer sections are dropped so the footer does not render twice.
func normalizeSections(sections []section.Section, dropFooters bool) []section.Section {
	out := make([]section.Section, 0, len(sections))
	for _, s := range sections {
		switch s.Type {
		case section.TypeMediaTextLeft:
			if s.MediaPosition == "" {
				s.MediaPosition = section.PositionLeft
			}
		case section.TypeMediaTextRight:
			if s.MediaPosition == "" {
				s.MediaPosition = section.PositionRight
			}
		case section.TypeFooter, section.TypeSimpleFooter:
			if dropFooters {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
