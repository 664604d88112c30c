// Package section defines the typed page-section model and the registry of
// known section types. A Section is one self-contained block of page content;
// its Type discriminant selects which of the optional fields are meaningful.
package section

// Type is the section discriminant. The set of known types is closed and
// enumerated in the registry; creating a section of an unlisted type is an
// error, never a silent fallback.
type Type string

const (
	TypeHero           Type = "hero"
	TypeSplitHero      Type = "split-hero"
	TypeHeroSlider     Type = "hero-slider"
	TypeText           Type = "text"
	TypeMediaTextLeft  Type = "media-text-left"
	TypeMediaTextRight Type = "media-text-right"
	TypeCTA            Type = "cta"
	TypeCardGrid       Type = "card-grid"
	TypeIconGrid       Type = "icon-grid"
	TypeGallery        Type = "gallery"
	TypeCarousel       Type = "carousel"
	TypeTestimonials   Type = "testimonials"
	TypeTeam           Type = "team"
	TypePricing        Type = "pricing"
	TypeFAQ            Type = "faq"
	TypeAccordion      Type = "accordion"
	TypeQuote          Type = "quote"
	TypeStats          Type = "stats"
	TypeTimeline       Type = "timeline"
	TypeLogoWall       Type = "logo-wall"
	TypeNewsletter     Type = "newsletter"
	TypeVideo          Type = "video"
	TypeBanner         Type = "banner"
	TypeFeatures       Type = "features"
	TypeServices       Type = "services"
	TypeProducts       Type = "products"
	TypeContact        Type = "contact"
	TypeForm           Type = "form"
	TypeFooter         Type = "footer"
	TypeSimpleFooter   Type = "simple-footer"
)

// MediaKind distinguishes image from video assets.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Position is a horizontal placement for media-text sections. It must always
// agree with the section type: media-text-right implies PositionRight.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// Theme is a per-section style override record.
type Theme struct {
	Background string `json:"background,omitempty"`
	TextColor  string `json:"textColor,omitempty"`
	Accent     string `json:"accent,omitempty"`
}

// Card is a nested display item owned exclusively by its parent section.
type Card struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Tagline      string    `json:"tagline,omitempty"`
	Description  string    `json:"description,omitempty"`
	MediaURL     string    `json:"mediaUrl,omitempty"`
	MediaType    MediaKind `json:"mediaType,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	LinkURL      string    `json:"linkUrl,omitempty"`
}

// Section is one tagged block of page content. ID and Type are assigned at
// creation and immutable afterwards. Visible is a tri-state pointer: an
// absent field in persisted payloads means visible, so readers must go
// through IsVisible rather than dereference.
//
// The remaining fields form the superset of all per-type field sets; each
// field carries omitempty so a serialized section only shows the fields its
// type actually uses.
type Section struct {
	ID              string `json:"id"`
	Type            Type   `json:"type"`
	Visible         *bool  `json:"visible,omitempty"`
	SpeechEnabled   bool   `json:"speechEnabled,omitempty"`
	CaptionsEnabled bool   `json:"captionsEnabled,omitempty"`

	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body,omitempty"`

	MediaURL      string    `json:"mediaUrl,omitempty"`
	MediaType     MediaKind `json:"mediaType,omitempty"`
	MediaPosition Position  `json:"mediaPosition,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`

	// Split-hero only.
	ProfileImageURL         string    `json:"profileImageUrl,omitempty"`
	BackgroundLeftMedia     string    `json:"backgroundLeftMedia,omitempty"`
	BackgroundLeftMediaType MediaKind `json:"backgroundLeftMediaType,omitempty"`

	Cards []Card `json:"cards,omitempty"`

	Theme   *Theme `json:"theme,omitempty"`
	Layout  string `json:"layout,omitempty"`
	Columns int    `json:"columns,omitempty"`

	ButtonLabel string `json:"buttonLabel,omitempty"`
	ButtonURL   string `json:"buttonUrl,omitempty"`
}

// IsVisible reports whether the section should render. A nil Visible means
// true; only an explicit false hides the section.
func (s *Section) IsVisible() bool {
	return s.Visible == nil || *s.Visible
}

// SetVisible sets the visibility flag explicitly.
func (s *Section) SetVisible(v bool) {
	s.Visible = &v
}

// Clone returns a deep copy of the section. IDs are copied verbatim; callers
// duplicating a section are responsible for assigning fresh ones.
func (s Section) Clone() Section {
	out := s
	if s.Visible != nil {
		v := *s.Visible
		out.Visible = &v
	}
	if s.Theme != nil {
		th := *s.Theme
		out.Theme = &th
	}
	if s.Cards != nil {
		out.Cards = make([]Card, len(s.Cards))
		copy(out.Cards, s.Cards)
	}
	return out
}

// CardByID returns a pointer into the section's card slice, or nil when no
// card carries the given id.
func (s *Section) CardByID(id string) *Card {
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return &s.Cards[i]
		}
	}
	return nil
}

// Bool is a convenience for building *bool literals.
func Bool(v bool) *bool {
	return &v
}
