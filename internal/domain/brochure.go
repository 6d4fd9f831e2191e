package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/listingdeck/listingdeck/pkg/blocktree"
)

// PageKind discriminates the two page variants of a brochure
type PageKind string

const (
	PageKindSystem PageKind = "system"
	PageKindCustom PageKind = "custom"
)

// SystemPageType names a fixed page template
type SystemPageType string

const (
	SystemPageCover       SystemPageType = "cover"
	SystemPageDescription SystemPageType = "description"
	SystemPageGallery     SystemPageType = "gallery"
	SystemPageFeatures    SystemPageType = "features"
	SystemPageMap         SystemPageType = "map"
	SystemPageContact     SystemPageType = "contact"
)

// SupportedSystemPageTypes lists the system pages in their default order
var SupportedSystemPageTypes = []SystemPageType{
	SystemPageCover,
	SystemPageDescription,
	SystemPageGallery,
	SystemPageFeatures,
	SystemPageMap,
	SystemPageContact,
}

// IsSupported reports whether a renderer exists for the page type
func (t SystemPageType) IsSupported() bool {
	for _, known := range SupportedSystemPageTypes {
		if known == t {
			return true
		}
	}
	return false
}

// PageEntry is either a SystemPage or a CustomPage
type PageEntry interface {
	Kind() PageKind
	IsEnabled() bool
}

// SystemPage is a fixed template page filled from property data
type SystemPage struct {
	Type    SystemPageType `json:"type"`
	Enabled bool           `json:"enabled"`
	Title   *string        `json:"title,omitempty"`
	Columns *int           `json:"columns,omitempty"`
}

func (p SystemPage) Kind() PageKind  { return PageKindSystem }
func (p SystemPage) IsEnabled() bool { return p.Enabled }

// MarshalJSON adds the kind discriminator
func (p SystemPage) MarshalJSON() ([]byte, error) {
	type alias SystemPage
	return json.Marshal(struct {
		Kind PageKind `json:"kind"`
		alias
	}{Kind: PageKindSystem, alias: alias(p)})
}

// CustomPage is a page composed in the block editor
type CustomPage struct {
	ID      string            `json:"id,omitempty"`
	Enabled bool              `json:"enabled"`
	Blocks  []blocktree.Block `json:"blocks"`
}

func (p CustomPage) Kind() PageKind  { return PageKindCustom }
func (p CustomPage) IsEnabled() bool { return p.Enabled }

// MarshalJSON adds the kind discriminator and always emits a blocks list
func (p CustomPage) MarshalJSON() ([]byte, error) {
	type alias CustomPage
	if p.Blocks == nil {
		p.Blocks = []blocktree.Block{}
	}
	return json.Marshal(struct {
		Kind PageKind `json:"kind"`
		alias
	}{Kind: PageKindCustom, alias: alias(p)})
}

// Tree indexes the page blocks
func (p CustomPage) Tree() (*blocktree.Tree, error) {
	return blocktree.NewTree(p.Blocks)
}

// PageList is an ordered list of page entries with tagged JSON encoding
type PageList []PageEntry

type pageHeader struct {
	Kind    PageKind        `json:"kind"`
	Type    string          `json:"type"`
	Enabled *bool           `json:"enabled"`
	Blocks  json.RawMessage `json:"blocks"`
}

// UnmarshalJSON decodes each entry by its kind. Records without a kind are
// custom pages when they carry blocks or have type "custom", system pages
// otherwise. A missing enabled flag means enabled.
func (l *PageList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	pages := make(PageList, 0, len(raws))
	for i, raw := range raws {
		page, err := decodePageEntry(raw)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, page)
	}
	*l = pages
	return nil
}

func decodePageEntry(raw json.RawMessage) (PageEntry, error) {
	var header pageHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}

	enabled := true
	if header.Enabled != nil {
		enabled = *header.Enabled
	}

	kind := header.Kind
	if kind != PageKindSystem && kind != PageKindCustom {
		hasBlocks := len(bytes.TrimSpace(header.Blocks)) > 0 && !bytes.Equal(bytes.TrimSpace(header.Blocks), []byte("null"))
		if hasBlocks || header.Type == string(PageKindCustom) {
			kind = PageKindCustom
		} else {
			kind = PageKindSystem
		}
	}

	if kind == PageKindCustom {
		var page CustomPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, err
		}
		page.Enabled = enabled
		if page.Blocks == nil {
			page.Blocks = []blocktree.Block{}
		}
		return page, nil
	}

	var page SystemPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	page.Enabled = enabled
	return page, nil
}

// EnabledPages returns the enabled entries in order
func (l PageList) EnabledPages() PageList {
	enabled := make(PageList, 0, len(l))
	for _, p := range l {
		if p.IsEnabled() {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// HasEnabledCustomPage reports whether at least one custom page is enabled
func (l PageList) HasEnabledCustomPage() bool {
	for _, p := range l {
		if p.Kind() == PageKindCustom && p.IsEnabled() {
			return true
		}
	}
	return false
}

// ThemeColors is the brochure palette
type ThemeColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// ThemeFonts names the heading and body font families
type ThemeFonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ThemeShapes controls corners and card decoration
type ThemeShapes struct {
	CornerRadius int    `json:"cornerRadius"`
	CardStyle    string `json:"cardStyle"`
}

// ThemeBackground controls the page background treatment
type ThemeBackground struct {
	Style string `json:"style"`
}

// ThemeConfig groups the visual settings of a brochure
type ThemeConfig struct {
	Colors     ThemeColors     `json:"colors"`
	Fonts      ThemeFonts      `json:"fonts"`
	Shapes     ThemeShapes     `json:"shapes"`
	Background ThemeBackground `json:"background"`
}

// Card styles accepted in ThemeShapes.CardStyle
var CardStyles = []string{"flat", "bordered", "elevated"}

// Background styles accepted in ThemeBackground.Style
var BackgroundStyles = []string{"solid", "gradient", "pattern"}

// DefaultTheme returns the theme used when an agency has not customized one
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		Colors: ThemeColors{
			Primary:    "#1a365d",
			Secondary:  "#2d3748",
			Accent:     "#c9a227",
			Text:       "#1a202c",
			Background: "#ffffff",
		},
		Fonts: ThemeFonts{
			Heading: "Helvetica",
			Body:    "Helvetica",
		},
		Shapes: ThemeShapes{
			CornerRadius: 8,
			CardStyle:    "elevated",
		},
		Background: ThemeBackground{
			Style: "solid",
		},
	}
}

// DefaultPages returns the six system pages, all enabled, in default order
func DefaultPages() PageList {
	pages := make(PageList, 0, len(SupportedSystemPageTypes))
	for _, t := range SupportedSystemPageTypes {
		pages = append(pages, SystemPage{Type: t, Enabled: true})
	}
	return pages
}

// BrochureSettings is the per-agency brochure configuration, persisted as JSON
type BrochureSettings struct {
	TemplateID string      `json:"templateId,omitempty"`
	Theme      ThemeConfig `json:"theme"`
	Pages      PageList    `json:"pages"`
}

// DefaultBrochureSettings returns the settings used when none are stored
func DefaultBrochureSettings() BrochureSettings {
	return BrochureSettings{
		Theme: DefaultTheme(),
		Pages: DefaultPages(),
	}
}

// CustomPages returns the custom page entries in order
func (s BrochureSettings) CustomPages() []CustomPage {
	var pages []CustomPage
	for _, p := range s.Pages {
		if cp, ok := p.(CustomPage); ok {
			pages = append(pages, cp)
		}
	}
	return pages
}
