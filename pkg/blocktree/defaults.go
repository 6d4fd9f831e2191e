package blocktree

import "fmt"

// GetDefaultStyles returns the styles a freshly created block of the given type starts with
func GetDefaultStyles(t BlockType) Styles {
	switch t {
	case BlockTypeTitle:
		return Styles{
			FontSize:     StringPtr("28px"),
			FontWeight:   StringPtr("700"),
			Color:        StringPtr("#1f2937"),
			MarginBottom: StringPtr("12px"),
		}
	case BlockTypeText:
		return Styles{
			FontSize:   StringPtr("14px"),
			LineHeight: StringPtr("1.6"),
			Color:      StringPtr("#374151"),
		}
	case BlockTypeImage:
		return Styles{
			Width:        StringPtr("100%"),
			Height:       StringPtr("240px"),
			ObjectFit:    StringPtr("cover"),
			BorderRadius: StringPtr("4px"),
		}
	case BlockTypeContainer:
		return Styles{
			Display:       StringPtr("flex"),
			FlexDirection: StringPtr("column"),
			Gap:           StringPtr("12px"),
			Padding:       StringPtr("16px"),
			MinHeight:     StringPtr("80px"),
		}
	case BlockTypeButton:
		return Styles{
			BackgroundColor: StringPtr("#1f2937"),
			Color:           StringPtr("#ffffff"),
			Padding:         StringPtr("10px 20px"),
			BorderRadius:    StringPtr("4px"),
			Border:          StringPtr("none"),
			FontSize:        StringPtr("14px"),
		}
	case BlockTypeGallery:
		return Styles{
			Display:             StringPtr("grid"),
			GridTemplateColumns: StringPtr("repeat(2, 1fr)"),
			Gap:                 StringPtr("8px"),
		}
	default:
		return Styles{}
	}
}

// GetDefaultContent returns the placeholder content for a new block of the given type
func GetDefaultContent(t BlockType) string {
	switch t {
	case BlockTypeTitle:
		return "New title"
	case BlockTypeText:
		return "Add your text here"
	case BlockTypeButton:
		return "Contact us"
	default:
		return ""
	}
}

// NewDefaultBlock creates a block of the given type with a fresh id and default content/styles
func NewDefaultBlock(t BlockType) (Block, error) {
	if !IsValidBlockType(t) {
		return Block{}, fmt.Errorf("%w: %q", ErrInvalidBlockType, t)
	}
	b := Block{
		ID:      newID(),
		Type:    t,
		Content: GetDefaultContent(t),
		Styles:  GetDefaultStyles(t),
	}
	if t == BlockTypeContainer {
		b.Children = []Block{}
	}
	return b, nil
}
