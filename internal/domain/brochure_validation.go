package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/asaskevich/govalidator"
	"github.com/xeipuuv/gojsonschema"

	"github.com/listingdeck/listingdeck/pkg/blocktree"
)

const maxBrochurePages = 50

const brochureSettingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["theme", "pages"],
  "properties": {
    "templateId": {"type": "string", "maxLength": 64},
    "theme": {
      "type": "object",
      "properties": {
        "colors": {"type": "object", "additionalProperties": {"type": "string"}},
        "fonts": {"type": "object", "additionalProperties": {"type": "string", "maxLength": 64}},
        "shapes": {
          "type": "object",
          "properties": {
            "cornerRadius": {"type": "integer", "minimum": 0, "maximum": 64},
            "cardStyle": {"type": "string"}
          }
        },
        "background": {
          "type": "object",
          "properties": {"style": {"type": "string"}}
        }
      }
    },
    "pages": {
      "type": "array",
      "maxItems": 50,
      "items": {
        "type": "object",
        "required": ["kind", "enabled"],
        "properties": {
          "kind": {"enum": ["system", "custom"]},
          "type": {"type": "string"},
          "enabled": {"type": "boolean"},
          "title": {"type": "string", "maxLength": 255},
          "columns": {"type": "integer", "minimum": 1, "maximum": 4},
          "blocks": {"type": "array", "items": {"$ref": "#/definitions/block"}}
        }
      }
    }
  },
  "definitions": {
    "block": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"enum": ["title", "text", "image", "container", "button", "gallery"]},
        "content": {"type": "string"},
        "dynamicField": {"type": "string"},
        "styles": {"type": "object", "additionalProperties": {"type": "string"}},
        "children": {"type": "array", "items": {"$ref": "#/definitions/block"}}
      }
    }
  }
}`

var (
	settingsSchemaOnce sync.Once
	settingsSchema     *gojsonschema.Schema
	settingsSchemaErr  error
)

func loadSettingsSchema() (*gojsonschema.Schema, error) {
	settingsSchemaOnce.Do(func() {
		settingsSchema, settingsSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(brochureSettingsSchema))
	})
	return settingsSchema, settingsSchemaErr
}

// ValidateBrochureSettingsJSON checks serialized settings against the settings schema
func ValidateBrochureSettingsJSON(data []byte) error {
	schema, err := loadSettingsSchema()
	if err != nil {
		return fmt.Errorf("failed to load brochure settings schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return NewValidationError(fmt.Sprintf("brochure settings are not valid JSON: %v", err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return NewValidationError(fmt.Sprintf("brochure settings do not match schema: %s", strings.Join(errs, "; ")))
	}

	return nil
}

// Validate checks the theme and page list field by field
func (s BrochureSettings) Validate() error {
	if err := s.Theme.Validate(); err != nil {
		return err
	}

	if len(s.Pages) > maxBrochurePages {
		return NewValidationError(fmt.Sprintf("a brochure has at most %d pages", maxBrochurePages))
	}

	for i, page := range s.Pages {
		switch p := page.(type) {
		case SystemPage:
			if !p.Type.IsSupported() {
				return NewValidationError(fmt.Sprintf("pages[%d]: unsupported system page type %q", i, p.Type))
			}
			if p.Columns != nil && (*p.Columns < 1 || *p.Columns > 4) {
				return NewValidationError(fmt.Sprintf("pages[%d]: columns must be between 1 and 4", i))
			}
		case CustomPage:
			if _, err := blocktree.NewTree(p.Blocks); err != nil {
				return NewValidationError(fmt.Sprintf("pages[%d]: %v", i, err))
			}
			var imageErr error
			blocktree.Walk(p.Blocks, func(b blocktree.Block, _ int) bool {
				switch b.Type {
				case blocktree.BlockTypeImage:
					imageErr = ValidateImageReference(strings.TrimSpace(b.Content))
				case blocktree.BlockTypeGallery:
					for _, ref := range blocktree.ParseGalleryContent(b.Content) {
						if imageErr = ValidateImageReference(ref); imageErr != nil {
							break
						}
					}
				}
				return imageErr == nil
			})
			if imageErr != nil {
				return fmt.Errorf("pages[%d]: %w", i, imageErr)
			}
		default:
			return NewValidationError(fmt.Sprintf("pages[%d]: unknown page entry", i))
		}
	}

	return nil
}

// Validate checks colors are hex values and enumerated styles are known
func (t ThemeConfig) Validate() error {
	colors := map[string]string{
		"primary":    t.Colors.Primary,
		"secondary":  t.Colors.Secondary,
		"accent":     t.Colors.Accent,
		"text":       t.Colors.Text,
		"background": t.Colors.Background,
	}
	for name, value := range colors {
		if !strings.HasPrefix(value, "#") || !govalidator.IsHexcolor(value) {
			return NewValidationError(fmt.Sprintf("theme.colors.%s must be a hex color, got %q", name, value))
		}
	}

	if t.Fonts.Heading == "" || t.Fonts.Body == "" {
		return NewValidationError("theme.fonts.heading and theme.fonts.body are required")
	}

	if t.Shapes.CornerRadius < 0 || t.Shapes.CornerRadius > 64 {
		return NewValidationError("theme.shapes.cornerRadius must be between 0 and 64")
	}
	if !govalidator.IsIn(t.Shapes.CardStyle, CardStyles...) {
		return NewValidationError(fmt.Sprintf("theme.shapes.cardStyle must be one of %s", strings.Join(CardStyles, ", ")))
	}
	if !govalidator.IsIn(t.Background.Style, BackgroundStyles...) {
		return NewValidationError(fmt.Sprintf("theme.background.style must be one of %s", strings.Join(BackgroundStyles, ", ")))
	}

	return nil
}

// ValidateImageReference accepts http(s) URLs and storage keys
func ValidateImageReference(ref string) error {
	if ref == "" {
		return nil
	}
	if blocktree.IsAbsoluteURL(ref) {
		if !govalidator.IsURL(ref) {
			return NewValidationError(fmt.Sprintf("invalid image URL %q", ref))
		}
		return nil
	}
	if strings.ContainsAny(ref, " \t\n<>\"") {
		return NewValidationError(fmt.Sprintf("invalid storage key %q", ref))
	}
	return nil
}
