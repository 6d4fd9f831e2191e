package blocktree

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Styles is the closed set of presentational keys a block may carry.
// Keys use the camelCase names the editor produces.
type Styles struct {
	// Dimensions
	Width     *string `json:"width,omitempty"`
	Height    *string `json:"height,omitempty"`
	MinHeight *string `json:"minHeight,omitempty"`
	MaxWidth  *string `json:"maxWidth,omitempty"`

	// Spacing
	Padding      *string `json:"padding,omitempty"`
	Margin       *string `json:"margin,omitempty"`
	MarginTop    *string `json:"marginTop,omitempty"`
	MarginBottom *string `json:"marginBottom,omitempty"`
	MarginLeft   *string `json:"marginLeft,omitempty"`
	MarginRight  *string `json:"marginRight,omitempty"`

	// Colors
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	Color           *string `json:"color,omitempty"`

	// Typography
	FontFamily    *string `json:"fontFamily,omitempty"`
	FontSize      *string `json:"fontSize,omitempty"`
	FontWeight    *string `json:"fontWeight,omitempty"`
	FontStyle     *string `json:"fontStyle,omitempty"`
	TextAlign     *string `json:"textAlign,omitempty"`
	LineHeight    *string `json:"lineHeight,omitempty"`
	LetterSpacing *string `json:"letterSpacing,omitempty"`
	TextTransform *string `json:"textTransform,omitempty"`

	// Borders
	Border       *string `json:"border,omitempty"`
	BorderRadius *string `json:"borderRadius,omitempty"`
	BoxShadow    *string `json:"boxShadow,omitempty"`

	// Layout
	Display             *string `json:"display,omitempty"`
	FlexDirection       *string `json:"flexDirection,omitempty"`
	FlexWrap            *string `json:"flexWrap,omitempty"`
	Flex                *string `json:"flex,omitempty"`
	JustifyContent      *string `json:"justifyContent,omitempty"`
	AlignItems          *string `json:"alignItems,omitempty"`
	Gap                 *string `json:"gap,omitempty"`
	GridTemplateColumns *string `json:"gridTemplateColumns,omitempty"`

	// Media
	ObjectFit *string `json:"objectFit,omitempty"`
	Opacity   *string `json:"opacity,omitempty"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

var capitalLetter = regexp.MustCompile("([A-Z])")

// camelToKebab converts camelCase to kebab-case
func camelToKebab(str string) string {
	return capitalLetter.ReplaceAllStringFunc(str, func(match string) string {
		return "-" + strings.ToLower(match)
	})
}

// ToMap returns the set style keys with their values
func (s Styles) ToMap() map[string]string {
	result := make(map[string]string)
	data, err := json.Marshal(s)
	if err != nil {
		return result
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return result
	}
	for k, v := range raw {
		if v != "" {
			result[k] = v
		}
	}
	return result
}

// Clone returns a copy of s that shares no pointers with it
func (s Styles) Clone() Styles {
	data, err := json.Marshal(s)
	if err != nil {
		return Styles{}
	}
	var cp Styles
	if err := json.Unmarshal(data, &cp); err != nil {
		return Styles{}
	}
	return cp
}

// IsEmpty reports whether no style key is set
func (s Styles) IsEmpty() bool {
	return len(s.ToMap()) == 0
}

// Merge returns a copy of s with every key set in other applied on top
func (s Styles) Merge(other Styles) Styles {
	base := s.ToMap()
	for k, v := range other.ToMap() {
		base[k] = v
	}
	var merged Styles
	data, err := json.Marshal(base)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &merged); err != nil {
		return s
	}
	return merged
}

// ToCSS renders the styles as an inline CSS declaration list, keys sorted.
func (s Styles) ToCSS() string {
	values := s.ToMap()
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", camelToKebab(k), sanitizeCSSValue(values[k])))
	}
	return strings.Join(parts, "; ") + ";"
}

// sanitizeCSSValue strips characters that would terminate a declaration or the style attribute
func sanitizeCSSValue(v string) string {
	return strings.NewReplacer(";", "", "{", "", "}", "", "<", "", ">", "").Replace(strings.TrimSpace(v))
}
