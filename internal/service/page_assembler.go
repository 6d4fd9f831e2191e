package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/logger"
)

// PageAssembler turns the persisted settings string of an agency into
// complete settings. It never fails: anything unusable is replaced by defaults.
type PageAssembler struct {
	logger logger.Logger
}

func NewPageAssembler(logger logger.Logger) *PageAssembler {
	return &PageAssembler{logger: logger}
}

type storedSettings struct {
	TemplateID string          `json:"templateId"`
	Theme      json.RawMessage `json:"theme"`
	Pages      json.RawMessage `json:"pages"`
}

// Assemble merges raw over the defaults. Theme groups merge key by key; the
// stored page list replaces the default one only when it is a non-empty array.
func (a *PageAssembler) Assemble(raw string) domain.BrochureSettings {
	settings := domain.DefaultBrochureSettings()

	if strings.TrimSpace(raw) == "" {
		return settings
	}

	var stored storedSettings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		a.logger.WithField("error", err.Error()).Warn("Brochure settings are not valid JSON, using defaults")
		return settings
	}

	settings.TemplateID = stored.TemplateID

	if !isJSONNull(stored.Theme) {
		theme := domain.DefaultTheme()
		if err := json.Unmarshal(stored.Theme, &theme); err != nil {
			a.logger.WithField("error", err.Error()).Warn("Brochure theme could not be parsed, using default theme")
		} else {
			settings.Theme = theme
		}
	}

	if !isJSONNull(stored.Pages) {
		var pages domain.PageList
		if err := json.Unmarshal(stored.Pages, &pages); err != nil {
			a.logger.WithField("error", err.Error()).Warn("Brochure pages could not be parsed, using default pages")
		} else if len(pages) > 0 {
			settings.Pages = pages
		}
	}

	return settings
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
