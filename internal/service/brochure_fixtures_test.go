package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listingdeck/listingdeck/internal/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func sampleBrochureData() domain.BrochureData {
	return domain.BrochureData{
		Agency: &domain.Agency{
			ID:      "agency-1",
			Name:    "Harbor Estates",
			LogoURL: "https://cdn.example/logo.png",
			Email:   "hello@harbor.example",
			Phone:   "+44 20 7946 0000",
		},
		Property: &domain.Property{
			ID:          "prop-1",
			AgencyID:    "agency-1",
			Title:       "Seaside Villa",
			Address:     "1 Ocean Drive",
			Price:       1250000,
			Description: "A bright villa facing the sea.",
			BuildYear:   intPtr(1998),
			LotSize:     floatPtr(820),
			Bedrooms:    intPtr(4),
			Bathrooms:   intPtr(3),
			Images: []string{
				"https://cdn.example/cover.png",
				"https://cdn.example/living.png",
				"https://cdn.example/broken.png",
			},
			Features: []domain.PropertyFeature{{Label: "Pool", Value: "Heated"}},
		},
		Agent: &domain.Agent{ID: "agent-1", AgencyID: "agency-1", Name: "Dana Reyes", Phone: "+44 7700 900123"},
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// mapFetcher serves images from memory; unknown URLs fail
type mapFetcher map[string][]byte

func (f mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("404 for %s", url)
	}
	return data, nil
}
