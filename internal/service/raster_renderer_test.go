package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/internal/domain/mocks"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
	"github.com/listingdeck/listingdeck/pkg/logger"
)

func customPage(id string, blocks ...blocktree.Block) domain.CustomPage {
	return domain.CustomPage{ID: id, Enabled: true, Blocks: blocks}
}

func mixedSettings() domain.BrochureSettings {
	return domain.BrochureSettings{
		Theme: domain.DefaultTheme(),
		Pages: domain.PageList{
			domain.SystemPage{Type: domain.SystemPageCover, Enabled: true},
			customPage("intro",
				blocktree.Block{ID: "t1", Type: blocktree.BlockTypeTitle, Content: "Title", DynamicField: "project.title"},
				blocktree.Block{ID: "i1", Type: blocktree.BlockTypeImage, Content: "p1/cover.jpg"},
			),
			domain.CustomPage{ID: "hidden", Enabled: false, Blocks: []blocktree.Block{
				{ID: "x1", Type: blocktree.BlockTypeText, Content: "never shown"},
			}},
			customPage("contact",
				blocktree.Block{ID: "c1", Type: blocktree.BlockTypeText, Content: "Call {{ agent.name }}"},
			),
		},
	}
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRasterRenderer_ComposeSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	urlResolver := mocks.NewMockImageURLResolver(ctrl)
	urlResolver.EXPECT().ResolveURL(gomock.Any(), "p1/cover.jpg").Return("https://s3.example/p1/cover.jpg?sig=1", nil)

	log := logger.NewTestLogger(t)
	images := NewImageResolver(urlResolver, nil, ImageResolverConfig{Placeholder: testPlaceholder}, log)
	r := NewRasterRenderer(nil, images, nil, log)

	html, err := r.ComposeSettings(context.Background(), mixedSettings(), sampleBrochureData())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))

	doc := parseHTML(t, html)
	assert.Equal(t, "Seaside Villa", doc.Find("title").Text())

	container := doc.Find("body > div.brochure")
	require.Equal(t, 1, container.Length())
	style, _ := container.Attr("style")
	assert.Contains(t, style, "width: 794px")

	sections := container.Find("section.brochure-page")
	require.Equal(t, 2, sections.Length())
	assert.Equal(t, 1, container.Find("div.page-break").Length())

	assert.Equal(t, "Seaside Villa", sections.Eq(0).Find("h2").Text())
	src, _ := sections.Eq(0).Find("img").Attr("src")
	assert.Equal(t, "https://s3.example/p1/cover.jpg?sig=1", src)
	assert.Equal(t, "Call Dana Reyes", sections.Eq(1).Find("p").Text())

	assert.NotContains(t, html, "never shown")
	assert.Contains(t, doc.Find("style").Text(), ".page-break")
}

func TestRasterRenderer_Render(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().PrintHTML(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, html string) ([]byte, error) {
		assert.Contains(t, html, `class="brochure-page"`)
		return []byte("%PDF-1.7 raster"), nil
	})

	log := logger.NewTestLogger(t)
	r := NewRasterRenderer(engine, NewImageResolver(nil, nil, ImageResolverConfig{Placeholder: testPlaceholder}, log), nil, log)

	out, err := r.Render(context.Background(), mixedSettings(), sampleBrochureData())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 raster"), out)
}

func TestRasterRenderer_RenderErrors(t *testing.T) {
	t.Run("engine failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		boom := errors.New("chrome crashed")
		engine := mocks.NewMockEngine(ctrl)
		engine.EXPECT().PrintHTML(gomock.Any(), gomock.Any()).Return(nil, boom)

		r := NewRasterRenderer(engine, nil, nil, logger.NewTestLogger(t))
		_, err := r.Render(context.Background(), mixedSettings(), sampleBrochureData())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		engine := mocks.NewMockEngine(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := NewRasterRenderer(engine, nil, nil, logger.NewTestLogger(t))
		_, err := r.Render(ctx, mixedSettings(), sampleBrochureData())
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "custom page contact")
	})

	t.Run("no engine", func(t *testing.T) {
		r := NewRasterRenderer(nil, nil, nil, logger.NewTestLogger(t))
		_, err := r.Render(context.Background(), mixedSettings(), sampleBrochureData())
		assert.Error(t, err)
	})
}

func TestRasterRenderer_InvalidLiquidKeepsStaticText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().PrintHTML(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, html string) ([]byte, error) {
		assert.Contains(t, html, "never closed")
		return []byte("%PDF-1.7 raster"), nil
	})

	settings := domain.BrochureSettings{Pages: domain.PageList{
		customPage("bad", blocktree.Block{ID: "b1", Type: blocktree.BlockTypeText, Content: "{% if agent.name %}never closed"}),
	}}

	log := logger.NewTestLogger(t)
	r := NewRasterRenderer(engine, nil, nil, log)
	out, err := r.Render(context.Background(), settings, sampleBrochureData())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 raster"), out)

	warnings := log.Entries("warn")
	require.Len(t, warnings, 1)
	assert.Equal(t, "b1", warnings[0].Fields["block_id"])
}

func TestThemeCSS(t *testing.T) {
	theme := domain.DefaultTheme()
	theme.Colors.Text = "#333333"
	theme.Colors.Primary = "red; } body { display:none"
	theme.Fonts.Heading = "Playfair Display"
	theme.Fonts.Body = "x'; }"
	theme.Shapes.CornerRadius = 500

	css := ThemeCSS(theme)
	assert.Contains(t, css, "color: #333333")
	assert.Contains(t, css, "'Playfair Display'")
	assert.Contains(t, css, "color: #1a365d")
	assert.Contains(t, css, "'Helvetica'")
	assert.Contains(t, css, "border-radius: 8px")
	assert.NotContains(t, css, "display:none")
}
