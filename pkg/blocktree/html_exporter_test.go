package blocktree

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRenderDocument(t *testing.T) {
	blocks := []Block{
		{
			ID:     "c1",
			Type:   BlockTypeContainer,
			Styles: Styles{BackgroundColor: StringPtr("#f5f5f5"), FlexDirection: StringPtr("row")},
			Children: []Block{
				{ID: "t1", Type: BlockTypeTitle, Content: "Villa <Deluxe>"},
				{ID: "p1", Type: BlockTypeText, Content: "Sun & sea", Styles: Styles{FontSize: StringPtr("14px")}},
			},
		},
		{ID: "i1", Type: BlockTypeImage, Content: "https://cdn.example.com/a.jpg?w=800&h=600"},
		{ID: "b1", Type: BlockTypeButton, Content: "Book a visit"},
		{ID: "g1", Type: BlockTypeGallery, Content: "https://cdn.example.com/1.jpg, https://cdn.example.com/2.jpg"},
	}

	html := RenderDocument(blocks)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "print-color-adjust: exact")

	doc := parseHTML(t, html)

	container := doc.Find(`body > div[data-block-id="c1"]`)
	require.Equal(t, 1, container.Length())
	style, _ := container.Attr("style")
	assert.Equal(t, "background-color: #f5f5f5; flex-direction: row;", style)

	children := container.Children()
	require.Equal(t, 2, children.Length())
	assert.Equal(t, "h2", goquery.NodeName(children.Eq(0)))
	assert.Equal(t, "Villa <Deluxe>", children.Eq(0).Text())
	assert.Equal(t, "p", goquery.NodeName(children.Eq(1)))
	assert.Equal(t, "Sun & sea", children.Eq(1).Text())

	img := doc.Find(`img[data-block-id="i1"]`)
	src, _ := img.Attr("src")
	assert.Equal(t, "https://cdn.example.com/a.jpg?w=800&h=600", src)

	assert.Equal(t, "Book a visit", doc.Find(`button[data-block-id="b1"]`).Text())

	gallery := doc.Find(`div.gallery[data-block-id="g1"]`)
	assert.Equal(t, 2, gallery.Find("img").Length())
	galleryStyle, _ := gallery.Attr("style")
	assert.Contains(t, galleryStyle, "display: grid")
}

func TestRenderBody_PreservesOrderDepthFirst(t *testing.T) {
	blocks := []Block{
		{ID: "a", Type: BlockTypeText, Content: "first"},
		{ID: "c", Type: BlockTypeContainer, Children: []Block{
			{ID: "b", Type: BlockTypeText, Content: "second"},
			{ID: "d", Type: BlockTypeContainer, Children: []Block{
				{ID: "e", Type: BlockTypeText, Content: "third"},
			}},
		}},
		{ID: "f", Type: BlockTypeText, Content: "fourth"},
	}

	body := RenderBody(blocks)
	assert.NotContains(t, body, "<html")

	var texts []string
	parseHTML(t, body).Find("p").Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, texts)
}

func TestRenderBody_EscapesAttributes(t *testing.T) {
	body := RenderBody([]Block{{
		ID:      `x" onload="alert(1)`,
		Type:    BlockTypeImage,
		Content: `javascript:"bad"`,
	}})
	assert.NotContains(t, body, `onload="alert(1)"`)
	assert.Contains(t, body, "&quot;")
}

func TestRenderBody_EmptyBlocks(t *testing.T) {
	assert.Equal(t, "", RenderBody(nil))
	assert.Equal(t, `<div data-block-id="c"></div>`, RenderBody([]Block{{ID: "c", Type: BlockTypeContainer}}))
	assert.Equal(t, `<img data-block-id="i" alt="" />`, RenderBody([]Block{{ID: "i", Type: BlockTypeImage}}))
}

func TestRenderDocumentWithOptions(t *testing.T) {
	html := RenderDocumentWithOptions(nil, HTMLOptions{Title: "Listing & Co", ExtraCSS: ".brand { color: red; }"})
	assert.Contains(t, html, "<title>Listing &amp; Co</title>")
	assert.Contains(t, html, ".brand { color: red; }")
}
