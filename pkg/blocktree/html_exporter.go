package blocktree

import (
	"fmt"
	"strings"
)

// PrintResetCSS is the stylesheet every exported document starts with
const PrintResetCSS = `*, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
html, body { background: #ffffff; }
body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; color: #1f2937; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
img { display: block; max-width: 100%; }
button { font: inherit; cursor: default; }
.page-break { page-break-after: always; break-after: page; height: 0; }
@page { size: A4; margin: 0; }`

// HTMLOptions customizes the document wrapper
type HTMLOptions struct {
	Title    string
	ExtraCSS string
}

var galleryBaseStyles = Styles{
	Display:             StringPtr("grid"),
	GridTemplateColumns: StringPtr("repeat(2, 1fr)"),
	Gap:                 StringPtr("8px"),
}

var galleryItemStyles = Styles{
	Width:     StringPtr("100%"),
	Height:    StringPtr("180px"),
	ObjectFit: StringPtr("cover"),
}

// RenderDocument renders blocks as a standalone HTML document
func RenderDocument(blocks []Block) string {
	return RenderDocumentWithOptions(blocks, HTMLOptions{})
}

// RenderDocumentWithOptions renders blocks as a standalone HTML document with a custom title and stylesheet
func RenderDocumentWithOptions(blocks []Block, opts HTMLOptions) string {
	title := opts.Title
	if title == "" {
		title = "Brochure"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("  <meta charset=\"utf-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeContent(title)))
	sb.WriteString("  <style>\n")
	sb.WriteString(PrintResetCSS)
	if opts.ExtraCSS != "" {
		sb.WriteString("\n")
		sb.WriteString(opts.ExtraCSS)
	}
	sb.WriteString("\n  </style>\n")
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	if body := renderBlocks(blocks, 1); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")
	return sb.String()
}

// RenderBody renders blocks as an HTML fragment without the document wrapper
func RenderBody(blocks []Block) string {
	return renderBlocks(blocks, 0)
}

func renderBlocks(blocks []Block, indentLevel int) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, renderBlock(b, indentLevel))
	}
	return strings.Join(parts, "\n")
}

func renderBlock(b Block, indentLevel int) string {
	indent := strings.Repeat("  ", indentLevel)
	attrs := formatAttributes(b.ID, b.Styles)

	switch b.Type {
	case BlockTypeContainer:
		if len(b.Children) == 0 {
			return fmt.Sprintf("%s<div%s></div>", indent, attrs)
		}
		return fmt.Sprintf("%s<div%s>\n%s\n%s</div>", indent, attrs, renderBlocks(b.Children, indentLevel+1), indent)

	case BlockTypeTitle:
		return fmt.Sprintf("%s<h2%s>%s</h2>", indent, attrs, escapeContent(b.Content))

	case BlockTypeText:
		return fmt.Sprintf("%s<p%s>%s</p>", indent, attrs, escapeContent(b.Content))

	case BlockTypeButton:
		return fmt.Sprintf("%s<button type=\"button\"%s>%s</button>", indent, attrs, escapeContent(b.Content))

	case BlockTypeImage:
		src := strings.TrimSpace(b.Content)
		if src == "" {
			return fmt.Sprintf("%s<img%s alt=\"\" />", indent, attrs)
		}
		return fmt.Sprintf("%s<img src=\"%s\"%s alt=\"\" />", indent, escapeAttributeValue(src, "src"), attrs)

	case BlockTypeGallery:
		galleryAttrs := formatAttributes(b.ID, galleryBaseStyles.Merge(b.Styles))
		refs := ParseGalleryContent(b.Content)
		if len(refs) == 0 {
			return fmt.Sprintf("%s<div class=\"gallery\"%s></div>", indent, galleryAttrs)
		}
		itemIndent := strings.Repeat("  ", indentLevel+1)
		itemStyle := escapeAttributeValue(galleryItemStyles.ToCSS(), "style")
		items := make([]string, 0, len(refs))
		for _, ref := range refs {
			items = append(items, fmt.Sprintf("%s<img src=\"%s\" style=\"%s\" alt=\"\" />", itemIndent, escapeAttributeValue(ref, "src"), itemStyle))
		}
		return fmt.Sprintf("%s<div class=\"gallery\"%s>\n%s\n%s</div>", indent, galleryAttrs, strings.Join(items, "\n"), indent)

	default:
		return fmt.Sprintf("%s<!-- unsupported block type %s -->", indent, escapeContent(string(b.Type)))
	}
}

func formatAttributes(id string, styles Styles) string {
	var sb strings.Builder
	if id != "" {
		sb.WriteString(fmt.Sprintf(` data-block-id="%s"`, escapeAttributeValue(id, "data-block-id")))
	}
	if css := styles.ToCSS(); css != "" {
		sb.WriteString(fmt.Sprintf(` style="%s"`, escapeAttributeValue(css, "style")))
	}
	return sb.String()
}

// escapeAttributeValue escapes attribute values for safe HTML output.
// Ampersands in http(s) src values are kept so query strings survive.
func escapeAttributeValue(value string, attributeName string) string {
	isURLAttribute := attributeName == "src" || attributeName == "href"
	if !(isURLAttribute && IsAbsoluteURL(value)) {
		value = strings.ReplaceAll(value, "&", "&amp;")
	}
	value = strings.ReplaceAll(value, "\"", "&quot;")
	value = strings.ReplaceAll(value, "'", "&#39;")
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")
	return value
}

// escapeContent escapes text content for safe HTML output
func escapeContent(content string) string {
	content = strings.ReplaceAll(content, "&", "&amp;")
	content = strings.ReplaceAll(content, "<", "&lt;")
	content = strings.ReplaceAll(content, ">", "&gt;")
	return content
}
