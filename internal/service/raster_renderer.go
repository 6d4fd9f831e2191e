package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/asaskevich/govalidator"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/rasterpdf"
	"github.com/listingdeck/listingdeck/pkg/tracing"
)

// PageWidthPx is the width of an A4 page at 96 dpi
const PageWidthPx = 794

// RasterRenderer binds custom pages, composes them into one HTML document
// and prints it through a headless browser
type RasterRenderer struct {
	engine rasterpdf.Engine
	images *ImageResolver
	liquid *blocktree.SecureLiquidEngine
	logger logger.Logger
}

func NewRasterRenderer(engine rasterpdf.Engine, images *ImageResolver, liquid *blocktree.SecureLiquidEngine, logger logger.Logger) *RasterRenderer {
	if liquid == nil {
		liquid = blocktree.NewSecureLiquidEngine()
	}
	return &RasterRenderer{
		engine: engine,
		images: images,
		liquid: liquid,
		logger: logger,
	}
}

// Render prints every enabled custom page. System pages are not rendered.
func (r *RasterRenderer) Render(ctx context.Context, settings domain.BrochureSettings, data domain.BrochureData) ([]byte, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "RasterRenderer", "Render")
	defer tracing.EndSpan(span, nil)

	html, err := r.ComposeSettings(ctx, settings, data)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	if r.engine == nil {
		return nil, fmt.Errorf("no headless browser configured")
	}
	pdf, err := tracing.TraceMethodWithResult(ctx, "RasterEngine", "PrintHTML", func(ctx context.Context) ([]byte, error) {
		return r.engine.PrintHTML(ctx, html)
	})
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	return pdf, nil
}

// ComposeSettings renders the enabled custom pages of settings as one document
func (r *RasterRenderer) ComposeSettings(ctx context.Context, settings domain.BrochureSettings, data domain.BrochureData) (string, error) {
	dc, err := blocktree.NewDataContext(data.DataContextMap())
	if err != nil {
		return "", fmt.Errorf("failed to build data context: %w", err)
	}

	var bodies []string
	skipped := 0
	for _, p := range settings.Pages.EnabledPages() {
		page, ok := p.(domain.CustomPage)
		if !ok {
			skipped++
			continue
		}
		tree, err := page.Tree()
		if err != nil {
			return "", fmt.Errorf("custom page %s: %w", page.ID, err)
		}
		body, err := r.RenderTree(ctx, tree, dc)
		if err != nil {
			return "", fmt.Errorf("custom page %s: %w", page.ID, err)
		}
		bodies = append(bodies, body)
	}
	if skipped > 0 {
		r.logger.WithField("skipped_pages", skipped).Debug("System pages are not rendered with custom pages")
	}

	return r.ComposeDocument(documentTitle(data), settings.Theme, bodies)
}

// RenderTree binds one page tree, resolves its images and returns its body HTML
func (r *RasterRenderer) RenderTree(ctx context.Context, tree *blocktree.Tree, dc *blocktree.DataContext) (string, error) {
	bound, err := blocktree.Bind(ctx, tree, dc, blocktree.BindOptions{Liquid: r.liquid, Logger: r.logger})
	if err != nil {
		return "", fmt.Errorf("failed to bind data: %w", err)
	}
	if r.images != nil {
		bound = r.images.RewriteTree(ctx, bound)
	}
	return blocktree.RenderBody(bound.Blocks()), nil
}

// ComposeDocument places each page body in its own section of a fixed width
// container, separated by page breaks
func (r *RasterRenderer) ComposeDocument(title string, theme domain.ThemeConfig, bodies []string) (string, error) {
	skeleton := blocktree.RenderDocumentWithOptions(nil, blocktree.HTMLOptions{
		Title:    title,
		ExtraCSS: ThemeCSS(theme),
	})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(skeleton))
	if err != nil {
		return "", fmt.Errorf("failed to parse document skeleton: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="brochure" style="width: %dpx; margin: 0 auto;">`, PageWidthPx)
	for i, body := range bodies {
		if i > 0 {
			sb.WriteString(`<div class="page-break"></div>`)
		}
		fmt.Fprintf(&sb, `<section class="brochure-page" data-page="%d">%s</section>`, i+1, body)
	}
	sb.WriteString(`</div>`)

	doc.Find("body").AppendHtml(sb.String())

	html, err := goquery.OuterHtml(doc.Find("html"))
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	return "<!DOCTYPE html>\n" + html, nil
}

// ThemeCSS maps the theme onto the exported document. Values that are not
// plain colors or font names are replaced by the defaults.
func ThemeCSS(theme domain.ThemeConfig) string {
	def := domain.DefaultTheme()
	color := func(v, fallback string) string {
		if govalidator.IsHexcolor(v) && strings.HasPrefix(v, "#") {
			return v
		}
		return fallback
	}
	font := func(v, fallback string) string {
		v = strings.TrimSpace(v)
		if v == "" || strings.ContainsAny(v, ";{}<>\"'\\") {
			return fallback
		}
		return v
	}

	radius := theme.Shapes.CornerRadius
	if radius < 0 || radius > 64 {
		radius = def.Shapes.CornerRadius
	}

	return fmt.Sprintf(`body { font-family: '%s', Helvetica, Arial, sans-serif; color: %s; background: %s; }
h1, h2, h3, h4 { font-family: '%s', Helvetica, Arial, sans-serif; color: %s; }
a, button { color: %s; }
.brochure-page { position: relative; overflow: hidden; }
.brochure-page img, .brochure-page button { border-radius: %dpx; }`,
		font(theme.Fonts.Body, def.Fonts.Body),
		color(theme.Colors.Text, def.Colors.Text),
		color(theme.Colors.Background, def.Colors.Background),
		font(theme.Fonts.Heading, def.Fonts.Heading),
		color(theme.Colors.Primary, def.Colors.Primary),
		color(theme.Colors.Accent, def.Colors.Accent),
		radius,
	)
}

func documentTitle(data domain.BrochureData) string {
	if data.Property != nil && data.Property.Title != "" {
		return data.Property.Title
	}
	return "Brochure"
}
