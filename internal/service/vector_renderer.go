package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/tracing"
)

const (
	galleryMaxImages = 5
	featureColumns   = 3
	pageMargin       = 40.0
	footerHeight     = 28.0
)

// silverMapStyle is the "silver" static map style
var silverMapStyle = []string{
	"element:geometry|color:0xf5f5f5",
	"element:labels.icon|visibility:off",
	"element:labels.text.fill|color:0x616161",
	"element:labels.text.stroke|color:0xf5f5f5",
	"feature:administrative.land_parcel|element:labels.text.fill|color:0xbdbdbd",
	"feature:poi|element:geometry|color:0xeeeeee",
	"feature:road|element:geometry|color:0xffffff",
	"feature:road.highway|element:geometry|color:0xdadada",
	"feature:water|element:geometry|color:0xc9c9c9",
	"feature:water|element:labels.text.fill|color:0x9e9e9e",
}

// GalleryItemStyle is the box of one gallery image. MarginRightPercent is
// the gap to the next image in the row, so every row fills the full width.
type GalleryItemStyle struct {
	WidthPercent       float64
	Height             float64
	MarginRight        bool
	MarginRightPercent float64
}

// galleryRowGapPercent separates gallery rows vertically
const galleryRowGapPercent = 4

// GalleryItemLayout returns the box for the image at index. Images past the
// fifth are not rendered.
func GalleryItemLayout(index int) (GalleryItemStyle, bool) {
	switch index {
	case 0:
		return GalleryItemStyle{WidthPercent: 100, Height: 250}, true
	case 1:
		return GalleryItemStyle{WidthPercent: 48, Height: 180, MarginRight: true, MarginRightPercent: 100 - 48 - 48}, true
	case 2:
		return GalleryItemStyle{WidthPercent: 48, Height: 180}, true
	case 3:
		return GalleryItemStyle{WidthPercent: 63, Height: 180, MarginRight: true, MarginRightPercent: 100 - 63 - 35}, true
	case 4:
		return GalleryItemStyle{WidthPercent: 35, Height: 180}, true
	default:
		return GalleryItemStyle{}, false
	}
}

// StaticMapURL builds a static map request centred on the coordinates
func StaticMapURL(endpoint, key string, lat, lng float64) string {
	if endpoint == "" {
		return ""
	}
	center := strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lng, 'f', 6, 64)

	q := url.Values{}
	q.Set("center", center)
	q.Set("zoom", "15")
	q.Set("size", "640x400")
	q.Set("scale", "2")
	q.Set("markers", "color:red|"+center)
	for _, s := range silverMapStyle {
		q.Add("style", s)
	}
	if key != "" {
		q.Set("key", key)
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + q.Encode()
}

// VectorOptions configures the vector backend
type VectorOptions struct {
	Concurrency  int
	Currency     string
	StaticMapURL string
	StaticMapKey string
}

// VectorRenderer draws system pages into an A4 PDF
type VectorRenderer struct {
	fetcher  ImageFetcher
	options  VectorOptions
	logger   logger.Logger
	compress bool
}

func NewVectorRenderer(fetcher ImageFetcher, options VectorOptions, logger logger.Logger) *VectorRenderer {
	if options.Concurrency <= 0 {
		options.Concurrency = 8
	}
	if options.Currency == "" {
		options.Currency = "€"
	}
	return &VectorRenderer{
		fetcher:  fetcher,
		options:  options,
		logger:   logger,
		compress: true,
	}
}

// Render draws every enabled supported system page in order. Image URLs in
// data must already be resolved.
func (r *VectorRenderer) Render(ctx context.Context, settings domain.BrochureSettings, data domain.BrochureData) ([]byte, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "VectorRenderer", "Render")
	defer tracing.EndSpan(span, nil)

	var pages []domain.SystemPage
	for _, p := range settings.Pages.EnabledPages() {
		sp, ok := p.(domain.SystemPage)
		if !ok {
			continue
		}
		if !sp.Type.IsSupported() {
			r.logger.WithField("page_type", string(sp.Type)).Debug("Skipping unsupported system page")
			continue
		}
		pages = append(pages, sp)
	}
	tracing.AddAttribute(ctx, "pages", len(pages))

	mapURL := ""
	if data.Property != nil && data.Property.HasCoordinates() {
		mapURL = StaticMapURL(r.options.StaticMapURL, r.options.StaticMapKey, *data.Property.Latitude, *data.Property.Longitude)
	}

	images := r.fetchAll(ctx, r.imageURLs(pages, data, mapURL))

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AliasNbPages("")
	if data.Property != nil {
		pdf.SetTitle(data.Property.Title, true)
	}
	if data.Agency != nil {
		pdf.SetAuthor(data.Agency.Name, true)
	}
	pdf.SetCreator("ListingDeck", false)

	doc := &vectorDocument{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		theme:    settings.Theme,
		data:     data,
		currency: r.options.Currency,
		mapURL:   mapURL,
		images:   map[string]*gofpdf.ImageInfoType{},
		logger:   r.logger,
	}
	doc.headingFont = coreFont(settings.Theme.Fonts.Heading)
	doc.bodyFont = coreFont(settings.Theme.Fonts.Body)
	doc.registerImages(images)
	pdf.SetFooterFunc(doc.footer)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			tracing.MarkSpanError(ctx, err)
			return nil, err
		}
		pdf.AddPage()
		doc.current = page
		doc.drawBackground(page.Type)
		switch page.Type {
		case domain.SystemPageCover:
			doc.cover()
		case domain.SystemPageDescription:
			doc.description(page)
		case domain.SystemPageFeatures:
			doc.features(page)
		case domain.SystemPageGallery:
			doc.gallery(page)
		case domain.SystemPageMap:
			doc.location(page)
		case domain.SystemPageContact:
			doc.contact(page)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *VectorRenderer) imageURLs(pages []domain.SystemPage, data domain.BrochureData, mapURL string) []string {
	var urls []string
	if p := data.Property; p != nil {
		n := len(p.Images)
		if n > galleryMaxImages {
			n = galleryMaxImages
		}
		urls = append(urls, p.Images[:n]...)
	}
	if data.Agency != nil && data.Agency.LogoURL != "" {
		urls = append(urls, data.Agency.LogoURL)
	}
	if data.Agent != nil && data.Agent.PhotoURL != "" {
		urls = append(urls, data.Agent.PhotoURL)
	}
	for _, p := range pages {
		if p.Type == domain.SystemPageMap && mapURL != "" {
			urls = append(urls, mapURL)
		}
	}
	return urls
}

// fetchAll downloads images concurrently. Failed images are logged and
// left out; their boxes are drawn as placeholders.
func (r *VectorRenderer) fetchAll(ctx context.Context, urls []string) map[string]*pdfImage {
	unique := make([]string, 0, len(urls))
	seen := map[string]bool{}
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}

	results := make([]*pdfImage, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.options.Concurrency)
	for i, u := range unique {
		g.Go(func() error {
			img, err := tracing.TraceMethodWithResult(gctx, "VectorRenderer", "FetchImage", func(ctx context.Context) (*pdfImage, error) {
				data, err := r.fetcher.Fetch(ctx, u)
				if err != nil {
					return nil, err
				}
				return preparePDFImage(data)
			})
			results[i] = img
			if err != nil {
				r.logger.WithFields(map[string]interface{}{
					"image": u,
					"error": err.Error(),
				}).Warn("Image could not be loaded, drawing placeholder")
			}
			return nil
		})
	}
	_ = g.Wait()

	images := make(map[string]*pdfImage, len(unique))
	for i, u := range unique {
		if results[i] != nil {
			images[u] = results[i]
		}
	}
	return images
}

type vectorDocument struct {
	pdf         *gofpdf.Fpdf
	tr          func(string) string
	theme       domain.ThemeConfig
	data        domain.BrochureData
	current     domain.SystemPage
	currency    string
	mapURL      string
	headingFont string
	bodyFont    string
	images      map[string]*gofpdf.ImageInfoType
	logger      logger.Logger
}

func (d *vectorDocument) registerImages(images map[string]*pdfImage) {
	for name, img := range images {
		info := d.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: img.kind}, bytes.NewReader(img.data))
		if d.pdf.Err() {
			d.logger.WithFields(map[string]interface{}{
				"image": name,
				"error": d.pdf.Error().Error(),
			}).Warn("Image rejected by PDF writer, drawing placeholder")
			d.pdf.ClearError()
			continue
		}
		d.images[name] = info
	}
}

func (d *vectorDocument) agencyName() string {
	if d.data.Agency == nil {
		return ""
	}
	return d.data.Agency.Name
}

func (d *vectorDocument) property() *domain.Property {
	if d.data.Property == nil {
		return &domain.Property{}
	}
	return d.data.Property
}

func (d *vectorDocument) footer() {
	switch d.current.Type {
	case domain.SystemPageCover, domain.SystemPageContact:
		return
	}
	w, h := d.pdf.GetPageSize()
	y := h - footerHeight - 6

	d.setDraw(d.theme.Colors.Primary, 26, 54, 93)
	d.pdf.SetLineWidth(0.5)
	d.pdf.Line(pageMargin, y, w-pageMargin, y)

	d.pdf.SetFont(d.bodyFont, "", 9)
	d.setText(d.theme.Colors.Text, 26, 32, 44)
	d.pdf.SetXY(pageMargin, y+6)
	d.pdf.CellFormat((w-2*pageMargin)/2, 14, d.tr(d.agencyName()), "", 0, "L", false, 0, "")
	d.pdf.CellFormat((w-2*pageMargin)/2, 14, fmt.Sprintf("%d / {nb}", d.pdf.PageNo()), "", 0, "R", false, 0, "")
}

func (d *vectorDocument) drawBackground(t domain.SystemPageType) {
	if t == domain.SystemPageCover {
		return
	}
	w, h := d.pdf.GetPageSize()
	br, bg, bb := hexToRGB(d.theme.Colors.Background, 255, 255, 255)

	switch d.theme.Background.Style {
	case "gradient":
		pr, pg, pb := hexToRGB(d.theme.Colors.Primary, 26, 54, 93)
		d.pdf.LinearGradient(0, 0, w, h, br, bg, bb, mix(br, pr, 0.12), mix(bg, pg, 0.12), mix(bb, pb, 0.12), 0, 0, 0, 1)
	case "pattern":
		d.pdf.SetFillColor(br, bg, bb)
		d.pdf.Rect(0, 0, w, h, "F")
		d.setFill(d.theme.Colors.Primary, 26, 54, 93)
		d.pdf.SetAlpha(0.06, "Normal")
		for x := 12.0; x < w; x += 24 {
			for y := 12.0; y < h; y += 24 {
				d.pdf.Circle(x, y, 1.2, "F")
			}
		}
		d.pdf.SetAlpha(1, "Normal")
	default:
		d.pdf.SetFillColor(br, bg, bb)
		d.pdf.Rect(0, 0, w, h, "F")
	}
}

func (d *vectorDocument) heading(page domain.SystemPage, fallback string) float64 {
	title := fallback
	if page.Title != nil && strings.TrimSpace(*page.Title) != "" {
		title = *page.Title
	}
	w, _ := d.pdf.GetPageSize()
	d.pdf.SetFont(d.headingFont, "B", 24)
	d.setText(d.theme.Colors.Primary, 26, 54, 93)
	d.pdf.SetXY(pageMargin, pageMargin)
	d.pdf.CellFormat(w-2*pageMargin, 30, d.tr(title), "", 1, "L", false, 0, "")

	d.setFill(d.theme.Colors.Accent, 201, 162, 39)
	d.pdf.Rect(pageMargin, pageMargin+34, 48, 3, "F")
	return pageMargin + 52
}

func (d *vectorDocument) cover() {
	w, h := d.pdf.GetPageSize()
	p := d.property()

	cover := ""
	if len(p.Images) > 0 {
		cover = p.Images[0]
	}
	d.imageCover(cover, 0, 0, w, h)

	d.pdf.SetFillColor(0, 0, 0)
	d.pdf.SetAlpha(0.55, "Normal")
	d.pdf.Rect(0, h*0.55, w, h*0.45, "F")
	d.pdf.SetAlpha(1, "Normal")

	y := h * 0.62
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetFont(d.headingFont, "B", 32)
	d.pdf.SetXY(pageMargin, y)
	d.pdf.MultiCell(w-2*pageMargin, 36, d.tr(p.Title), "", "L", false)

	d.pdf.SetFont(d.bodyFont, "", 14)
	d.pdf.SetX(pageMargin)
	d.pdf.MultiCell(w-2*pageMargin, 20, d.tr(p.Address), "", "L", false)

	d.pdf.Ln(8)
	d.setText(d.theme.Colors.Accent, 201, 162, 39)
	d.pdf.SetFont(d.headingFont, "B", 22)
	d.pdf.SetX(pageMargin)
	d.pdf.CellFormat(w-2*pageMargin, 26, d.tr(formatPrice(p.Price, d.currency)), "", 1, "L", false, 0, "")

	if d.data.Agency != nil && d.data.Agency.LogoURL != "" {
		d.pdf.SetFillColor(255, 255, 255)
		d.pdf.Rect(pageMargin, pageMargin, 130, 64, "F")
		d.imageContain(d.data.Agency.LogoURL, pageMargin+8, pageMargin+8, 114, 48)
	}
}

func (d *vectorDocument) description(page domain.SystemPage) {
	w, h := d.pdf.GetPageSize()
	p := d.property()
	y := d.heading(page, "About this property")
	contentW := w - 2*pageMargin

	glanceH := 150.0
	textBottom := h - footerHeight - glanceH - 40

	d.pdf.SetFont(d.bodyFont, "", 11)
	d.setText(d.theme.Colors.Text, 26, 32, 44)
	lineH := 16.0
	maxLines := int((textBottom - y) / lineH)
	lines := d.pdf.SplitLines([]byte(d.tr(p.Description)), contentW)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	for _, line := range lines {
		d.pdf.SetXY(pageMargin, y)
		d.pdf.CellFormat(contentW, lineH, string(line), "", 0, "L", false, 0, "")
		y += lineH
	}

	boxY := textBottom + 16
	d.card(pageMargin, boxY, contentW, glanceH-16)
	d.pdf.SetFont(d.headingFont, "B", 13)
	d.setText(d.theme.Colors.Primary, 26, 54, 93)
	d.pdf.SetXY(pageMargin+16, boxY+12)
	d.pdf.CellFormat(contentW-32, 18, d.tr("At a glance"), "", 0, "L", false, 0, "")

	fields := []struct{ label, value string }{
		{"Build year", formatOptionalInt(p.BuildYear)},
		{"Lot size", formatOptionalArea(p.LotSize)},
		{"Internal area", formatOptionalArea(p.InternalArea)},
		{"Bedrooms", formatOptionalInt(p.Bedrooms)},
		{"Bathrooms", formatOptionalInt(p.Bathrooms)},
	}
	colW := (contentW - 32) / float64(len(fields))
	for i, f := range fields {
		x := pageMargin + 16 + float64(i)*colW
		d.pdf.SetFont(d.bodyFont, "", 9)
		d.setText(d.theme.Colors.Secondary, 45, 55, 72)
		d.pdf.SetXY(x, boxY+50)
		d.pdf.CellFormat(colW, 14, d.tr(f.label), "", 0, "L", false, 0, "")
		d.pdf.SetFont(d.headingFont, "B", 14)
		d.setText(d.theme.Colors.Text, 26, 32, 44)
		d.pdf.SetXY(x, boxY+68)
		d.pdf.CellFormat(colW, 20, d.tr(f.value), "", 0, "L", false, 0, "")
	}
}

func (d *vectorDocument) features(page domain.SystemPage) {
	w, h := d.pdf.GetPageSize()
	p := d.property()
	y := d.heading(page, "Features")

	type entry struct{ label, value string }
	var entries []entry
	if p.BuildYear != nil {
		entries = append(entries, entry{"Build year", formatOptionalInt(p.BuildYear)})
	}
	if p.Bedrooms != nil {
		entries = append(entries, entry{"Bedrooms", formatOptionalInt(p.Bedrooms)})
	}
	if p.Bathrooms != nil {
		entries = append(entries, entry{"Bathrooms", formatOptionalInt(p.Bathrooms)})
	}
	if p.LivingArea != nil {
		entries = append(entries, entry{"Living area", formatOptionalArea(p.LivingArea)})
	}
	if p.LotSize != nil {
		entries = append(entries, entry{"Lot size", formatOptionalArea(p.LotSize)})
	}
	for _, f := range p.Features {
		if strings.TrimSpace(f.Label) == "" {
			continue
		}
		entries = append(entries, entry{f.Label, f.Value})
	}

	gutter := 12.0
	contentW := w - 2*pageMargin
	cardW := (contentW - gutter*(featureColumns-1)) / featureColumns
	cardH := 64.0
	bottom := h - footerHeight - 20

	for i, e := range entries {
		row, col := i/featureColumns, i%featureColumns
		x := pageMargin + float64(col)*(cardW+gutter)
		cy := y + float64(row)*(cardH+gutter)
		if cy+cardH > bottom {
			d.logger.WithField("dropped", len(entries)-i).Debug("Feature grid is full")
			break
		}
		d.card(x, cy, cardW, cardH)

		d.pdf.SetFont(d.bodyFont, "", 9)
		d.setText(d.theme.Colors.Secondary, 45, 55, 72)
		d.pdf.SetXY(x+12, cy+12)
		d.pdf.CellFormat(cardW-24, 14, d.tr(e.label), "", 0, "L", false, 0, "")

		d.pdf.SetFont(d.headingFont, "B", 13)
		d.setText(d.theme.Colors.Text, 26, 32, 44)
		d.pdf.SetXY(x+12, cy+32)
		d.pdf.CellFormat(cardW-24, 18, d.tr(e.value), "", 0, "L", false, 0, "")
	}
}

// galleryBox is the placed rectangle of one gallery image, in points
type galleryBox struct {
	X, Y, W, H float64
}

// galleryBoxes places up to five images inside the content area starting at
// (left, top)
func galleryBoxes(count int, left, top, contentW float64) []galleryBox {
	var boxes []galleryBox
	x, y := left, top
	for i := 0; i < count; i++ {
		layout, ok := GalleryItemLayout(i)
		if !ok {
			break
		}
		boxW := contentW * layout.WidthPercent / 100
		boxes = append(boxes, galleryBox{X: x, Y: y, W: boxW, H: layout.Height})
		if layout.MarginRight {
			x += boxW + contentW*layout.MarginRightPercent/100
			continue
		}
		x = left
		y += layout.Height + contentW*galleryRowGapPercent/100
	}
	return boxes
}

func (d *vectorDocument) gallery(page domain.SystemPage) {
	w, _ := d.pdf.GetPageSize()
	p := d.property()
	y := d.heading(page, "Gallery")
	contentW := w - 2*pageMargin

	for i, box := range galleryBoxes(len(p.Images), pageMargin, y, contentW) {
		d.imageCover(p.Images[i], box.X, box.Y, box.W, box.H)
	}
}

func (d *vectorDocument) location(page domain.SystemPage) {
	w, _ := d.pdf.GetPageSize()
	p := d.property()
	y := d.heading(page, "Location")
	contentW := w - 2*pageMargin
	mapH := contentW * 400 / 640

	if d.mapURL == "" {
		d.placeholder(pageMargin, y, contentW, mapH, "Map unavailable: no coordinates for this property")
	} else {
		d.imageCover(d.mapURL, pageMargin, y, contentW, mapH)
	}

	d.pdf.SetFont(d.bodyFont, "", 12)
	d.setText(d.theme.Colors.Text, 26, 32, 44)
	d.pdf.SetXY(pageMargin, y+mapH+16)
	d.pdf.MultiCell(contentW, 18, d.tr(p.Address), "", "L", false)
}

func (d *vectorDocument) contact(page domain.SystemPage) {
	w, h := d.pdf.GetPageSize()
	p := d.property()
	leftW := w * 0.6

	lifestyle := ""
	switch {
	case len(p.Images) > 1:
		lifestyle = p.Images[1]
	case len(p.Images) == 1:
		lifestyle = p.Images[0]
	}
	d.imageCover(lifestyle, 0, 0, leftW, h)

	d.setFill(d.theme.Colors.Secondary, 45, 55, 72)
	d.pdf.Rect(leftW, 0, w-leftW, h, "F")

	x := leftW + 28
	panelW := w - leftW - 56
	y := 80.0

	title := "Contact"
	if page.Title != nil && strings.TrimSpace(*page.Title) != "" {
		title = *page.Title
	}
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetFont(d.headingFont, "B", 22)
	d.pdf.SetXY(x, y)
	d.pdf.MultiCell(panelW, 26, d.tr(title), "", "L", false)
	d.setFill(d.theme.Colors.Accent, 201, 162, 39)
	d.pdf.Rect(x, d.pdf.GetY()+6, 40, 3, "F")
	y = d.pdf.GetY() + 30

	if ag := d.data.Agent; ag != nil {
		if ag.PhotoURL != "" {
			d.imageCover(ag.PhotoURL, x, y, 72, 72)
			y += 84
		}
		y = d.contactBlock(x, y, panelW, ag.Name, ag.Phone, ag.Email)
		y += 24
	}

	if a := d.data.Agency; a != nil {
		y = d.contactBlock(x, y, panelW, a.Name, a.Phone, a.Email, a.Website, a.Address)
		if a.LogoURL != "" && y+60 < h-40 {
			d.pdf.SetFillColor(255, 255, 255)
			d.pdf.Rect(x, h-100, 120, 56, "F")
			d.imageContain(a.LogoURL, x+8, h-92, 104, 40)
		}
	}
}

func (d *vectorDocument) contactBlock(x, y, w float64, name string, lines ...string) float64 {
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetFont(d.headingFont, "B", 13)
	d.pdf.SetXY(x, y)
	d.pdf.MultiCell(w, 18, d.tr(name), "", "L", false)

	d.pdf.SetFont(d.bodyFont, "", 10)
	d.pdf.SetTextColor(226, 232, 240)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		d.pdf.SetX(x)
		d.pdf.MultiCell(w, 15, d.tr(line), "", "L", false)
	}
	return d.pdf.GetY()
}

// card draws a card box in the theme's card style
func (d *vectorDocument) card(x, y, w, h float64) {
	radius := math.Min(float64(d.theme.Shapes.CornerRadius), h/2)
	style := "F"
	switch d.theme.Shapes.CardStyle {
	case "elevated":
		d.pdf.SetFillColor(0, 0, 0)
		d.pdf.SetAlpha(0.08, "Normal")
		d.roundedRect(x+2, y+3, w, h, radius, "F")
		d.pdf.SetAlpha(1, "Normal")
		d.pdf.SetFillColor(255, 255, 255)
	case "bordered":
		d.pdf.SetFillColor(255, 255, 255)
		d.setDraw(d.theme.Colors.Primary, 26, 54, 93)
		d.pdf.SetLineWidth(0.8)
		style = "FD"
	default:
		d.pdf.SetFillColor(241, 245, 249)
	}
	d.roundedRect(x, y, w, h, radius, style)
}

func (d *vectorDocument) roundedRect(x, y, w, h, r float64, style string) {
	if r <= 0 {
		d.pdf.Rect(x, y, w, h, style)
		return
	}
	d.pdf.RoundedRect(x, y, w, h, r, "1234", style)
}

// imageCover fills the box with the image, cropping the overflow
func (d *vectorDocument) imageCover(name string, x, y, w, h float64) {
	info, ok := d.images[name]
	if !ok || name == "" {
		d.placeholder(x, y, w, h, "Image unavailable")
		return
	}
	iw, ih := info.Width(), info.Height()
	scale := math.Max(w/iw, h/ih)
	dw, dh := iw*scale, ih*scale

	d.pdf.ClipRect(x, y, w, h, false)
	d.pdf.ImageOptions(name, x+(w-dw)/2, y+(h-dh)/2, dw, dh, false, gofpdf.ImageOptions{AllowNegativePosition: true}, 0, "")
	d.pdf.ClipEnd()
}

// imageContain fits the whole image inside the box
func (d *vectorDocument) imageContain(name string, x, y, w, h float64) {
	info, ok := d.images[name]
	if !ok {
		return
	}
	iw, ih := info.Width(), info.Height()
	scale := math.Min(w/iw, h/ih)
	dw, dh := iw*scale, ih*scale
	d.pdf.ImageOptions(name, x+(w-dw)/2, y+(h-dh)/2, dw, dh, false, gofpdf.ImageOptions{}, 0, "")
}

func (d *vectorDocument) placeholder(x, y, w, h float64, label string) {
	d.pdf.SetFillColor(226, 232, 240)
	d.pdf.Rect(x, y, w, h, "F")
	d.pdf.SetFont(d.bodyFont, "I", 10)
	d.pdf.SetTextColor(113, 128, 150)
	d.pdf.SetXY(x, y+h/2-7)
	d.pdf.CellFormat(w, 14, d.tr(label), "", 0, "C", false, 0, "")
}

func (d *vectorDocument) setFill(hex string, r, g, b int) {
	d.pdf.SetFillColor(hexToRGB(hex, r, g, b))
}

func (d *vectorDocument) setText(hex string, r, g, b int) {
	d.pdf.SetTextColor(hexToRGB(hex, r, g, b))
}

func (d *vectorDocument) setDraw(hex string, r, g, b int) {
	d.pdf.SetDrawColor(hexToRGB(hex, r, g, b))
}

// hexToRGB parses #rgb or #rrggbb, returning the fallback when it cannot
func hexToRGB(hex string, r, g, b int) (int, int, int) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return r, g, b
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return r, g, b
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func mix(a, b int, weight float64) int {
	return int(math.Round(float64(a)*(1-weight) + float64(b)*weight))
}

// coreFont maps a theme font family onto a standard PDF font
func coreFont(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"), strings.Contains(f, "garamond"),
		strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "Times"
	default:
		return "Helvetica"
	}
}

var numberPrinter = message.NewPrinter(language.English)

func formatPrice(price float64, currency string) string {
	if price <= 0 {
		return "Price on request"
	}
	return numberPrinter.Sprintf("%s %d", currency, int64(math.Round(price)))
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatOptionalArea(v *float64) string {
	if v == nil {
		return "-"
	}
	return numberPrinter.Sprintf("%d m²", int64(math.Round(*v)))
}
