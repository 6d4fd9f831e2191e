package service

import (
	"context"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/tracing"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// RenderResult is the output of one document render
type RenderResult struct {
	Backend     domain.RenderBackend
	ContentType string
	Data        []byte
}

// SelectBackend picks the backend for the whole document: any enabled custom
// page sends everything through the raster backend.
func SelectBackend(pages domain.PageList) domain.RenderBackend {
	if pages.HasEnabledCustomPage() {
		return domain.RenderBackendRaster
	}
	return domain.RenderBackendVector
}

type documentBackend interface {
	Render(ctx context.Context, settings domain.BrochureSettings, data domain.BrochureData) ([]byte, error)
}

// DocumentRenderer dispatches a brochure to the vector or raster backend
type DocumentRenderer struct {
	vector documentBackend
	raster documentBackend
	images *ImageResolver
	logger logger.Logger
}

func NewDocumentRenderer(vector *VectorRenderer, raster *RasterRenderer, images *ImageResolver, logger logger.Logger) *DocumentRenderer {
	return &DocumentRenderer{
		vector: vector,
		raster: raster,
		images: images,
		logger: logger,
	}
}

// Render produces the PDF of a brochure. Backend errors are wrapped in
// domain.ErrRenderFailed.
func (r *DocumentRenderer) Render(ctx context.Context, settings domain.BrochureSettings, data domain.BrochureData) (*RenderResult, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "DocumentRenderer", "Render")
	defer tracing.EndSpan(span, nil)

	if len(settings.Pages.EnabledPages()) == 0 {
		return nil, domain.NewValidationError("brochure has no enabled pages")
	}

	backend := SelectBackend(settings.Pages)
	tracing.AddAttribute(ctx, "backend", string(backend))

	var (
		out []byte
		err error
	)
	switch backend {
	case domain.RenderBackendRaster:
		out, err = r.raster.Render(ctx, settings, data)
	default:
		out, err = r.vector.Render(ctx, settings, r.withResolvedImages(ctx, data))
	}
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, &domain.ErrRenderFailed{Backend: string(backend), Err: err}
	}

	return &RenderResult{
		Backend:     backend,
		ContentType: ContentTypePDF,
		Data:        out,
	}, nil
}

// withResolvedImages returns a copy of data whose image references are
// fetchable URLs
func (r *DocumentRenderer) withResolvedImages(ctx context.Context, data domain.BrochureData) domain.BrochureData {
	if r.images == nil {
		return data
	}

	var refs []string
	if data.Property != nil {
		refs = append(refs, data.Property.Images...)
	}
	if data.Agency != nil && data.Agency.LogoURL != "" {
		refs = append(refs, data.Agency.LogoURL)
	}
	if data.Agent != nil && data.Agent.PhotoURL != "" {
		refs = append(refs, data.Agent.PhotoURL)
	}
	if len(refs) == 0 {
		return data
	}

	resolved := r.images.ResolveAll(ctx, refs)
	lookup := func(ref string) string {
		if url, ok := resolved[ref]; ok && url != "" {
			return url
		}
		return ref
	}

	out := data
	if data.Property != nil {
		p := *data.Property
		p.Images = make([]string, len(data.Property.Images))
		for i, ref := range data.Property.Images {
			p.Images[i] = lookup(ref)
		}
		out.Property = &p
	}
	if data.Agency != nil && data.Agency.LogoURL != "" {
		a := *data.Agency
		a.LogoURL = lookup(a.LogoURL)
		out.Agency = &a
	}
	if data.Agent != nil && data.Agent.PhotoURL != "" {
		ag := *data.Agent
		ag.PhotoURL = lookup(ag.PhotoURL)
		out.Agent = &ag
	}
	return out
}
