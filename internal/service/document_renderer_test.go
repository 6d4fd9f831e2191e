package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/internal/domain/mocks"
	"github.com/listingdeck/listingdeck/pkg/logger"
)

type stubBackend struct {
	out      []byte
	err      error
	calls    int
	settings domain.BrochureSettings
	data     domain.BrochureData
}

func (s *stubBackend) Render(_ context.Context, settings domain.BrochureSettings, data domain.BrochureData) ([]byte, error) {
	s.calls++
	s.settings = settings
	s.data = data
	return s.out, s.err
}

func TestSelectBackend(t *testing.T) {
	assert.Equal(t, domain.RenderBackendVector, SelectBackend(domain.DefaultPages()))
	assert.Equal(t, domain.RenderBackendRaster, SelectBackend(mixedSettings().Pages))

	disabledCustom := append(domain.DefaultPages(), domain.CustomPage{ID: "c", Enabled: false})
	assert.Equal(t, domain.RenderBackendVector, SelectBackend(disabledCustom))
}

func TestDocumentRenderer_Dispatch(t *testing.T) {
	t.Run("system pages only", func(t *testing.T) {
		vector := &stubBackend{out: []byte("%PDF-vector")}
		raster := &stubBackend{}
		r := &DocumentRenderer{vector: vector, raster: raster, logger: logger.NewTestLogger(t)}

		result, err := r.Render(context.Background(), domain.DefaultBrochureSettings(), sampleBrochureData())
		require.NoError(t, err)
		assert.Equal(t, domain.RenderBackendVector, result.Backend)
		assert.Equal(t, ContentTypePDF, result.ContentType)
		assert.Equal(t, []byte("%PDF-vector"), result.Data)
		assert.Equal(t, 1, vector.calls)
		assert.Equal(t, 0, raster.calls)
	})

	t.Run("one system and one custom page", func(t *testing.T) {
		vector := &stubBackend{}
		raster := &stubBackend{out: []byte("%PDF-raster")}
		r := &DocumentRenderer{vector: vector, raster: raster, logger: logger.NewTestLogger(t)}

		settings := domain.BrochureSettings{
			Theme: domain.DefaultTheme(),
			Pages: domain.PageList{
				domain.SystemPage{Type: domain.SystemPageCover, Enabled: true},
				customPage("intro"),
			},
		}
		result, err := r.Render(context.Background(), settings, sampleBrochureData())
		require.NoError(t, err)
		assert.Equal(t, domain.RenderBackendRaster, result.Backend)
		assert.Equal(t, 0, vector.calls)
		assert.Equal(t, 1, raster.calls)
	})

	t.Run("backend failure is wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		r := &DocumentRenderer{vector: &stubBackend{err: boom}, raster: &stubBackend{}, logger: logger.NewTestLogger(t)}

		_, err := r.Render(context.Background(), domain.DefaultBrochureSettings(), sampleBrochureData())
		var renderErr *domain.ErrRenderFailed
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, "vector", renderErr.Backend)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no enabled pages", func(t *testing.T) {
		vector := &stubBackend{}
		r := &DocumentRenderer{vector: vector, raster: &stubBackend{}, logger: logger.NewTestLogger(t)}

		settings := domain.BrochureSettings{Pages: domain.PageList{domain.SystemPage{Type: domain.SystemPageCover}}}
		_, err := r.Render(context.Background(), settings, sampleBrochureData())
		assert.ErrorAs(t, err, &domain.ValidationError{})
		assert.Equal(t, 0, vector.calls)
	})
}

func TestDocumentRenderer_ResolvesImagesForVector(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	urlResolver := mocks.NewMockImageURLResolver(ctrl)
	urlResolver.EXPECT().ResolveURL(gomock.Any(), "p1/a.jpg").Return("https://s3.example/p1/a.jpg", nil)
	urlResolver.EXPECT().ResolveURL(gomock.Any(), "agents/dana.jpg").Return("", errors.New("AccessDenied"))

	log := logger.NewTestLogger(t)
	images := NewImageResolver(urlResolver, nil, ImageResolverConfig{Placeholder: testPlaceholder}, log)
	vector := &stubBackend{out: []byte("%PDF")}
	r := &DocumentRenderer{vector: vector, raster: &stubBackend{}, images: images, logger: log}

	data := sampleBrochureData()
	data.Property.Images = []string{"p1/a.jpg", "https://cdn.example/b.jpg"}
	data.Agent.PhotoURL = "agents/dana.jpg"

	_, err := r.Render(context.Background(), domain.DefaultBrochureSettings(), data)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://s3.example/p1/a.jpg", "https://cdn.example/b.jpg"}, vector.data.Property.Images)
	assert.Equal(t, "https://cdn.example/logo.png", vector.data.Agency.LogoURL)
	assert.Equal(t, testPlaceholder, vector.data.Agent.PhotoURL)

	// the caller's data is left untouched
	assert.Equal(t, "p1/a.jpg", data.Property.Images[0])
	assert.Equal(t, "agents/dana.jpg", data.Agent.PhotoURL)
}
