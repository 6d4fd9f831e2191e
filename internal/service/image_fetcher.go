package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/listingdeck/listingdeck/pkg/tracing"
)

const maxImageBytes = 15 << 20

// ImageFetcher downloads image bytes for the vector backend
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher fetches images over a traced HTTP client
type HTTPImageFetcher struct {
	client *http.Client
}

func NewHTTPImageFetcher(client *http.Client) *HTTPImageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPImageFetcher{client: tracing.WrapHTTPClient(client)}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

// pdfImage is an image ready to be registered with the PDF writer
type pdfImage struct {
	data   []byte
	kind   string // gofpdf image type: JPG or PNG
	width  int
	height int
}

// preparePDFImage checks that data decodes. JPEGs pass through; PNG and GIF
// are re-encoded as plain non-interlaced PNG, which the PDF writer accepts.
func preparePDFImage(data []byte) (*pdfImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}

	switch format {
	case "jpeg":
		return &pdfImage{data: data, kind: "JPG", width: cfg.Width, height: cfg.Height}, nil
	case "png", "gif":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", format, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to re-encode %s: %w", format, err)
		}
		return &pdfImage{data: buf.Bytes(), kind: "PNG", width: cfg.Width, height: cfg.Height}, nil
	default:
		return nil, fmt.Errorf("unsupported image format %s", format)
	}
}
