// Package rasterpdf prints standalone HTML documents to PDF in a headless browser.
package rasterpdf

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/metrics"
)

//go:generate mockgen -destination=../../internal/domain/mocks/mock_raster_engine.go -package=mocks github.com/listingdeck/listingdeck/pkg/rasterpdf Engine

// Engine turns an HTML document into PDF bytes
type Engine interface {
	PrintHTML(ctx context.Context, html string) ([]byte, error)
}

// Options controls the browser and the printed page. Dimensions are inches.
type Options struct {
	ChromePath      string
	PaperWidth      float64
	PaperHeight     float64
	Margin          float64
	PrintBackground bool
	// Timeout bounds a single print, on top of any deadline on the caller's context
	Timeout time.Duration
}

// DefaultOptions returns A4 with no margins, matching the 794px page container
func DefaultOptions() Options {
	return Options{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		Margin:          0,
		PrintBackground: true,
		Timeout:         60 * time.Second,
	}
}

type printFunc func(ctx context.Context, fileURL string, opts Options) ([]byte, error)

// ChromeEngine drives a local Chrome or Chromium through chromedp
type ChromeEngine struct {
	opts   Options
	logger logger.Logger
	print  printFunc
}

// NewChromeEngine creates an engine. An empty ChromePath falls back to $CHROME_PATH, then to chromedp's lookup.
func NewChromeEngine(opts Options, log logger.Logger) *ChromeEngine {
	if opts.ChromePath == "" {
		opts.ChromePath = os.Getenv("CHROME_PATH")
	}
	if opts.PaperWidth == 0 || opts.PaperHeight == 0 {
		opts.PaperWidth, opts.PaperHeight = DefaultOptions().PaperWidth, DefaultOptions().PaperHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &ChromeEngine{opts: opts, logger: log, print: printToPDF}
}

// RenderContext is one browser session scoped to a single print
type RenderContext struct {
	ctx     context.Context
	cancels []context.CancelFunc
	once    sync.Once
}

// Context is the browser context actions must run on
func (rc *RenderContext) Context() context.Context {
	return rc.ctx
}

// Release tears the browser down. Safe to call more than once.
func (rc *RenderContext) Release() {
	rc.once.Do(func() {
		for i := len(rc.cancels) - 1; i >= 0; i-- {
			rc.cancels[i]()
		}
		metrics.RenderContextsActive.Dec()
	})
}

// Acquire allocates a browser session. Chrome itself starts lazily on the first action.
func (e *ChromeEngine) Acquire(ctx context.Context) *RenderContext {
	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, e.opts.Timeout)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WSURLReadTimeout(30*time.Second),
	)
	if e.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(e.opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(timeoutCtx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			e.logger.Debug(fmt.Sprintf("chromedp: "+format, args...))
		}),
	)

	metrics.RenderContextsActive.Inc()
	return &RenderContext{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelTimeout, cancelAlloc, cancelBrowser},
	}
}

// PrintHTML writes html to a temporary file, loads it in a fresh browser session and prints it
func (e *ChromeEngine) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	started := time.Now()

	tmpPath, err := writeTempHTML(html)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	rc := e.Acquire(ctx)
	defer rc.Release()

	pdf, err := e.print(rc.Context(), "file://"+tmpPath, e.opts)
	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"error":       err.Error(),
			"html_size":   len(html),
			"duration_ms": time.Since(started).Milliseconds(),
		}).Error("Headless print failed")
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"html_size":   len(html),
		"pdf_size":    len(pdf),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("Headless print completed")
	return pdf, nil
}

// writeTempHTML keeps large documents out of data URLs
func writeTempHTML(html string) (string, error) {
	tmpFile, err := os.CreateTemp("", "listingdeck-brochure-*.html")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()

	if _, err := tmpFile.WriteString(html); err != nil {
		tmpFile.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return path, nil
}

func printToPDF(ctx context.Context, fileURL string, opts Options) ([]byte, error) {
	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithMarginTop(opts.Margin).
				WithMarginBottom(opts.Margin).
				WithMarginLeft(opts.Margin).
				WithMarginRight(opts.Margin).
				WithPrintBackground(opts.PrintBackground).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
