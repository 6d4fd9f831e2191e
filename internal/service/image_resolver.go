package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
	"github.com/listingdeck/listingdeck/pkg/cache"
	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/metrics"
	"github.com/listingdeck/listingdeck/pkg/tracing"
)

const defaultImageConcurrency = 8

// ImageResolverConfig tunes ImageResolver
type ImageResolverConfig struct {
	Concurrency int
	Placeholder string
	// CacheTTL must stay below the lifetime of the URLs the resolver returns
	CacheTTL time.Duration
}

// ImageResolver turns image references into fetchable URLs. http(s)
// references pass through; storage identifiers go to the URL resolver.
// A reference that cannot be resolved becomes the placeholder image.
type ImageResolver struct {
	resolver domain.ImageURLResolver
	cache    cache.Cache[string]
	config   ImageResolverConfig
	logger   logger.Logger
}

// NewImageResolver creates an ImageResolver. resolver and urlCache may be nil.
func NewImageResolver(resolver domain.ImageURLResolver, urlCache cache.Cache[string], config ImageResolverConfig, logger logger.Logger) *ImageResolver {
	if config.Concurrency < 1 {
		config.Concurrency = defaultImageConcurrency
	}
	return &ImageResolver{
		resolver: resolver,
		cache:    urlCache,
		config:   config,
		logger:   logger,
	}
}

// Placeholder is the URL used for references that fail to resolve
func (r *ImageResolver) Placeholder() string {
	return r.config.Placeholder
}

// ResolveAll resolves every reference in one bounded batch. The result maps
// each input reference to its URL. Failures never abort the batch.
func (r *ImageResolver) ResolveAll(ctx context.Context, refs []string) map[string]string {
	ctx, span := tracing.StartServiceSpan(ctx, "ImageResolver", "ResolveAll")
	defer span.End()
	tracing.AddAttribute(ctx, "images", len(refs))

	var (
		mu       sync.Mutex
		resolved = make(map[string]string, len(refs))
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for _, ref := range refs {
		mu.Lock()
		_, seen := resolved[ref]
		resolved[ref] = ""
		mu.Unlock()
		if seen {
			continue
		}

		g.Go(func() error {
			url, ok := r.resolveOne(gctx, ref)
			mu.Lock()
			resolved[ref] = url
			if !ok {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		tracing.AddAttribute(ctx, "images.failed", failed)
	}
	return resolved
}

// Resolve resolves a single reference, returning the placeholder on failure
func (r *ImageResolver) Resolve(ctx context.Context, ref string) string {
	url, _ := r.resolveOne(ctx, ref)
	return url
}

// RewriteTree replaces every image reference of the tree by its resolved URL
func (r *ImageResolver) RewriteTree(ctx context.Context, tree *blocktree.Tree) *blocktree.Tree {
	resolved := r.ResolveAll(ctx, blocktree.ImageReferences(tree))
	return blocktree.RewriteImages(tree, func(ref string) string {
		if url, ok := resolved[ref]; ok && url != "" {
			return url
		}
		return ref
	})
}

func (r *ImageResolver) resolveOne(ctx context.Context, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return r.fallback(ref, "empty reference")
	}
	if blocktree.IsAbsoluteURL(ref) {
		return ref, true
	}
	if r.resolver == nil {
		return r.fallback(ref, "no storage resolver configured")
	}

	compute := func() (string, error) {
		return r.resolver.ResolveURL(ctx, ref)
	}

	var (
		url string
		err error
	)
	if r.cache != nil && r.config.CacheTTL > 0 {
		url, err = r.cache.GetOrSet(ref, r.config.CacheTTL, compute)
	} else {
		url, err = compute()
	}
	if err != nil {
		return r.fallback(ref, err.Error())
	}
	return url, true
}

func (r *ImageResolver) fallback(ref, reason string) (string, bool) {
	metrics.ImageResolutionFailures.Inc()
	r.logger.WithFields(map[string]interface{}{
		"image": ref,
		"error": reason,
	}).Warn("Image reference could not be resolved, using placeholder")
	return r.config.Placeholder, false
}
