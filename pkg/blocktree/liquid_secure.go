package blocktree

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

// Limits applied to placeholder rendering in block content
const (
	DefaultRenderTimeout   = 2 * time.Second
	DefaultMaxTemplateSize = 64 * 1024 // 64KB
)

// SecureLiquidEngine renders Liquid placeholders with a size cap, a time
// budget and panic recovery.
type SecureLiquidEngine struct {
	timeout time.Duration
	maxSize int
	engine  *liquid.Engine
}

// NewSecureLiquidEngine creates an engine with the default limits
func NewSecureLiquidEngine() *SecureLiquidEngine {
	return NewSecureLiquidEngineWithOptions(DefaultRenderTimeout, DefaultMaxTemplateSize)
}

// NewSecureLiquidEngineWithOptions creates an engine with custom limits
func NewSecureLiquidEngineWithOptions(timeout time.Duration, maxSize int) *SecureLiquidEngine {
	return &SecureLiquidEngine{
		timeout: timeout,
		maxSize: maxSize,
		engine:  liquid.NewEngine(),
	}
}

// HasPlaceholders reports whether content carries Liquid markup
func HasPlaceholders(content string) bool {
	return strings.Contains(content, "{{") || strings.Contains(content, "{%")
}

// Render renders content against data, bounded by the engine timeout
func (s *SecureLiquidEngine) Render(content string, data map[string]interface{}) (string, error) {
	return s.RenderContext(context.Background(), content, data)
}

// RenderContext renders content against data. The render is abandoned when
// ctx is done or the engine timeout elapses, whichever comes first.
func (s *SecureLiquidEngine) RenderContext(ctx context.Context, content string, data map[string]interface{}) (string, error) {
	if !HasPlaceholders(content) {
		return content, nil
	}
	if len(content) > s.maxSize {
		return "", fmt.Errorf("template size (%d bytes) exceeds maximum allowed size (%d bytes)", len(content), s.maxSize)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("liquid rendering aborted: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		rendered string
		err      error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic during liquid rendering: %v", r)}
			}
		}()

		rendered, err := s.engine.ParseAndRenderString(content, data)
		if err != nil {
			done <- outcome{err: fmt.Errorf("liquid rendering failed: %w", err)}
			return
		}
		done <- outcome{rendered: rendered}
	}()

	select {
	case out := <-done:
		return out.rendered, out.err
	case <-ctx.Done():
		return "", fmt.Errorf("liquid rendering aborted after %v: %w", s.timeout, ctx.Err())
	}
}
