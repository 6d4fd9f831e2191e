package blocktree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/listingdeck/listingdeck/pkg/logger"
)

// DataContext is the run-time data a tree is bound against, typically
// nested project, agency and agent records.
type DataContext struct {
	raw  string
	data map[string]interface{}
}

// NewDataContext snapshots data as JSON so later lookups never observe caller mutations
func NewDataContext(data map[string]interface{}) (*DataContext, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data context: %w", err)
	}
	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data context: %w", err)
	}
	return &DataContext{raw: string(raw), data: snapshot}, nil
}

// Data returns the context as a generic map, as consumed by Liquid
func (dc *DataContext) Data() map[string]interface{} {
	return dc.data
}

// JSON returns the context serialized as JSON
func (dc *DataContext) JSON() string {
	return dc.raw
}

// Lookup walks a dot path and returns the raw value. The second result is
// false for an empty path, any empty segment, a missing key or a null value.
func (dc *DataContext) Lookup(path string) (gjson.Result, bool) {
	if dc == nil || strings.TrimSpace(path) == "" {
		return gjson.Result{}, false
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if seg == "" {
			return gjson.Result{}, false
		}
		segments[i] = gjson.Escape(seg)
	}

	res := gjson.Get(dc.raw, strings.Join(segments, "."))
	if !res.Exists() || res.Type == gjson.Null {
		return gjson.Result{}, false
	}
	return res, true
}

// Resolve returns the stringified scalar found at the dot path. Objects and
// arrays are reported as unresolved.
func (dc *DataContext) Resolve(path string) (string, bool) {
	res, ok := dc.Lookup(path)
	if !ok || res.IsObject() || res.IsArray() {
		return "", false
	}
	return res.String(), true
}

// BindOptions tunes Bind. A nil Liquid engine leaves placeholders untouched.
type BindOptions struct {
	Liquid *SecureLiquidEngine
	Logger logger.Logger
}

// Bind returns a copy of the tree where every block whose dynamic field
// resolves to a scalar gets that value as content. Array and object values
// are not injected. Static content containing Liquid placeholders is
// rendered against the same context; content Liquid cannot render is kept
// as is. Only a cancelled or expired context aborts the bind.
func Bind(ctx context.Context, t *Tree, dc *DataContext, opts BindOptions) (*Tree, error) {
	bound := t
	for _, id := range t.IDs() {
		block, _ := t.Find(id)

		content, resolved := bindDynamicField(block, dc)
		if !resolved && opts.Liquid != nil && HasPlaceholders(content) {
			rendered, err := opts.Liquid.RenderContext(ctx, content, dc.Data())
			switch {
			case err == nil:
				content = rendered
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return nil, fmt.Errorf("block %s: %w", id, err)
			default:
				if opts.Logger != nil {
					opts.Logger.WithFields(map[string]interface{}{
						"block_id": id,
						"error":    err.Error(),
					}).Warn("Liquid placeholders could not be rendered, keeping static content")
				}
			}
		}

		if content != block.Content {
			bound = bound.Update(id, BlockUpdate{Content: &content})
		}
	}
	return bound, nil
}

func bindDynamicField(block Block, dc *DataContext) (string, bool) {
	if block.DynamicField == "" {
		return block.Content, false
	}
	if value, ok := dc.Resolve(block.DynamicField); ok {
		return value, true
	}
	return block.Content, false
}

// ParseGalleryContent splits gallery content into image references.
// References are separated by newlines or commas.
func ParseGalleryContent(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == '\n' || r == ',' || r == '\r'
	})
	refs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			refs = append(refs, f)
		}
	}
	return refs
}

// IsAbsoluteURL reports whether a reference is already a fetchable http(s) URL
func IsAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ImageReferences lists the distinct image references of image and gallery
// blocks in document order.
func ImageReferences(t *Tree) []string {
	seen := make(map[string]struct{})
	var refs []string
	add := func(ref string) {
		if ref == "" {
			return
		}
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	Walk(t.Blocks(), func(b Block, _ int) bool {
		switch b.Type {
		case BlockTypeImage:
			add(strings.TrimSpace(b.Content))
		case BlockTypeGallery:
			for _, ref := range ParseGalleryContent(b.Content) {
				add(ref)
			}
		}
		return true
	})
	return refs
}

// RewriteImages returns a copy of the tree with every image reference
// passed through rewrite.
func RewriteImages(t *Tree, rewrite func(ref string) string) *Tree {
	out := t
	Walk(t.Blocks(), func(b Block, _ int) bool {
		var content string
		switch b.Type {
		case BlockTypeImage:
			content = rewrite(strings.TrimSpace(b.Content))
		case BlockTypeGallery:
			refs := ParseGalleryContent(b.Content)
			for i, ref := range refs {
				refs[i] = rewrite(ref)
			}
			content = strings.Join(refs, "\n")
		default:
			return true
		}
		if content != b.Content {
			out = out.Update(b.ID, BlockUpdate{Content: &content})
		}
		return true
	})
	return out
}
