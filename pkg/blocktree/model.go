package blocktree

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BlockType represents the available brochure block types
type BlockType string

const (
	BlockTypeTitle     BlockType = "title"
	BlockTypeText      BlockType = "text"
	BlockTypeImage     BlockType = "image"
	BlockTypeContainer BlockType = "container"
	BlockTypeButton    BlockType = "button"
	BlockTypeGallery   BlockType = "gallery"
)

// AllBlockTypes lists every block type in palette order
var AllBlockTypes = []BlockType{
	BlockTypeTitle,
	BlockTypeText,
	BlockTypeImage,
	BlockTypeContainer,
	BlockTypeButton,
	BlockTypeGallery,
}

// Tree operation errors. Operations that fail with one of these leave the tree unchanged.
var (
	ErrBlockNotFound    = errors.New("block not found")
	ErrNotContainer     = errors.New("target block is not a container")
	ErrCyclicMove       = errors.New("block cannot be moved into itself or one of its descendants")
	ErrDuplicateID      = errors.New("block id already exists in tree")
	ErrInvalidBlockType = errors.New("invalid block type")
	ErrNoDropTarget     = errors.New("no drop target")
	ErrNotDragging      = errors.New("no drag in progress")
)

// Block is one node of the brochure composition tree.
// Children is only meaningful for containers and is omitted for every other type.
type Block struct {
	ID           string    `json:"id"`
	Type         BlockType `json:"type"`
	Content      string    `json:"content"`
	DynamicField string    `json:"dynamicField,omitempty"`
	Styles       Styles    `json:"styles"`
	Children     []Block   `json:"children,omitempty"`
}

// MarshalJSON emits an explicit empty children list for containers so that
// "no children" and "not a container" stay distinguishable on the wire.
func (b Block) MarshalJSON() ([]byte, error) {
	type alias Block
	if b.Type != BlockTypeContainer {
		a := alias(b)
		a.Children = nil
		return json.Marshal(a)
	}

	children := b.Children
	if children == nil {
		children = []Block{}
	}
	return json.Marshal(struct {
		alias
		Children []Block `json:"children"`
	}{
		alias:    alias(b),
		Children: children,
	})
}

// IsContainer reports whether the block may own children
func (b Block) IsContainer() bool {
	return b.Type == BlockTypeContainer
}

// BlockUpdate carries the fields to replace on an existing block. Nil fields are left untouched.
type BlockUpdate struct {
	Content      *string `json:"content,omitempty"`
	DynamicField *string `json:"dynamicField,omitempty"`
	Styles       *Styles `json:"styles,omitempty"`
}

// IsValidBlockType checks if a block type is part of the closed type set
func IsValidBlockType(t BlockType) bool {
	for _, known := range AllBlockTypes {
		if known == t {
			return true
		}
	}
	return false
}

// IsTextLike reports whether the block content is rendered as text
func IsTextLike(t BlockType) bool {
	return t == BlockTypeTitle || t == BlockTypeText || t == BlockTypeButton
}

// GetBlockDisplayName returns a human-readable name for a block type
func GetBlockDisplayName(t BlockType) string {
	switch t {
	case BlockTypeTitle:
		return "Title"
	case BlockTypeText:
		return "Text"
	case BlockTypeImage:
		return "Image"
	case BlockTypeContainer:
		return "Container"
	case BlockTypeButton:
		return "Button"
	case BlockTypeGallery:
		return "Gallery"
	default:
		return string(t)
	}
}

// NewID returns a fresh globally unique block id
func NewID() string {
	return uuid.New().String()
}

// newID is swapped in tests that need deterministic ids
var newID = NewID

// ValidateBlock validates a block subtree: known types, non-empty ids, and
// children only on containers. Id uniqueness is checked by the tree.
func ValidateBlock(b Block) error {
	if b.ID == "" {
		return fmt.Errorf("block of type %s has no id", b.Type)
	}
	if !IsValidBlockType(b.Type) {
		return fmt.Errorf("%w: %q (block %s)", ErrInvalidBlockType, b.Type, b.ID)
	}
	if !b.IsContainer() && len(b.Children) > 0 {
		return fmt.Errorf("block %s of type %s cannot have children", b.ID, b.Type)
	}
	for _, child := range b.Children {
		if err := ValidateBlock(child); err != nil {
			return err
		}
	}
	return nil
}

// CountBlocks returns the number of blocks in a forest, descendants included
func CountBlocks(blocks []Block) int {
	count := 0
	for _, b := range blocks {
		count += 1 + CountBlocks(b.Children)
	}
	return count
}

// Walk visits every block depth-first in document order. Returning false stops the walk.
func Walk(blocks []Block, fn func(b Block, depth int) bool) {
	walk(blocks, 0, fn)
}

func walk(blocks []Block, depth int, fn func(b Block, depth int) bool) bool {
	for _, b := range blocks {
		if !fn(b, depth) {
			return false
		}
		if !walk(b.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// UnmarshalBlocks parses a JSON array of blocks and validates every subtree
func UnmarshalBlocks(data []byte) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blocks: %w", err)
	}
	for _, b := range blocks {
		if err := ValidateBlock(b); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}
