package blocktree

import (
	"fmt"
)

// DragKind distinguishes dragging an existing block from dragging a palette item
type DragKind string

const (
	DragKindExisting DragKind = "existing"
	DragKindNew      DragKind = "new"
)

// DragSource is the payload of an in-progress drag
type DragSource struct {
	Kind      DragKind  `json:"kind"`
	BlockID   string    `json:"blockId,omitempty"`
	BlockType BlockType `json:"blockType,omitempty"`
}

// Editor holds the editing session of a single block tree: the tree itself,
// the selected block and the drag state machine (Idle -> Dragging -> Idle).
// It is not safe for concurrent use.
type Editor struct {
	tree     *Tree
	selected string
	dragging *DragSource
}

// NewEditor starts an editing session on the given tree
func NewEditor(tree *Tree) *Editor {
	if tree == nil {
		tree = EmptyTree()
	}
	return &Editor{tree: tree}
}

// Tree returns the current tree
func (e *Editor) Tree() *Tree {
	return e.tree
}

// SelectedID returns the selected block id, or "" when nothing is selected
func (e *Editor) SelectedID() string {
	return e.selected
}

// Dragging returns the active drag source, if any
func (e *Editor) Dragging() (DragSource, bool) {
	if e.dragging == nil {
		return DragSource{}, false
	}
	return *e.dragging, true
}

// Select marks a block as selected. Selecting "" clears the selection.
func (e *Editor) Select(id string) error {
	if id != "" && !e.tree.Contains(id) {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	e.selected = id
	return nil
}

// DragStartExisting begins dragging a block already in the tree
func (e *Editor) DragStartExisting(id string) error {
	if !e.tree.Contains(id) {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	e.dragging = &DragSource{Kind: DragKindExisting, BlockID: id}
	return nil
}

// DragStartNew begins dragging a palette item of the given type
func (e *Editor) DragStartNew(t BlockType) error {
	if !IsValidBlockType(t) {
		return fmt.Errorf("%w: %q", ErrInvalidBlockType, t)
	}
	e.dragging = &DragSource{Kind: DragKindNew, BlockType: t}
	return nil
}

// DragOver reports whether the target accepts drops. Every registered
// target does; the caller must suppress the platform default reject.
func (e *Editor) DragOver(target DropTarget) bool {
	return e.dragging != nil && e.isRegistered(target)
}

// CancelDrag returns the editor to idle without touching the tree
func (e *Editor) CancelDrag() {
	e.dragging = nil
}

// Drop completes the drag on the target. An unregistered target is a no-op.
// The editor is idle afterwards whatever the outcome.
func (e *Editor) Drop(target DropTarget) error {
	source := e.dragging
	e.dragging = nil

	if source == nil {
		return ErrNotDragging
	}
	if !e.isRegistered(target) {
		return fmt.Errorf("%w: %s", ErrNoDropTarget, target)
	}

	switch source.Kind {
	case DragKindExisting:
		moved, err := e.tree.Move(source.BlockID, target)
		if err != nil {
			return err
		}
		e.tree = moved
		e.selected = source.BlockID
		return nil
	case DragKindNew:
		block, err := NewDefaultBlock(source.BlockType)
		if err != nil {
			return err
		}
		inserted, err := e.tree.InsertAt(target, block)
		if err != nil {
			return err
		}
		e.tree = inserted
		e.selected = block.ID
		return nil
	default:
		return fmt.Errorf("unknown drag kind %q", source.Kind)
	}
}

// AddBlock handles a palette click: the new block goes into the selected
// container when there is one, otherwise at the end of the top-level list.
func (e *Editor) AddBlock(t BlockType) (string, error) {
	block, err := NewDefaultBlock(t)
	if err != nil {
		return "", err
	}

	target := RootTarget()
	if selected, ok := e.tree.Find(e.selected); ok && selected.IsContainer() {
		target = BlockTarget(selected.ID)
	}

	inserted, err := e.tree.InsertAt(target, block)
	if err != nil {
		return "", err
	}
	e.tree = inserted
	e.selected = block.ID
	return block.ID, nil
}

// UpdateBlock replaces the provided fields of a block
func (e *Editor) UpdateBlock(id string, update BlockUpdate) error {
	if !e.tree.Contains(id) {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	e.tree = e.tree.Update(id, update)
	return nil
}

// DeleteBlock removes a block and its subtree, clearing the selection when
// the selected block was part of it.
func (e *Editor) DeleteBlock(id string) error {
	if !e.tree.Contains(id) {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if e.selected != "" && e.tree.IsAncestor(id, e.selected) {
		e.selected = ""
	}
	e.tree = e.tree.Delete(id)
	return nil
}

// DuplicateBlock clones a block next to the original and selects the clone
func (e *Editor) DuplicateBlock(id string) (string, error) {
	duplicated, cloneID := e.tree.Duplicate(id)
	if cloneID == "" {
		return "", fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	e.tree = duplicated
	e.selected = cloneID
	return cloneID, nil
}

func (e *Editor) isRegistered(target DropTarget) bool {
	if target.Root {
		return true
	}
	return target.BlockID != "" && e.tree.Contains(target.BlockID)
}
