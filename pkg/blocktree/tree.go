package blocktree

import (
	"fmt"
)

// ParentList identifies the ordered list that holds a block.
// ContainerID is empty for the top-level list.
type ParentList struct {
	ContainerID string `json:"containerId"`
	Index       int    `json:"index"`
}

// IsRoot reports whether the list is the top-level list
func (p ParentList) IsRoot() bool {
	return p.ContainerID == ""
}

// DropTarget is where a block lands: the root list or an existing block.
type DropTarget struct {
	Root    bool   `json:"root,omitempty"`
	BlockID string `json:"blockId,omitempty"`
}

// RootTarget targets the end of the top-level list
func RootTarget() DropTarget {
	return DropTarget{Root: true}
}

// BlockTarget targets an existing block
func BlockTarget(id string) DropTarget {
	return DropTarget{BlockID: id}
}

func (d DropTarget) String() string {
	if d.Root {
		return "root"
	}
	return "block:" + d.BlockID
}

type node struct {
	block    Block // Children is always nil here; see children
	parentID string
	children []string
}

// Tree is an immutable block forest indexed by id. Every mutating operation
// returns a new Tree and leaves the receiver untouched.
type Tree struct {
	nodes map[string]*node
	roots []string
}

// EmptyTree returns a tree with no blocks
func EmptyTree() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// NewTree indexes a block forest. Blocks without an id get a fresh one.
func NewTree(blocks []Block) (*Tree, error) {
	t := EmptyTree()
	for _, b := range blocks {
		b = assignMissingIDs(b)
		if err := t.checkInsertable(b); err != nil {
			return nil, err
		}
		t.roots = append(t.roots, b.ID)
		t.index(b, "")
	}
	return t, nil
}

// Blocks materializes the tree as nested blocks in document order
func (t *Tree) Blocks() []Block {
	blocks := make([]Block, 0, len(t.roots))
	for _, id := range t.roots {
		blocks = append(blocks, t.build(id))
	}
	return blocks
}

// Len returns the number of blocks in the tree, descendants included
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IDs returns every block id in depth-first document order
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.nodes))
	var visit func(list []string)
	visit = func(list []string) {
		for _, id := range list {
			ids = append(ids, id)
			visit(t.nodes[id].children)
		}
	}
	visit(t.roots)
	return ids
}

// Contains reports whether a block with the given id exists
func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Find returns the block with the given id, children included
func (t *Tree) Find(id string) (Block, bool) {
	if _, ok := t.nodes[id]; !ok {
		return Block{}, false
	}
	return t.build(id), true
}

// FindParentList returns the list that holds the block and its position in it
func (t *Tree) FindParentList(id string) (ParentList, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return ParentList{}, false
	}
	for i, sibling := range t.siblings(n.parentID) {
		if sibling == id {
			return ParentList{ContainerID: n.parentID, Index: i}, true
		}
	}
	return ParentList{}, false
}

// IsAncestor reports whether ancestorID is id itself or one of its ancestors
func (t *Tree) IsAncestor(ancestorID, id string) bool {
	for current := id; current != ""; {
		if current == ancestorID {
			return true
		}
		n, ok := t.nodes[current]
		if !ok {
			return false
		}
		current = n.parentID
	}
	return false
}

// Update replaces the provided fields of a block. Unknown ids leave the tree unchanged.
func (t *Tree) Update(id string, update BlockUpdate) *Tree {
	if _, ok := t.nodes[id]; !ok {
		return t
	}
	c := t.clone()
	n := c.nodes[id]
	if update.Content != nil {
		n.block.Content = *update.Content
	}
	if update.DynamicField != nil {
		n.block.DynamicField = *update.DynamicField
	}
	if update.Styles != nil {
		n.block.Styles = update.Styles.Clone()
	}
	return c
}

// Delete removes a block and its subtree. Unknown ids leave the tree unchanged.
func (t *Tree) Delete(id string) *Tree {
	n, ok := t.nodes[id]
	if !ok {
		return t
	}
	c := t.clone()
	c.setSiblings(n.parentID, removeID(c.siblings(n.parentID), id))
	c.forget(id)
	return c
}

// Duplicate deep-clones a block with fresh ids and inserts the clone right
// after the original. It returns the clone root id, or "" if id is unknown.
func (t *Tree) Duplicate(id string) (*Tree, string) {
	original, ok := t.Find(id)
	if !ok {
		return t, ""
	}
	clone := t.reassignIDs(original)
	clone.Content = original.Content + " (Copy)"

	result, err := t.InsertAfter(id, clone)
	if err != nil {
		return t, ""
	}
	return result, clone.ID
}

// InsertAtRoot appends a block subtree to the top-level list
func (t *Tree) InsertAtRoot(b Block) (*Tree, error) {
	b = assignMissingIDs(b)
	if err := t.checkInsertable(b); err != nil {
		return t, err
	}
	c := t.clone()
	c.roots = append(c.roots, b.ID)
	c.index(b, "")
	return c, nil
}

// InsertIntoContainer appends a block subtree as the last child of a container
func (t *Tree) InsertIntoContainer(containerID string, b Block) (*Tree, error) {
	target, ok := t.nodes[containerID]
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrBlockNotFound, containerID)
	}
	if !target.block.IsContainer() {
		return t, fmt.Errorf("%w: %s is %s", ErrNotContainer, containerID, target.block.Type)
	}
	b = assignMissingIDs(b)
	if err := t.checkInsertable(b); err != nil {
		return t, err
	}
	c := t.clone()
	parent := c.nodes[containerID]
	parent.children = append(parent.children, b.ID)
	c.index(b, containerID)
	return c, nil
}

// InsertAfter inserts a block subtree right after a sibling, in the sibling's list
func (t *Tree) InsertAfter(siblingID string, b Block) (*Tree, error) {
	pos, ok := t.FindParentList(siblingID)
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrBlockNotFound, siblingID)
	}
	b = assignMissingIDs(b)
	if err := t.checkInsertable(b); err != nil {
		return t, err
	}
	c := t.clone()
	c.setSiblings(pos.ContainerID, insertID(c.siblings(pos.ContainerID), pos.Index+1, b.ID))
	c.index(b, pos.ContainerID)
	return c, nil
}

// InsertAt applies the drop rule: root appends to the top-level list, a
// container target receives the block as its last child, any other target
// gets the block right after it.
func (t *Tree) InsertAt(target DropTarget, b Block) (*Tree, error) {
	if target.Root {
		return t.InsertAtRoot(b)
	}
	n, ok := t.nodes[target.BlockID]
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrBlockNotFound, target.BlockID)
	}
	if n.block.IsContainer() {
		return t.InsertIntoContainer(target.BlockID, b)
	}
	return t.InsertAfter(target.BlockID, b)
}

// Move relocates an existing block and its subtree to a drop target,
// keeping every id. Dropping a block onto itself or one of its descendants
// fails with ErrCyclicMove.
func (t *Tree) Move(id string, target DropTarget) (*Tree, error) {
	subtree, ok := t.Find(id)
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if !target.Root {
		if !t.Contains(target.BlockID) {
			return t, fmt.Errorf("%w: %s", ErrBlockNotFound, target.BlockID)
		}
		if t.IsAncestor(id, target.BlockID) {
			return t, fmt.Errorf("%w: %s onto %s", ErrCyclicMove, id, target.BlockID)
		}
	}

	moved, err := t.Delete(id).InsertAt(target, subtree)
	if err != nil {
		return t, err
	}
	return moved, nil
}

// checkInsertable validates a subtree and rejects ids already present in the tree
// or repeated within the subtree.
func (t *Tree) checkInsertable(b Block) error {
	if err := ValidateBlock(b); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	var dup string
	Walk([]Block{b}, func(blk Block, _ int) bool {
		if _, exists := t.nodes[blk.ID]; exists {
			dup = blk.ID
			return false
		}
		if _, exists := seen[blk.ID]; exists {
			dup = blk.ID
			return false
		}
		seen[blk.ID] = struct{}{}
		return true
	})
	if dup != "" {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dup)
	}
	return nil
}

// reassignIDs returns a deep copy of b where every node has an id unused in the tree
func (t *Tree) reassignIDs(b Block) Block {
	used := make(map[string]struct{})
	var assign func(src Block) Block
	assign = func(src Block) Block {
		dst := src
		for {
			dst.ID = newID()
			_, inTree := t.nodes[dst.ID]
			_, inClone := used[dst.ID]
			if !inTree && !inClone {
				break
			}
		}
		used[dst.ID] = struct{}{}
		if src.Children != nil {
			dst.Children = make([]Block, len(src.Children))
			for i, child := range src.Children {
				dst.Children[i] = assign(child)
			}
		}
		return dst
	}
	return assign(b)
}

func (t *Tree) build(id string) Block {
	n := t.nodes[id]
	b := n.block
	b.Styles = n.block.Styles.Clone()
	if b.IsContainer() {
		b.Children = make([]Block, 0, len(n.children))
		for _, childID := range n.children {
			b.Children = append(b.Children, t.build(childID))
		}
	}
	return b
}

func (t *Tree) index(b Block, parentID string) {
	n := &node{parentID: parentID}
	n.block = b
	n.block.Styles = b.Styles.Clone()
	n.block.Children = nil
	for _, child := range b.Children {
		n.children = append(n.children, child.ID)
		t.index(child, b.ID)
	}
	t.nodes[b.ID] = n
}

func (t *Tree) forget(id string) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, child := range n.children {
		t.forget(child)
	}
	delete(t.nodes, id)
}

func (t *Tree) siblings(parentID string) []string {
	if parentID == "" {
		return t.roots
	}
	return t.nodes[parentID].children
}

func (t *Tree) setSiblings(parentID string, ids []string) {
	if parentID == "" {
		t.roots = ids
		return
	}
	t.nodes[parentID].children = ids
}

func (t *Tree) clone() *Tree {
	c := &Tree{
		nodes: make(map[string]*node, len(t.nodes)),
		roots: append([]string(nil), t.roots...),
	}
	for id, n := range t.nodes {
		cp := *n
		cp.children = append([]string(nil), n.children...)
		c.nodes[id] = &cp
	}
	return c
}

func assignMissingIDs(b Block) Block {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.Children != nil {
		children := make([]Block, len(b.Children))
		for i, child := range b.Children {
			children[i] = assignMissingIDs(child)
		}
		b.Children = children
	}
	return b
}

func removeID(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertID(list []string, at int, id string) []string {
	if at > len(list) {
		at = len(list)
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list[:at]...)
	out = append(out, id)
	return append(out, list[at:]...)
}
