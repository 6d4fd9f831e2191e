package blocktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_DropExisting(t *testing.T) {
	editor := NewEditor(sampleTree(t))

	require.NoError(t, editor.DragStartExisting("x1"))
	source, dragging := editor.Dragging()
	require.True(t, dragging)
	assert.Equal(t, DragSource{Kind: DragKindExisting, BlockID: "x1"}, source)
	assert.True(t, editor.DragOver(BlockTarget("c1")))

	require.NoError(t, editor.Drop(BlockTarget("c1")))

	pos, ok := editor.Tree().FindParentList("x1")
	require.True(t, ok)
	assert.Equal(t, ParentList{ContainerID: "c1", Index: 2}, pos)
	assert.Equal(t, "x1", editor.SelectedID())
	_, dragging = editor.Dragging()
	assert.False(t, dragging)
}

func TestEditor_DropNew(t *testing.T) {
	useSequentialIDs(t)
	editor := NewEditor(sampleTree(t))

	require.NoError(t, editor.DragStartNew(BlockTypeButton))
	require.NoError(t, editor.Drop(BlockTarget("t1")))

	assert.Equal(t, "gen-1", editor.SelectedID())
	b, ok := editor.Tree().Find("gen-1")
	require.True(t, ok)
	assert.Equal(t, BlockTypeButton, b.Type)
	assert.Equal(t, GetDefaultContent(BlockTypeButton), b.Content)

	pos, _ := editor.Tree().FindParentList("gen-1")
	assert.Equal(t, ParentList{ContainerID: "c1", Index: 1}, pos)
}

func TestEditor_DropOnRootAppends(t *testing.T) {
	editor := NewEditor(sampleTree(t))

	require.NoError(t, editor.DragStartExisting("t1"))
	require.NoError(t, editor.Drop(RootTarget()))

	ids := editor.Tree().IDs()
	assert.Equal(t, "t1", ids[len(ids)-1])
}

func TestEditor_DropReturnsToIdle(t *testing.T) {
	t.Run("unregistered target", func(t *testing.T) {
		tree := sampleTree(t)
		editor := NewEditor(tree)
		require.NoError(t, editor.DragStartNew(BlockTypeText))

		assert.False(t, editor.DragOver(BlockTarget("nowhere")))
		err := editor.Drop(BlockTarget("nowhere"))
		assert.ErrorIs(t, err, ErrNoDropTarget)
		assert.Same(t, tree, editor.Tree())
		_, dragging := editor.Dragging()
		assert.False(t, dragging)
	})

	t.Run("cyclic move", func(t *testing.T) {
		tree := sampleTree(t)
		editor := NewEditor(tree)
		require.NoError(t, editor.DragStartExisting("c1"))

		err := editor.Drop(BlockTarget("t1"))
		assert.ErrorIs(t, err, ErrCyclicMove)
		assert.Same(t, tree, editor.Tree())
		_, dragging := editor.Dragging()
		assert.False(t, dragging)
	})

	t.Run("drop without drag", func(t *testing.T) {
		editor := NewEditor(nil)
		assert.ErrorIs(t, editor.Drop(RootTarget()), ErrNotDragging)
	})
}

func TestEditor_DragStartValidation(t *testing.T) {
	editor := NewEditor(sampleTree(t))
	assert.ErrorIs(t, editor.DragStartExisting("missing"), ErrBlockNotFound)
	assert.ErrorIs(t, editor.DragStartNew("video"), ErrInvalidBlockType)
	assert.False(t, editor.DragOver(RootTarget()), "nothing is being dragged")
}

func TestEditor_Selection(t *testing.T) {
	t.Run("deleting the selected block clears the selection", func(t *testing.T) {
		editor := NewEditor(sampleTree(t))
		require.NoError(t, editor.Select("x1"))
		require.NoError(t, editor.DeleteBlock("x1"))
		assert.Empty(t, editor.SelectedID())
	})

	t.Run("deleting an ancestor of the selection clears it", func(t *testing.T) {
		editor := NewEditor(sampleTree(t))
		require.NoError(t, editor.Select("i1"))
		require.NoError(t, editor.DeleteBlock("c1"))
		assert.Empty(t, editor.SelectedID())
		assert.Equal(t, 1, editor.Tree().Len())
	})

	t.Run("deleting another block keeps the selection", func(t *testing.T) {
		editor := NewEditor(sampleTree(t))
		require.NoError(t, editor.Select("x1"))
		require.NoError(t, editor.DeleteBlock("t1"))
		assert.Equal(t, "x1", editor.SelectedID())
	})

	t.Run("selecting an unknown block fails", func(t *testing.T) {
		editor := NewEditor(sampleTree(t))
		assert.ErrorIs(t, editor.Select("missing"), ErrBlockNotFound)
		assert.NoError(t, editor.Select(""))
	})
}

func TestEditor_AddBlock(t *testing.T) {
	useSequentialIDs(t)
	editor := NewEditor(sampleTree(t))

	id, err := editor.AddBlock(BlockTypeText)
	require.NoError(t, err)
	pos, _ := editor.Tree().FindParentList(id)
	assert.Equal(t, ParentList{ContainerID: "", Index: 2}, pos)

	require.NoError(t, editor.Select("c1"))
	id, err = editor.AddBlock(BlockTypeImage)
	require.NoError(t, err)
	pos, _ = editor.Tree().FindParentList(id)
	assert.Equal(t, ParentList{ContainerID: "c1", Index: 2}, pos)
	assert.Equal(t, id, editor.SelectedID())

	_, err = editor.AddBlock("video")
	assert.ErrorIs(t, err, ErrInvalidBlockType)
}

func TestEditor_DuplicateAndUpdate(t *testing.T) {
	editor := NewEditor(sampleTree(t))

	cloneID, err := editor.DuplicateBlock("t1")
	require.NoError(t, err)
	assert.Equal(t, cloneID, editor.SelectedID())
	assert.NotEqual(t, "t1", cloneID)

	content := "Renamed"
	require.NoError(t, editor.UpdateBlock(cloneID, BlockUpdate{Content: &content}))
	b, _ := editor.Tree().Find(cloneID)
	assert.Equal(t, "Renamed", b.Content)

	_, err = editor.DuplicateBlock("missing")
	assert.ErrorIs(t, err, ErrBlockNotFound)
	assert.ErrorIs(t, editor.UpdateBlock("missing", BlockUpdate{}), ErrBlockNotFound)
}
