package blocktree

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSequentialIDs makes generated ids predictable for the duration of a test
func useSequentialIDs(t *testing.T) {
	t.Helper()
	prev := newID
	n := 0
	newID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	t.Cleanup(func() { newID = prev })
}

func sampleBlocks() []Block {
	return []Block{
		{
			ID:   "c1",
			Type: BlockTypeContainer,
			Children: []Block{
				{ID: "t1", Type: BlockTypeTitle, Content: "Hello"},
				{ID: "i1", Type: BlockTypeImage, Content: "photos/front.jpg"},
			},
		},
		{ID: "x1", Type: BlockTypeText, Content: "Body"},
	}
}

func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree(sampleBlocks())
	require.NoError(t, err)
	return tree
}

func TestNewTree(t *testing.T) {
	t.Run("indexes nested blocks", func(t *testing.T) {
		tree := sampleTree(t)
		assert.Equal(t, 4, tree.Len())
		assert.Equal(t, []string{"c1", "t1", "i1", "x1"}, tree.IDs())
		assert.Equal(t, sampleBlocks()[1], tree.Blocks()[1])
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		blocks := sampleBlocks()
		blocks[1].ID = "t1"
		_, err := NewTree(blocks)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("rejects children on leaf blocks", func(t *testing.T) {
		_, err := NewTree([]Block{{
			ID:       "x",
			Type:     BlockTypeText,
			Children: []Block{{ID: "y", Type: BlockTypeText}},
		}})
		assert.Error(t, err)
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := NewTree([]Block{{ID: "x", Type: "video"}})
		assert.ErrorIs(t, err, ErrInvalidBlockType)
	})

	t.Run("assigns missing ids", func(t *testing.T) {
		useSequentialIDs(t)
		tree, err := NewTree([]Block{{Type: BlockTypeText, Content: "no id"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"gen-1"}, tree.IDs())
	})
}

func TestTree_Find(t *testing.T) {
	tree := sampleTree(t)

	c1, ok := tree.Find("c1")
	require.True(t, ok)
	assert.Len(t, c1.Children, 2)
	assert.Equal(t, "t1", c1.Children[0].ID)

	t1, ok := tree.Find("t1")
	require.True(t, ok)
	assert.Equal(t, "Hello", t1.Content)
	assert.Nil(t, t1.Children)

	_, ok = tree.Find("missing")
	assert.False(t, ok)
}

func TestTree_FindParentList(t *testing.T) {
	tree := sampleTree(t)

	tests := []struct {
		id       string
		expected ParentList
	}{
		{"c1", ParentList{ContainerID: "", Index: 0}},
		{"t1", ParentList{ContainerID: "c1", Index: 0}},
		{"i1", ParentList{ContainerID: "c1", Index: 1}},
		{"x1", ParentList{ContainerID: "", Index: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			pos, ok := tree.FindParentList(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.expected, pos)
		})
	}

	_, ok := tree.FindParentList("missing")
	assert.False(t, ok)
}

func TestTree_Update(t *testing.T) {
	tree := sampleTree(t)

	content := "Updated"
	styles := Styles{Color: StringPtr("#ff0000")}
	updated := tree.Update("t1", BlockUpdate{Content: &content, Styles: &styles})

	b, _ := updated.Find("t1")
	assert.Equal(t, "Updated", b.Content)
	assert.Equal(t, "#ff0000", *b.Styles.Color)

	original, _ := tree.Find("t1")
	assert.Equal(t, "Hello", original.Content, "receiver must stay unchanged")

	assert.Same(t, tree, tree.Update("missing", BlockUpdate{Content: &content}))
}

func TestTree_StylesAreNotShared(t *testing.T) {
	input := []Block{{ID: "x", Type: BlockTypeText, Content: "Hi", Styles: Styles{Color: StringPtr("red")}}}
	tree, err := NewTree(input)
	require.NoError(t, err)

	*input[0].Styles.Color = "purple"
	b, _ := tree.Find("x")
	assert.Equal(t, "red", *b.Styles.Color, "input blocks must not alias the tree")

	*b.Styles.Color = "blue"
	again, _ := tree.Find("x")
	assert.Equal(t, "red", *again.Styles.Color, "found blocks must not alias the tree")

	styles := Styles{Color: StringPtr("green")}
	updated := tree.Update("x", BlockUpdate{Styles: &styles})
	*styles.Color = "yellow"

	fromUpdated, _ := updated.Find("x")
	fromOriginal, _ := tree.Find("x")
	assert.Equal(t, "green", *fromUpdated.Styles.Color, "update input must not alias the tree")
	assert.Equal(t, "red", *fromOriginal.Styles.Color)

	*fromUpdated.Styles.Color = "black"
	fromUpdated, _ = updated.Find("x")
	assert.Equal(t, "green", *fromUpdated.Styles.Color)
}

func TestStyles_Clone(t *testing.T) {
	s := Styles{Width: StringPtr("100%"), Margin: StringPtr("")}
	cp := s.Clone()

	require.NotNil(t, cp.Width)
	require.NotNil(t, cp.Margin)
	assert.NotSame(t, s.Width, cp.Width)
	assert.Equal(t, "100%", *cp.Width)
	assert.Equal(t, "", *cp.Margin)
	assert.Nil(t, cp.Color)
}

func TestTree_Delete(t *testing.T) {
	tree := sampleTree(t)

	deleted := tree.Delete("c1")
	assert.Equal(t, []string{"x1"}, deleted.IDs())
	assert.False(t, deleted.Contains("t1"))
	assert.Equal(t, 4, tree.Len())

	assert.Same(t, tree, tree.Delete("missing"))
}

func TestTree_Duplicate(t *testing.T) {
	t.Run("leaf block", func(t *testing.T) {
		useSequentialIDs(t)
		tree := sampleTree(t)

		dup, cloneID := tree.Duplicate("t1")
		assert.Equal(t, "gen-1", cloneID)

		clone, ok := dup.Find(cloneID)
		require.True(t, ok)
		assert.Equal(t, "Hello (Copy)", clone.Content)

		pos, _ := dup.FindParentList(cloneID)
		assert.Equal(t, ParentList{ContainerID: "c1", Index: 1}, pos)
	})

	t.Run("container gets fresh ids for every descendant", func(t *testing.T) {
		useSequentialIDs(t)
		tree := sampleTree(t)

		dup, cloneID := tree.Duplicate("c1")
		assert.Equal(t, []string{"c1", "t1", "i1", cloneID, "gen-2", "gen-3", "x1"}, dup.IDs())

		clone, _ := dup.Find(cloneID)
		assert.Equal(t, " (Copy)", clone.Content)
		assert.Equal(t, "Hello", clone.Children[0].Content)
		assert.Equal(t, 7, dup.Len())
	})

	t.Run("unknown id", func(t *testing.T) {
		tree := sampleTree(t)
		dup, cloneID := tree.Duplicate("missing")
		assert.Empty(t, cloneID)
		assert.Same(t, tree, dup)
	})
}

func TestTree_Insert(t *testing.T) {
	t.Run("into container appends last", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.InsertIntoContainer("c1", Block{ID: "n1", Type: BlockTypeButton})
		require.NoError(t, err)
		pos, _ := out.FindParentList("n1")
		assert.Equal(t, ParentList{ContainerID: "c1", Index: 2}, pos)
	})

	t.Run("into non-container is a no-op", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.InsertIntoContainer("x1", Block{ID: "n1", Type: BlockTypeButton})
		assert.ErrorIs(t, err, ErrNotContainer)
		assert.Same(t, tree, out)
	})

	t.Run("after sibling", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.InsertAfter("t1", Block{ID: "n1", Type: BlockTypeText})
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "t1", "n1", "i1", "x1"}, out.IDs())
	})

	t.Run("after unknown sibling", func(t *testing.T) {
		tree := sampleTree(t)
		_, err := tree.InsertAfter("missing", Block{ID: "n1", Type: BlockTypeText})
		assert.ErrorIs(t, err, ErrBlockNotFound)
	})

	t.Run("colliding ids are rejected", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.InsertAtRoot(Block{
			ID:       "n1",
			Type:     BlockTypeContainer,
			Children: []Block{{ID: "i1", Type: BlockTypeImage}},
		})
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Same(t, tree, out)
	})

	t.Run("drop rule", func(t *testing.T) {
		tree := sampleTree(t)

		out, err := tree.InsertAt(BlockTarget("c1"), Block{ID: "a", Type: BlockTypeText})
		require.NoError(t, err)
		pos, _ := out.FindParentList("a")
		assert.Equal(t, ParentList{ContainerID: "c1", Index: 2}, pos)

		out, err = out.InsertAt(BlockTarget("t1"), Block{ID: "b", Type: BlockTypeText})
		require.NoError(t, err)
		pos, _ = out.FindParentList("b")
		assert.Equal(t, ParentList{ContainerID: "c1", Index: 1}, pos)

		out, err = out.InsertAt(RootTarget(), Block{ID: "c", Type: BlockTypeText})
		require.NoError(t, err)
		pos, _ = out.FindParentList("c")
		assert.Equal(t, ParentList{ContainerID: "", Index: 2}, pos)
	})
}

func TestTree_Move(t *testing.T) {
	t.Run("into container", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.Move("x1", BlockTarget("c1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "t1", "i1", "x1"}, out.IDs())
		pos, _ := out.FindParentList("x1")
		assert.Equal(t, "c1", pos.ContainerID)
		assert.Equal(t, tree.Len(), out.Len())
	})

	t.Run("to root", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.Move("t1", RootTarget())
		require.NoError(t, err)
		pos, _ := out.FindParentList("t1")
		assert.Equal(t, ParentList{ContainerID: "", Index: 2}, pos)
	})

	t.Run("after a leaf", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.Move("t1", BlockTarget("x1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "i1", "x1", "t1"}, out.IDs())
	})

	t.Run("onto itself", func(t *testing.T) {
		tree := sampleTree(t)
		out, err := tree.Move("c1", BlockTarget("c1"))
		assert.ErrorIs(t, err, ErrCyclicMove)
		assert.Same(t, tree, out)
	})

	t.Run("into a descendant", func(t *testing.T) {
		blocks := []Block{{
			ID:   "outer",
			Type: BlockTypeContainer,
			Children: []Block{{
				ID:       "inner",
				Type:     BlockTypeContainer,
				Children: []Block{},
			}},
		}}
		tree, err := NewTree(blocks)
		require.NoError(t, err)

		out, err := tree.Move("outer", BlockTarget("inner"))
		assert.ErrorIs(t, err, ErrCyclicMove)
		assert.Same(t, tree, out)
	})

	t.Run("unknown block", func(t *testing.T) {
		tree := sampleTree(t)
		_, err := tree.Move("missing", RootTarget())
		assert.ErrorIs(t, err, ErrBlockNotFound)
	})
}

func TestTree_IDsStayUniqueUnderInsertAndDuplicate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := EmptyTree()

	for i := 0; i < 300; i++ {
		ids := tree.IDs()
		switch {
		case len(ids) == 0 || rng.Intn(3) == 0:
			b, err := NewDefaultBlock(AllBlockTypes[rng.Intn(len(AllBlockTypes))])
			require.NoError(t, err)
			target := RootTarget()
			if len(ids) > 0 && rng.Intn(2) == 0 {
				target = BlockTarget(ids[rng.Intn(len(ids))])
			}
			tree, err = tree.InsertAt(target, b)
			require.NoError(t, err)
		default:
			var cloneID string
			tree, cloneID = tree.Duplicate(ids[rng.Intn(len(ids))])
			require.NotEmpty(t, cloneID)
		}

		seen := make(map[string]bool)
		for _, id := range tree.IDs() {
			require.False(t, seen[id], "id %s appears twice", id)
			seen[id] = true
		}
		require.Equal(t, tree.Len(), len(seen))
	}
}

func TestTree_MoveKeepsNodeCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := EmptyTree()
	for i := 0; i < 40; i++ {
		b, err := NewDefaultBlock(AllBlockTypes[rng.Intn(len(AllBlockTypes))])
		require.NoError(t, err)
		ids := tree.IDs()
		target := RootTarget()
		if len(ids) > 0 {
			target = BlockTarget(ids[rng.Intn(len(ids))])
		}
		tree, err = tree.InsertAt(target, b)
		require.NoError(t, err)
	}

	for i := 0; i < 200; i++ {
		ids := tree.IDs()
		id := ids[rng.Intn(len(ids))]
		target := BlockTarget(ids[rng.Intn(len(ids))])

		out, err := tree.Move(id, target)
		if err != nil {
			assert.ErrorIs(t, err, ErrCyclicMove)
			assert.Same(t, tree, out)
			continue
		}

		assert.Equal(t, tree.Len(), out.Len())
		occurrences := 0
		for _, other := range out.IDs() {
			if other == id {
				occurrences++
			}
		}
		assert.Equal(t, 1, occurrences)
		tree = out
	}
}

func TestBlock_MarshalJSON(t *testing.T) {
	container, err := json.Marshal(Block{ID: "c", Type: BlockTypeContainer})
	require.NoError(t, err)
	assert.Contains(t, string(container), `"children":[]`)

	text, err := json.Marshal(Block{ID: "x", Type: BlockTypeText, Content: "hi"})
	require.NoError(t, err)
	assert.NotContains(t, string(text), "children")

	blocks, err := UnmarshalBlocks(container)
	assert.Error(t, err, "a single object is not a block list")
	assert.Nil(t, blocks)

	blocks, err = UnmarshalBlocks([]byte(`[{"id":"c","type":"container","styles":{},"children":[{"id":"t","type":"title","content":"Hi","styles":{"fontSize":"20px"}}]}]`))
	require.NoError(t, err)
	require.Len(t, blocks[0].Children, 1)
	assert.Equal(t, "20px", *blocks[0].Children[0].Styles.FontSize)
}
