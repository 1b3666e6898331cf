package node

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

func checkWorld(t *testing.T, n Node) {
	t.Helper()
	want := n.LocalMatrix()
	if p := n.Parent(); p != nil {
		want = p.WorldMatrix().Mul(n.LocalMatrix())
	}
	assert.True(t, common.ApproxEqual(want, n.WorldMatrix(), tol), "world matrix of %q", n.Name())
	for _, c := range n.Children() {
		checkWorld(t, c)
	}
}

func TestRootWorldEqualsLocal(t *testing.T) {
	n := NewNode(WithPosition(common.Vec3{1, 2, 3}), WithScale(common.Vec3{2, 2, 2}))
	assert.Equal(t, n.LocalMatrix(), n.WorldMatrix())
	assert.Nil(t, n.Parent())
}

func TestWorldComposesWithParent(t *testing.T) {
	ground := NewNode(WithName("ground"), WithPosition(common.Vec3{10, 0, 10}), WithScale(common.Vec3{10, 10, 10}))
	train := NewNode(WithName("train"), WithScale(common.Vec3{0.1, 0.1, 0.1}))
	chest := NewNode(WithName("chest"), WithPosition(common.Vec3{0, 0, -1}))

	require.NoError(t, ground.AddChild(train))
	require.NoError(t, train.AddChild(chest))

	checkWorld(t, ground)

	origin := chest.WorldMatrix().TransformPoint(common.Vec3{})
	assert.InDelta(t, 10, origin[0], tol)
	assert.InDelta(t, 0, origin[1], tol)
	assert.InDelta(t, 9, origin[2], tol)
}

func TestParentMutationInvalidatesDescendants(t *testing.T) {
	root := NewNode(WithName("root"))
	mid := NewNode(WithName("mid"), WithPosition(common.Vec3{0, 1, 0}))
	leaf := NewNode(WithName("leaf"), WithPosition(common.Vec3{0, 0, 1}))
	require.NoError(t, root.AddChild(mid))
	require.NoError(t, mid.AddChild(leaf))

	_ = leaf.WorldMatrix()

	root.SetPosition(common.Vec3{5, 0, 0})
	root.SetRotation(common.Vec3{0, 0.5, 0})

	checkWorld(t, root)
	p := leaf.WorldMatrix().TransformPoint(common.Vec3{})
	assert.InDelta(t, 5+0.479425539, p[0], tol)
	assert.InDelta(t, 1, p[1], tol)
	assert.InDelta(t, 0.877582562, p[2], tol)
}

func TestRepeatedReparenting(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	nodes := make([]Node, 12)
	for i := range nodes {
		nodes[i] = NewNode(
			WithName(string(rune('a'+i))),
			WithPosition(common.Vec3{rng.Float32()*4 - 2, rng.Float32()*4 - 2, rng.Float32()*4 - 2}),
			WithRotation(common.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}),
			WithScale(common.Vec3{0.5 + rng.Float32(), 0.5 + rng.Float32(), 0.5 + rng.Float32()}),
		)
	}
	root := NewNode(WithName("root"))
	for _, n := range nodes {
		require.NoError(t, root.AddChild(n))
	}

	for round := 0; round < 200; round++ {
		child := nodes[rng.Intn(len(nodes))]
		parent := nodes[rng.Intn(len(nodes))]
		err := parent.AddChild(child)
		if child == parent || IsAncestor(child, parent) {
			assert.ErrorIs(t, err, ErrCycle)
		} else {
			require.NoError(t, err)
			assert.Equal(t, parent, child.Parent())
		}
		if round%10 == 0 {
			nodes[rng.Intn(len(nodes))].SetPosition(common.Vec3{rng.Float32(), rng.Float32(), rng.Float32()})
		}
		checkWorld(t, root)
	}
}

func TestAddChildRejectsCycles(t *testing.T) {
	a := NewNode(WithName("a"))
	b := NewNode(WithName("b"))
	c := NewNode(WithName("c"))
	require.NoError(t, a.AddChild(b))
	require.NoError(t, b.AddChild(c))

	assert.ErrorIs(t, c.AddChild(a), ErrCycle)
	assert.ErrorIs(t, a.AddChild(a), ErrCycle)
	assert.Equal(t, b, c.Parent())
}

func TestReparentDetachesFromPreviousParent(t *testing.T) {
	a := NewNode()
	b := NewNode()
	c := NewNode()
	require.NoError(t, a.AddChild(c))
	require.NoError(t, b.AddChild(c))

	assert.Empty(t, a.Children())
	assert.Len(t, b.Children(), 1)
	assert.Equal(t, b, c.Parent())
}

func TestRemoveChild(t *testing.T) {
	parent := NewNode(WithPosition(common.Vec3{3, 0, 0}))
	child := NewNode(WithPosition(common.Vec3{1, 0, 0}))
	require.NoError(t, parent.AddChild(child))
	assert.InDelta(t, 4, child.WorldMatrix()[12], tol)

	assert.True(t, parent.RemoveChild(child))
	assert.False(t, parent.RemoveChild(child))
	assert.Nil(t, child.Parent())
	assert.InDelta(t, 1, child.WorldMatrix()[12], tol)
}

type tagged struct {
	Node
	tag string
}

func TestBindReturnsEmbeddingType(t *testing.T) {
	parent := &tagged{Node: NewNode(), tag: "parent"}
	parent.Bind(parent)
	child := &tagged{Node: NewNode(), tag: "child"}
	child.Bind(child)

	require.NoError(t, parent.AddChild(child))

	got, ok := parent.Children()[0].(*tagged)
	require.True(t, ok)
	assert.Equal(t, "child", got.tag)
	gotParent, ok := child.Parent().(*tagged)
	require.True(t, ok)
	assert.Equal(t, "parent", gotParent.tag)
}

func TestWalkOrder(t *testing.T) {
	root := NewNode(WithName("root"))
	a := NewNode(WithName("a"))
	b := NewNode(WithName("b"))
	a1 := NewNode(WithName("a1"))
	require.NoError(t, root.AddChild(a))
	require.NoError(t, root.AddChild(b))
	require.NoError(t, a.AddChild(a1))

	var names []string
	var depths []int
	Walk(root, func(n Node, depth int) bool {
		names = append(names, n.Name())
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "b"}, names)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	names = nil
	Walk(root, func(n Node, _ int) bool {
		names = append(names, n.Name())
		return n.Name() != "a"
	})
	assert.Equal(t, []string{"root", "a", "b"}, names)
}

func TestTransformMatrices(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, common.Identity(), tr.Matrix())

	tr.Scale = common.Vec3{2, 4, 8}
	n := tr.NormalMatrix()
	assert.InDelta(t, 0.5, n[0], tol)
	assert.InDelta(t, 0.25, n[4], tol)
	assert.InDelta(t, 0.125, n[8], tol)
}
