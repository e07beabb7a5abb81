package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

type expectedNode struct {
	val         int
	color       RBColor
	left, right *expectedNode
}

func bt(val int, color RBColor, children ...*expectedNode) *expectedNode {
	n := &expectedNode{val: val, color: color}
	if len(children) > 0 {
		n.left = children[0]
	}
	if len(children) > 1 {
		n.right = children[1]
	}
	return n
}

func requireTreeEqual(t *testing.T, expected *expectedNode, actual *RBNode[int]) {
	t.Helper()
	if expected == nil {
		require.Nil(t, actual)
		return
	}
	require.NotNil(t, actual, "expected node %d", expected.val)
	require.Equal(t, expected.val, actual.Value)
	require.Equal(t, expected.color, actual.Color(), "color of node %d", expected.val)
	if actual.Left() != nil {
		require.Same(t, actual, actual.Left().Parent())
	}
	if actual.Right() != nil {
		require.Same(t, actual, actual.Right().Parent())
	}
	requireTreeEqual(t, expected.left, actual.Left())
	requireTreeEqual(t, expected.right, actual.Right())
}

func requireDetached(t *testing.T, node *RBNode[int]) {
	t.Helper()
	require.False(t, node.IsAttached())
	require.Nil(t, node.Parent())
	require.Nil(t, node.Left())
	require.Nil(t, node.Right())
	require.Equal(t, Black, node.Color())
}

type scenario struct {
	root  *RBNode[int]
	nodes map[int]*RBNode[int]
}

func (s *scenario) node(val int) *RBNode[int] {
	n := NewRBNode(val)
	s.nodes[val] = n
	return n
}

// 0 as root, 1 right of root, 2 right of 1, line case.
func newInitialState() *scenario {
	s := &scenario{nodes: make(map[int]*RBNode[int])}
	s.root = s.node(0)
	s.root.InsertRight(s.node(1))
	s.root.Right().InsertRight(s.node(2))
	s.root = s.root.Root()
	return s
}

func newRedUncleCase() *scenario {
	s := newInitialState()
	s.root.Right().InsertRight(s.node(3))
	s.root = s.root.Root()
	return s
}

func newLineCase() *scenario {
	s := newRedUncleCase()
	s.root.Right().Right().InsertRight(s.node(4))
	s.root = s.root.Root()
	return s
}

func newTriangleCase() *scenario {
	s := newLineCase()
	s.root.Left().InsertLeft(s.node(-2))
	s.root.Left().Left().InsertRight(s.node(-1))
	s.root = s.root.Root()
	return s
}

func TestRBNodeUnattached(t *testing.T) {
	n := NewRBNode("x")
	require.Equal(t, "x", n.Value)
	require.True(t, n.IsRoot())
	require.True(t, n.IsLeaf())
	require.True(t, n.IsBlack())
	require.False(t, n.IsAttached())
	require.Same(t, n, n.Root())
	require.Equal(t, Root, n.Direction())

	var zero RBNode[int]
	require.Equal(t, Black, zero.Color())

	var nilNode *RBNode[int]
	require.True(t, nilNode.IsBlack())
	require.False(t, nilNode.IsRed())
	require.Nil(t, nilNode.Left())
	require.Nil(t, nilNode.Root())
	require.Nil(t, nilNode.Succ())
	require.NoError(t, Validate(nilNode))
}

func TestInsert_InitialState(t *testing.T) {
	s := newInitialState()
	requireTreeEqual(t, bt(1, Black, bt(0, Red), bt(2, Red)), s.root)
	require.NoError(t, Validate(s.root))
}

func TestInsert_RedUncleCase(t *testing.T) {
	s := newRedUncleCase()
	requireTreeEqual(t, bt(1, Black,
		bt(0, Black),
		bt(2, Black, nil, bt(3, Red)),
	), s.root)
	require.NoError(t, Validate(s.root))
}

func TestInsert_LineCase(t *testing.T) {
	s := newLineCase()
	requireTreeEqual(t, bt(1, Black,
		bt(0, Black),
		bt(3, Black, bt(2, Red), bt(4, Red)),
	), s.root)
	require.NoError(t, Validate(s.root))
}

func TestInsert_TriangleCase(t *testing.T) {
	s := newTriangleCase()
	requireTreeEqual(t, bt(1, Black,
		bt(-1, Black, bt(-2, Red), bt(0, Red)),
		bt(3, Black, bt(2, Red), bt(4, Red)),
	), s.root)
	require.NoError(t, Validate(s.root))
}

func TestRemove_SuccessorIsRightChild(t *testing.T) {
	s := newLineCase()
	three := s.nodes[3]
	three.Remove()
	requireDetached(t, three)
	s.root = s.root.Root()

	requireTreeEqual(t, bt(1, Black,
		bt(0, Black),
		bt(4, Black, bt(2, Red)),
	), s.root)
	require.NoError(t, Validate(s.root))
	require.NoError(t, RedViolationValidate(s.root))
	require.NoError(t, BlackViolationValidate(s.root))
}

func TestRemove_SuccessorDeeperInRightSubtree(t *testing.T) {
	s := newTriangleCase()
	one := s.nodes[1]
	require.True(t, one.IsRoot())
	survivor := one.Left()
	one.Remove()
	requireDetached(t, one)
	s.root = survivor.Root()

	requireTreeEqual(t, bt(2, Black,
		bt(-1, Black, bt(-2, Red), bt(0, Red)),
		bt(3, Black, nil, bt(4, Red)),
	), s.root)
	require.NoError(t, Validate(s.root))
}

func TestRemove_BlackLeafFixups(t *testing.T) {
	s := newLineCase()
	zero := s.nodes[0]
	zero.Remove()
	requireDetached(t, zero)
	s.root = s.nodes[4].Root()

	// 0 was a black leaf with a black sibling 3 whose far child 4 is red.
	requireTreeEqual(t, bt(3, Black,
		bt(1, Black, nil, bt(2, Red)),
		bt(4, Black),
	), s.root)
	require.NoError(t, Validate(s.root))

	four := s.nodes[4]
	four.Remove()
	s.root = s.nodes[1].Root()
	// 4 was a black leaf, its sibling 1 has only the near child 2 red.
	requireTreeEqual(t, bt(2, Black, bt(1, Black), bt(3, Black)), s.root)
	require.NoError(t, Validate(s.root))
}

func TestRemove_LastNode(t *testing.T) {
	root := NewRBNode(7)
	require.True(t, root.IsRoot() && root.IsLeaf())
	root.Remove()
	requireDetached(t, root)

	root.InsertRight(NewRBNode(8))
	require.Equal(t, 8, root.Right().Value)
	require.Equal(t, Red, root.Right().Color())
}

func TestRotate(t *testing.T) {
	s := newLineCase()
	// 1(0, 3(2, 4)), rotate the root to the left.
	s.root.rotate(Left)
	s.root = s.nodes[1].Root()
	require.Equal(t, 3, s.root.Value)
	require.Nil(t, s.root.Parent())
	require.Equal(t, 1, s.root.Left().Value)
	require.Equal(t, 4, s.root.Right().Value)
	require.Equal(t, 0, s.root.Left().Left().Value)
	require.Equal(t, 2, s.root.Left().Right().Value)
	require.Same(t, s.root.Left(), s.nodes[2].Parent())

	s.root.rotate(Right)
	s.root = s.nodes[1].Root()
	require.Equal(t, 1, s.root.Value)
	require.Same(t, s.nodes[3], s.root.Right())
	require.Same(t, s.nodes[2], s.nodes[3].Left())

	require.Panics(t, func() {
		s.nodes[0].rotate(Left)
	})
}

func TestSuccPred(t *testing.T) {
	s := newTriangleCase()
	var got []int
	for aux := s.root.Minimum(); aux != nil; aux = aux.Succ() {
		got = append(got, aux.Value)
	}
	require.Equal(t, []int{-2, -1, 0, 1, 2, 3, 4}, got)

	got = got[:0]
	for aux := s.root.Maximum(); aux != nil; aux = aux.Pred() {
		got = append(got, aux.Value)
	}
	require.Equal(t, []int{4, 3, 2, 1, 0, -1, -2}, got)
}

func TestValidateDetectsViolations(t *testing.T) {
	s := newLineCase()
	s.nodes[1].color = Red
	require.ErrorIs(t, Validate(s.root), ErrRBTreeRedRoot)

	s = newLineCase()
	s.nodes[3].color = Red
	err := Validate(s.root)
	require.ErrorIs(t, err, ErrRBTreeRedViolation)
	require.ErrorIs(t, err, ErrRBTreeBlackViolation)
	require.ErrorIs(t, RedViolationValidate(s.root), ErrRBTreeRedViolation)

	s = newLineCase()
	s.nodes[0].color = Red
	require.ErrorIs(t, Validate(s.root), ErrRBTreeBlackViolation)
	require.ErrorIs(t, BlackViolationValidate(s.root), ErrRBTreeBlackViolation)
	require.Equal(t, -1, BlackHeight(s.root))

	s = newLineCase()
	s.nodes[4].parent = s.nodes[2]
	require.ErrorIs(t, Validate(s.root), ErrRBTreeBrokenLink)

	s = newLineCase()
	require.NoError(t, Validate(s.root))
	require.Equal(t, 1, BlackHeight(s.root))
	require.Equal(t, 0, BlackHeight(s.nodes[3]))
	require.Equal(t, 1, BlackHeight(s.nodes[0].Parent()))
}

// randomSlot descends randomly to an empty child slot.
func randomSlot[T any](rnd *randv2.Rand, root *RBNode[T]) (*RBNode[T], RBDirection) {
	aux := root
	for {
		dir := Left
		if rnd.IntN(2) == 1 {
			dir = Right
		}
		next := aux.child(dir)
		if next == nil {
			return aux, dir
		}
		aux = next
	}
}

func insertAt[T any](parent *RBNode[T], dir RBDirection, x *RBNode[T]) {
	if dir == Left {
		parent.InsertLeft(x)
	} else {
		parent.InsertRight(x)
	}
}

func TestRandomInsertInvariants(t *testing.T) {
	total := 100_000
	if testing.Short() {
		total = 10_000
	}
	rnd := randv2.New(randv2.NewPCG(1, 2))
	root := NewRBNode(0)
	for i := 1; i < total; i++ {
		parent, dir := randomSlot(rnd, root)
		insertAt(parent, dir, NewRBNode(i))
		root = root.Root()
		if err := Validate(root); err != nil {
			require.NoError(t, err, "after insertion %d", i)
		}
	}
	require.True(t, root.IsBlack())
}

func TestInsertKeepsInorderSequence(t *testing.T) {
	rnd := randv2.New(randv2.NewPCG(3, 4))
	root := NewRBNode(0)
	expected := []*RBNode[int]{root}
	for i := 1; i < 2_000; i++ {
		parent, dir := randomSlot(rnd, root)
		x := NewRBNode(i)
		// A left child directly precedes its parent in order, a right child directly follows it.
		idx := slices.Index(expected, parent)
		if dir == Right {
			idx++
		}
		expected = slices.Insert(expected, idx, x)
		insertAt(parent, dir, x)
		root = root.Root()

		actual := make([]*RBNode[int], 0, len(expected))
		InorderForeach(root, func(_ int64, node *RBNode[int]) bool {
			actual = append(actual, node)
			return true
		})
		require.Equal(t, len(expected), len(actual))
		for j := range expected {
			if expected[j] != actual[j] {
				require.Same(t, expected[j], actual[j], "position %d after insertion %d", j, i)
			}
		}
	}
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	for seed := uint64(0); seed < 8; seed++ {
		rnd := randv2.New(randv2.NewPCG(seed, seed*31+7))
		n := 500 + rnd.IntN(500)
		nodes := make([]*RBNode[int], n)
		for i := range nodes {
			nodes[i] = NewRBNode(i)
		}

		root := nodes[0]
		for _, x := range nodes[1:] {
			parent, dir := randomSlot(rnd, root)
			insertAt(parent, dir, x)
			root = root.Root()
		}
		require.NoError(t, Validate(root))
		positions := make(map[*RBNode[int]]int, n)
		InorderForeach(root, func(idx int64, node *RBNode[int]) bool {
			positions[node] = int(idx)
			return true
		})
		require.Len(t, positions, n)

		rnd.Shuffle(len(nodes), func(i, j int) {
			nodes[i], nodes[j] = nodes[j], nodes[i]
		})
		for i, z := range nodes {
			survivor := root
			if z == root {
				if survivor = z.Left(); survivor == nil {
					survivor = z.Right()
				}
			}
			wasLast := z.IsRoot() && z.IsLeaf()
			z.Remove()
			requireDetached(t, z)
			root = survivor.Root()
			require.Equal(t, i == n-1, wasLast)
			if root == nil {
				continue
			}
			require.NoError(t, Validate(root), "seed %d removal %d", seed, i)

			// Removal keeps the relative order of the remaining nodes.
			prev := -1
			InorderForeach(root, func(_ int64, node *RBNode[int]) bool {
				pos := positions[node]
				if pos <= prev {
					require.Greater(t, pos, prev)
				}
				prev = pos
				return true
			})
		}
		require.Nil(t, root)
	}
}

func TestInterleavedInsertRemove(t *testing.T) {
	rnd := randv2.New(randv2.NewPCG(42, 24))
	members := []*RBNode[int]{NewRBNode(0)}
	spare := make([]*RBNode[int], 0, 64)
	root := members[0]
	for i := 1; i < 20_000; i++ {
		if len(members) > 1 && rnd.IntN(3) == 0 {
			idx := rnd.IntN(len(members))
			z := members[idx]
			members[idx] = members[len(members)-1]
			members = members[:len(members)-1]

			survivor := root
			if z == root {
				survivor = members[0]
			}
			z.Remove()
			requireDetached(t, z)
			root = survivor.Root()
			spare = append(spare, z)
		} else {
			var x *RBNode[int]
			if len(spare) > 0 && rnd.IntN(2) == 0 {
				// Removed nodes are reusable as is.
				x, spare = spare[len(spare)-1], spare[:len(spare)-1]
			} else {
				x = NewRBNode(i)
			}
			parent, dir := randomSlot(rnd, root)
			insertAt(parent, dir, x)
			members = append(members, x)
			root = root.Root()
		}
		if i%97 == 0 {
			require.NoError(t, Validate(root), "step %d", i)
		}
	}
	require.NoError(t, Validate(root))

	cnt := 0
	InorderForeach(root, func(_ int64, _ *RBNode[int]) bool {
		cnt++
		return true
	})
	require.Equal(t, len(members), cnt)
}

func BenchmarkRandomInsert(b *testing.B) {
	rnd := randv2.New(randv2.NewPCG(5, 6))
	root := NewRBNode(0)
	nodes := make([]*RBNode[int], b.N)
	for i := range nodes {
		nodes[i] = NewRBNode(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		parent, dir := randomSlot(rnd, root)
		insertAt(parent, dir, nodes[i])
		root = root.Root()
	}
}
