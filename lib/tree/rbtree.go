package tree

// RBNode is an intrusive red-black tree node.
//
// The node neither searches nor compares values. The caller walks the tree,
// picks an empty child slot of a member node and calls InsertLeft or
// InsertRight on that member. Rotations may move the root, so the caller
// re-discovers it by Root() from any surviving member.
//
// The tree never allocates or frees nodes. A node removed by Remove is reset
// to the unattached state (no links, Black) and can be reused.
type RBNode[T any] struct {
	parent *RBNode[T]
	left   *RBNode[T]
	right  *RBNode[T]
	Value  T
	color  RBColor
}

func NewRBNode[T any](val T) *RBNode[T] {
	return &RBNode[T]{Value: val}
}

func (node *RBNode[T]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *RBNode[T]) Left() *RBNode[T] {
	if node == nil {
		return nil
	}
	return node.left
}

func (node *RBNode[T]) Right() *RBNode[T] {
	if node == nil {
		return nil
	}
	return node.right
}

func (node *RBNode[T]) Parent() *RBNode[T] {
	if node == nil {
		return nil
	}
	return node.parent
}

// IsRed and IsBlack treat a nil node as a black NIL leaf.
func (node *RBNode[T]) IsRed() bool {
	return node != nil && node.color == Red
}

func (node *RBNode[T]) IsBlack() bool {
	return node == nil || node.color == Black
}

func (node *RBNode[T]) IsRoot() bool {
	return node != nil && node.parent == nil
}

// IsLeaf reports whether the node has no children.
// Removing a root leaf empties the tree.
func (node *RBNode[T]) IsLeaf() bool {
	return node != nil && node.left == nil && node.right == nil
}

// IsAttached reports whether the node is linked with any other node.
func (node *RBNode[T]) IsAttached() bool {
	return node != nil && (node.parent != nil || node.left != nil || node.right != nil)
}

func (node *RBNode[T]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil node without direction")
	}
	if node.parent == nil {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

// Root walks the parent links up to the root of the tree.
func (node *RBNode[T]) Root() *RBNode[T] {
	aux := node
	for ; aux != nil && aux.parent != nil; aux = aux.parent {
	}
	return aux
}

func (node *RBNode[T]) Minimum() *RBNode[T] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *RBNode[T]) Maximum() *RBNode[T] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// Pred returns the previous node in the in-order sequence.
func (node *RBNode[T]) Pred() *RBNode[T] {
	if node == nil {
		return nil
	}
	if node.left != nil {
		return node.left.Maximum()
	}
	x, aux := node, node.parent
	// Backtrack to the first ancestor that x is on the right of.
	for aux != nil && x == aux.left {
		x, aux = aux, aux.parent
	}
	return aux
}

// Succ returns the next node in the in-order sequence.
func (node *RBNode[T]) Succ() *RBNode[T] {
	if node == nil {
		return nil
	}
	if node.right != nil {
		return node.right.Minimum()
	}
	x, aux := node, node.parent
	for aux != nil && x == aux.right {
		x, aux = aux, aux.parent
	}
	return aux
}

func (node *RBNode[T]) child(dir RBDirection) *RBNode[T] {
	if dir == Left {
		return node.left
	}
	return node.right
}

func (node *RBNode[T]) setChild(dir RBDirection, child *RBNode[T]) {
	if dir == Left {
		node.left = child
	} else {
		node.right = child
	}
}

func (node *RBNode[T]) reset() {
	node.parent, node.left, node.right = nil, nil, nil
	node.color = Black
}

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.

/*
rotate(Left) pivots X with its right child S:

	     |                         |
	     X                         S
	    / \     rotate(Left)      / \
	   L   S    ============>    X   Sd
	      / \                   / \
	    Sc   Sd                L   Sc

rotate(Right) is the mirror image, pivoting X with its left child.
*/
func (node *RBNode[T]) rotate(dir RBDirection) {
	pivot := node.child(dir.opposite())
	if pivot == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate without a pivot child")
	}

	p, nodeDir := node.parent, node.Direction()
	inner := pivot.child(dir)

	node.setChild(dir.opposite(), inner)
	if inner != nil {
		inner.parent = node
	}
	pivot.setChild(dir, node)
	node.parent = pivot

	pivot.parent = p
	if p != nil {
		p.setChild(nodeDir, pivot)
	}
}

// InsertLeft attaches x as the left child of node and rebalances.
// The left slot of node must be empty and x must be unattached.
func (node *RBNode[T]) InsertLeft(x *RBNode[T]) {
	node.insert(Left, x)
}

// InsertRight attaches x as the right child of node and rebalances.
// The right slot of node must be empty and x must be unattached.
func (node *RBNode[T]) InsertRight(x *RBNode[T]) {
	node.insert(Right, x)
}

func (node *RBNode[T]) insert(dir RBDirection, x *RBNode[T]) {
	if node == nil || x == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] insert with a nil node")
	}
	x.left, x.right = nil, nil
	x.parent = node
	x.color = Red
	node.setChild(dir, x)

	for aux := x; aux != nil; aux = aux.insertRebalanceStep() {
	}
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X is the root. Repaint it into black.

im2: X's parent P is black. Nothing violated.

im3: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
Repaint and continue from G, which may be red-violated now.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: P is red, U is black, X and P are on different sides (triangle).
Rotate P away from X's side. P becomes the current node and enters im5.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: P is red, U is black, X and P are on the same side (line).

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (node *RBNode[T]) insertRebalanceStep() *RBNode[T] {
	if /* im1 */ node.parent == nil {
		node.color = Black
		return nil
	}

	p := node.parent
	if /* im2 */ p.IsBlack() {
		return nil
	}

	gp := p.parent
	if gp == nil {
		// A red root only appears transiently, repaint it.
		p.color = Black
		return nil
	}

	pDir := p.Direction()
	if /* im3 */ uncle := gp.child(pDir.opposite()); uncle.IsRed() {
		uncle.color = Black
		p.color = Black
		gp.color = Red
		return gp
	}

	if /* im4 */ dir := node.Direction(); dir != pDir {
		p.rotate(dir.opposite())
		return p
	}

	/* im5 */
	p.color = Black
	gp.color = Red
	gp.rotate(pDir.opposite())
	return nil
}

/*
Remove detaches node from its tree and rebalances.

r1: Node Z has two children.
Find the in-order successor S (leftmost node of the right subtree) and swap
the positions of Z and S, including their colors. Values stay in their nodes.
Z then sits in S's old slot and has at most one (right) child.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   swap(Z, S)   L  ..
	    |   =========>       |
	    P                    P
	   / \                  / \
	  S  ..                Z  ..
	   \                    \
	   Sr                   Sr

r2: Node Z has one child C. Transplant C into Z's slot.
If Z was black, C is either red (repaint into black) or needs the fixup.

r3: Node Z has no child. Z itself acts as a NIL placeholder during the fixup
and is unlinked from its parent afterwards.
*/
func (node *RBNode[T]) Remove() {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] remove a nil node")
	}

	if /* r1 */ node.left != nil && node.right != nil {
		node.swapWithSucc()
	}

	var replacer *RBNode[T]
	switch {
	case /* r2 */ node.left != nil:
		replacer = node.left
		node.transplant(replacer)
	case /* r2 */ node.right != nil:
		replacer = node.right
		node.transplant(replacer)
	default: /* r3 */
		replacer = node
	}

	if node.color == Black {
		for aux := replacer; aux != nil; aux = aux.removeRebalanceStep() {
		}
	}
	// Either the removed node was red and the replacer is black already,
	// or the removed node was black and the replacer inherits its color.
	replacer.color = Black

	if replacer == node && node.parent != nil {
		node.parent.setChild(node.Direction(), nil)
	}
	node.reset()
}

// transplant links the replacer to node's parent in node's slot.
// Node keeps its own links.
func (node *RBNode[T]) transplant(replacer *RBNode[T]) {
	replacer.parent = node.parent
	if node.parent != nil {
		node.parent.setChild(node.Direction(), replacer)
	}
}

// swapWithSucc exchanges the tree positions and colors of node and its
// in-order successor. Node must have two children.
func (node *RBNode[T]) swapWithSucc() {
	succ := node.right.Minimum()
	p, dir := node.parent, node.Direction()
	l, r := node.left, node.right
	sp, sr := succ.parent, succ.right

	succ.parent = p
	if p != nil {
		p.setChild(dir, succ)
	}
	succ.left = l
	l.parent = succ

	if succ == r {
		succ.right = node
		node.parent = succ
	} else {
		succ.right = r
		r.parent = succ
		sp.left = node
		node.parent = sp
	}

	node.left = nil
	node.right = sr
	if sr != nil {
		sr.parent = node
	}
	node.color, succ.color = succ.color, node.color
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black (double black). Sc is the child of the sibling S on
X's side (near nephew), Sd is the other one (far nephew).

rm1: X is the root or red. Repaint X into black and stop.

rm2: S is red, so P, Sc and Sd are black.
Repaint S black and P red, rotate P towards X. Retry with the new sibling.

	  [P]                   <S>               [S]
	  / \    rotate(P)      / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd] ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm3: S, Sc and Sd are black.
Repaint S red, which removes a black from S's side as well.
Move the extra black up to P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: S is black, Sc is red and Sd is black.
Repaint Sc black and S red, rotate S away from X. Enters rm5.

	                        {P}
	  {P}                   / \
	  / \    rotate(S)    [X] [Sc]
	[X] [S]  ==========>        \
	    / \                     <S>
	  <Sc> [Sd]                   \
	                              [Sd]

rm5: S is black and Sd is red.
S takes P's color, P and Sd are repainted black, rotate P towards X. Done.

	  {P}                   {S}
	  / \    rotate(P)      / \
	[X] [S]  ==========>  [P] [Sd]
	    / \               / \
	 [Sc] <Sd>          [X] [Sc]
*/
func (node *RBNode[T]) removeRebalanceStep() *RBNode[T] {
	if /* rm1 */ node.parent == nil || node.color == Red {
		node.color = Black
		return nil
	}

	p, dir := node.parent, node.Direction()
	sibling := p.child(dir.opposite())
	if sibling == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] double black node without sibling")
	}

	if /* rm2 */ sibling.color == Red {
		sibling.color = Black
		p.color = Red
		p.rotate(dir)
		return node
	}

	sc, sd := sibling.child(dir), sibling.child(dir.opposite())
	if /* rm3 */ sc.IsBlack() && sd.IsBlack() {
		sibling.color = Red
		return p
	}

	if /* rm4 */ sd.IsBlack() {
		sc.color = Black
		sibling.color = Red
		sibling.rotate(dir.opposite())
		return node
	}

	/* rm5 */
	sibling.color = p.color
	p.color = Black
	sd.color = Black
	p.rotate(dir)
	return nil
}
