package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrRBTreeRedViolation   = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation = errors.New("[rbtree] black violation")
	ErrRBTreeRedRoot        = errors.New("[rbtree] root is red")
	ErrRBTreeBrokenLink     = errors.New("[rbtree] child and parent links mismatch")
)

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// InorderForeach visits the subtree of root in order until action returns false.
func InorderForeach[T any](root *RBNode[T], action func(idx int64, node *RBNode[T]) bool) {
	if root == nil {
		return
	}

	stack := make([]*RBNode[T], 0, 32)
	defer func() {
		clear(stack)
	}()

	aux := root
	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if !action(idx, aux) {
			return
		}
		idx++
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// RedViolationValidate walks in order and reports a red node with a red
// parent or a red child.
func RedViolationValidate[T any](root *RBNode[T]) (err error) {
	InorderForeach[T](root, func(idx int64, node *RBNode[T]) bool {
		if node.IsRed() && (node.parent.IsRed() || node.left.IsRed() || node.right.IsRed()) {
			err = ErrRBTreeRedViolation
			return false
		}
		return true
	})
	return err
}

func blackDepthTo[T any](target, to *RBNode[T]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.parent {
		if aux.IsBlack() {
			depth++
		}
	}
	return depth
}

// BFS traversal to load all nodes that own at least one NIL leaf.
func bfsLeaves[T any](root *RBNode[T]) []*RBNode[T] {
	if root == nil {
		return nil
	}

	leaves := make([]*RBNode[T], 0, 16)
	queue := []*RBNode[T]{root}
	for len(queue) > 0 {
		aux := queue[0]
		queue = queue[1:]
		if /* nil leaves, keep one */ aux.left == nil || aux.right == nil {
			leaves = append(leaves, aux)
		}
		if aux.left != nil {
			queue = append(queue, aux.left)
		}
		if aux.right != nil {
			queue = append(queue, aux.right)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
	        /  \
	     <8>    [15]
	     / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Each NIL leaf to root node black depth are equal.
*/
func BlackViolationValidate[T any](root *RBNode[T]) error {
	leaves := bfsLeaves[T](root)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[T](leaves[0], root.parent)
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[T](leaves[i], root.parent) != blackDepth {
			return ErrRBTreeBlackViolation
		}
	}
	return nil
}

// BlackHeight returns the number of black nodes on any path from root
// down to a NIL leaf, excluding root itself. It returns -1 if the paths
// disagree.
func BlackHeight[T any](root *RBNode[T]) int {
	h, _ := validateSubtree[T](root, root.Parent())
	if h > 0 && root.IsBlack() {
		h--
	}
	return h
}

// Validate checks all red-black properties of the tree rooted at root and
// the consistency of the parent links. All violations found are combined.
func Validate[T any](root *RBNode[T]) (merr error) {
	if root == nil {
		return nil
	}
	if root.parent != nil {
		merr = multierr.Append(merr, fmt.Errorf("%w: root has a parent", ErrRBTreeBrokenLink))
	}
	if root.IsRed() {
		merr = multierr.Append(merr, ErrRBTreeRedRoot)
	}
	_, err := validateSubtree[T](root, root.parent)
	return multierr.Append(merr, err)
}

func validateSubtree[T any](node, parent *RBNode[T]) (blackHeight int, merr error) {
	if node == nil {
		return 0, nil
	}
	if node.parent != parent {
		merr = multierr.Append(merr, ErrRBTreeBrokenLink)
	}
	if node.IsRed() && parent.IsRed() {
		merr = multierr.Append(merr, ErrRBTreeRedViolation)
	}

	lh, lerr := validateSubtree[T](node.left, node)
	rh, rerr := validateSubtree[T](node.right, node)
	if lerr != nil || rerr != nil {
		merr = multierr.Combine(merr, lerr, rerr)
	}
	if lh < 0 || rh < 0 || lh != rh {
		if lh >= 0 && rh >= 0 {
			merr = multierr.Append(merr, ErrRBTreeBlackViolation)
		}
		return -1, merr
	}
	if node.IsBlack() {
		lh++
	}
	return lh, merr
}
