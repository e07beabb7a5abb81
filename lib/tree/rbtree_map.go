package tree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/infra"
)

var (
	ErrRBTreeMapEmpty       = errors.New("[rbtree] empty element to remove")
	ErrRBTreeMapKeyNotFound = errors.New("[rbtree] key not found")
	ErrRBTreeMapKeyExists   = errors.New("[rbtree] key exists, replace disabled")
)

// rbTreeMap keeps keys ordered on top of the intrusive node. It searches
// before insert, checks membership before remove and caches the root.
// Not thread safe.
type rbTreeMap[K infra.OrderedKey, V any] struct {
	root    *RBNode[RBEntry[K, V]]
	count   int64
	compare infra.OrderedKeyComparator[K]
	logger  *zap.Logger
}

func (tree *rbTreeMap[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTreeMap[K, V]) Root() *RBNode[RBEntry[K, V]] {
	return tree.root
}

func (tree *rbTreeMap[K, V]) search(key K) *RBNode[RBEntry[K, V]] {
	for aux := tree.root; aux != nil; {
		res := tree.compare(key, aux.Value.Key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTreeMap[K, V]) Insert(key K, val V, ifNotPresent ...bool) error {
	z := NewRBNode(RBEntry[K, V]{Key: key, Val: val})
	if tree.root == nil {
		tree.root = z
		tree.count++
		return nil
	}

	var y *RBNode[RBEntry[K, V]]
	res := int64(0)
	for x := tree.root; x != nil; {
		y = x
		if res = tree.compare(key, x.Value.Key); /* equal */ res == 0 {
			break
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	if /* equal */ res == 0 {
		if len(ifNotPresent) > 0 && ifNotPresent[0] {
			return fmt.Errorf("%w: %v", ErrRBTreeMapKeyExists, key)
		}
		y.Value.Val = val
		return nil
	} else /* less */ if res < 0 {
		y.InsertLeft(z)
	} else /* greater */ {
		y.InsertRight(z)
	}

	// The old root is still a member, rotations only moved it downwards.
	tree.root = tree.root.Root()
	tree.count++
	return nil
}

func (tree *rbTreeMap[K, V]) Get(key K) (val V, err error) {
	z := tree.search(key)
	if z == nil {
		return val, ErrRBTreeMapKeyNotFound
	}
	return z.Value.Val, nil
}

func (tree *rbTreeMap[K, V]) removeNode(z *RBNode[RBEntry[K, V]]) *RBNode[RBEntry[K, V]] {
	// Keep a surviving member to find the new root from.
	survivor := tree.root
	if z == tree.root {
		if survivor = z.left; survivor == nil {
			survivor = z.right
		}
	}

	z.Remove()
	tree.count--
	tree.root = survivor.Root()
	if tree.root == nil && tree.count != 0 {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] lost the root with elements left")
	}
	return z
}

func (tree *rbTreeMap[K, V]) Remove(key K) (*RBNode[RBEntry[K, V]], error) {
	if tree.count <= 0 {
		return nil, ErrRBTreeMapEmpty
	}
	z := tree.search(key)
	if z == nil {
		return nil, fmt.Errorf("%w: %v", ErrRBTreeMapKeyNotFound, key)
	}
	return tree.removeNode(z), nil
}

func (tree *rbTreeMap[K, V]) RemoveMin() (*RBNode[RBEntry[K, V]], error) {
	if tree.count <= 0 {
		return nil, ErrRBTreeMapEmpty
	}
	return tree.removeNode(tree.root.Minimum()), nil
}

func (tree *rbTreeMap[K, V]) Min() (*RBNode[RBEntry[K, V]], error) {
	if tree.root == nil {
		return nil, ErrRBTreeMapKeyNotFound
	}
	return tree.root.Minimum(), nil
}

func (tree *rbTreeMap[K, V]) Max() (*RBNode[RBEntry[K, V]], error) {
	if tree.root == nil {
		return nil, ErrRBTreeMapKeyNotFound
	}
	return tree.root.Maximum(), nil
}

// Inorder traversal to implement the DFS.
func (tree *rbTreeMap[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	InorderForeach[RBEntry[K, V]](tree.root, func(idx int64, node *RBNode[RBEntry[K, V]]) bool {
		return action(idx, node.color, node.Value.Key, node.Value.Val)
	})
}

// Release detaches every node without rebalancing.
func (tree *rbTreeMap[K, V]) Release() {
	nodes := make([]*RBNode[RBEntry[K, V]], 0, tree.count)
	InorderForeach[RBEntry[K, V]](tree.root, func(_ int64, node *RBNode[RBEntry[K, V]]) bool {
		nodes = append(nodes, node)
		return true
	})
	for _, node := range nodes {
		node.reset()
	}
	tree.logger.Debug("rbtree map released", zap.Int("nodes", len(nodes)))
	tree.root = nil
	tree.count = 0
}

type RBTreeMapOpt[K infra.OrderedKey, V any] func(*rbTreeMap[K, V])

func WithRBTreeMapDesc[K infra.OrderedKey, V any]() RBTreeMapOpt[K, V] {
	return func(tree *rbTreeMap[K, V]) {
		tree.compare = infra.DescKeyCompare[K]
	}
}

func WithRBTreeMapLogger[K infra.OrderedKey, V any](logger *zap.Logger) RBTreeMapOpt[K, V] {
	return func(tree *rbTreeMap[K, V]) {
		if logger != nil {
			tree.logger = logger.Named("rbtree")
		}
	}
}

func NewRBTreeMap[K infra.OrderedKey, V any](opts ...RBTreeMapOpt[K, V]) RBTreeMap[K, V] {
	tree := &rbTreeMap[K, V]{
		compare: infra.AscKeyCompare[K],
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}
