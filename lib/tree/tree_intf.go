package tree

import "github.com/benz9527/xcoll/lib/infra"

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

// RBDirection is the side of a node relative to its parent, and
// the side a node rotates towards.
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

func (d RBDirection) opposite() RBDirection {
	return -d
}

// RBEntry is the payload of the RBTreeMap nodes.
type RBEntry[K infra.OrderedKey, V any] struct {
	Key K
	Val V
}

type RBTreeMap[K infra.OrderedKey, V any] interface {
	Len() int64
	Root() *RBNode[RBEntry[K, V]]
	// Insert adds the key or replaces its value. With ifNotPresent set,
	// an existing key is reported by ErrRBTreeMapKeyExists instead.
	Insert(key K, val V, ifNotPresent ...bool) error
	Get(key K) (V, error)
	// Remove detaches the node of key. The node is reset and may be reused.
	Remove(key K) (*RBNode[RBEntry[K, V]], error)
	RemoveMin() (*RBNode[RBEntry[K, V]], error)
	Min() (*RBNode[RBEntry[K, V]], error)
	Max() (*RBNode[RBEntry[K, V]], error)
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Release()
}
