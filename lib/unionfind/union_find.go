package unionfind

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/benz9527/xcoll/lib/infra"
)

var (
	ErrUnionFindIndexOutOfRange = errors.New("[unionfind] index out of range")
	ErrUnionFindShrink          = errors.New("[unionfind] resize cannot shrink")
)

// UnionFind is a disjoint-set forest over the indices [0, Len()).
// Find compresses the path and Union links by rank, so a sequence of
// m operations runs in O(m α(n)).
// Not thread safe.
type UnionFind[I infra.Integer] struct {
	parent []I
	rank   []uint8
	sets   int
}

// New returns n singleton sets. It panics when n is negative or the
// indices overflow I.
func New[I infra.Integer](n int) *UnionFind[I] {
	uf := &UnionFind[I]{}
	if err := uf.Resize(n); err != nil {
		panic( /* debug assertion */ err)
	}
	return uf
}

// Len is the number of elements.
func (uf *UnionFind[I]) Len() int {
	return len(uf.parent)
}

// Sets is the number of disjoint sets.
func (uf *UnionFind[I]) Sets() int {
	return uf.sets
}

// Resize grows the forest to n elements. The new elements are singletons
// and the existing sets are kept.
func (uf *UnionFind[I]) Resize(n int) error {
	prev := len(uf.parent)
	if n < prev {
		return fmt.Errorf("%w: %d < %d", ErrUnionFindShrink, n, prev)
	}
	if n > 0 && int(I(n-1)) != n-1 {
		return fmt.Errorf("%w: %d elements overflow the index type", ErrUnionFindIndexOutOfRange, n)
	}
	uf.parent = append(uf.parent, make([]I, n-prev)...)
	uf.rank = append(uf.rank, make([]uint8, n-prev)...)
	for i := prev; i < n; i++ {
		uf.parent[i] = I(i)
	}
	uf.sets += n - prev
	return nil
}

func (uf *UnionFind[I]) inRange(p I) bool {
	// Negative signed indices wrap to a huge uint64.
	return uint64(p) < uint64(len(uf.parent))
}

// Find returns the representative of p. It panics like a slice index when
// p is out of range.
func (uf *UnionFind[I]) Find(p I) I {
	root := p
	for root != uf.parent[root] {
		root = uf.parent[root]
	}
	for p != root {
		next := uf.parent[p]
		uf.parent[p] = root
		p = next
	}
	return root
}

// FindE is the checked Find.
func (uf *UnionFind[I]) FindE(p I) (I, error) {
	if !uf.inRange(p) {
		return p, fmt.Errorf("%w: %v not in [0, %d)", ErrUnionFindIndexOutOfRange, p, len(uf.parent))
	}
	return uf.Find(p), nil
}

// Union merges the sets of x and y. It returns false when they are already
// in the same set.
func (uf *UnionFind[I]) Union(x, y I) bool {
	x, y = uf.Find(x), uf.Find(y)
	if x == y {
		return false
	}
	if uf.rank[x] < uf.rank[y] {
		x, y = y, x
	}
	uf.parent[y] = x
	if uf.rank[x] == uf.rank[y] {
		uf.rank[x]++
	}
	uf.sets--
	return true
}

// UnionE is the checked Union.
func (uf *UnionFind[I]) UnionE(x, y I) (bool, error) {
	for _, p := range []I{x, y} {
		if !uf.inRange(p) {
			return false, fmt.Errorf("%w: %v not in [0, %d)", ErrUnionFindIndexOutOfRange, p, len(uf.parent))
		}
	}
	return uf.Union(x, y), nil
}

func (uf *UnionFind[I]) Connected(x, y I) bool {
	return uf.Find(x) == uf.Find(y)
}

// Groups returns the members of every set keyed by the representative.
func (uf *UnionFind[I]) Groups() map[I][]I {
	indices := lo.Times(len(uf.parent), func(i int) I {
		return I(i)
	})
	return lo.GroupBy(indices, uf.Find)
}
