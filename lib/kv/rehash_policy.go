package kv

import (
	"math"

	"github.com/benz9527/xcoll/lib/bits"
)

// RehashPolicy decides when and how far the hash table grows.
type RehashPolicy interface {
	// NeedRehash reports whether the table with the given number of buckets
	// and elements has to grow before inserts more elements, and the new
	// bucket count if it does.
	NeedRehash(buckets, elements, inserts uint64) (bool, uint64)
	// BucketsForElements is the minimum bucket count to hold elements.
	BucketsForElements(elements uint64) uint64
	// NextBucketCount rounds buckets up to a count the policy accepts.
	NextBucketCount(buckets uint64) uint64
	MaxLoadFactor() float32
}

const (
	defaultMaxLoadFactor float32 = 0.75
	penultPowOf2         uint64  = math.MaxUint64>>1 + 1
)

// Power2RehashPolicy keeps the bucket count a power of 2 and the load
// factor under the max load factor.
type Power2RehashPolicy struct {
	maxLoadFactor float32
}

var _ RehashPolicy = (*Power2RehashPolicy)(nil)

// NewPower2RehashPolicy uses 0.75 as the max load factor if maxLoadFactor
// is not positive.
func NewPower2RehashPolicy(maxLoadFactor float32) *Power2RehashPolicy {
	if maxLoadFactor <= 0 || math.IsNaN(float64(maxLoadFactor)) {
		maxLoadFactor = defaultMaxLoadFactor
	}
	return &Power2RehashPolicy{maxLoadFactor: maxLoadFactor}
}

func (p *Power2RehashPolicy) NeedRehash(buckets, elements, inserts uint64) (bool, uint64) {
	minBuckets := p.BucketsForElements(elements + inserts)
	if buckets >= minBuckets {
		return false, buckets
	}
	return true, p.NextBucketCount(minBuckets)
}

func (p *Power2RehashPolicy) BucketsForElements(elements uint64) uint64 {
	n := math.Ceil(float64(elements) / float64(p.maxLoadFactor))
	if n >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(n)
}

func (p *Power2RehashPolicy) NextBucketCount(buckets uint64) uint64 {
	if /* no larger power of 2 */ buckets > penultPowOf2 {
		return buckets
	}
	return bits.RoundupPowOf2(buckets)
}

func (p *Power2RehashPolicy) MaxLoadFactor() float32 {
	return p.maxLoadFactor
}
