package kv

import (
	"go.uber.org/zap"
)

type htNode[K comparable, V any] struct {
	key  K
	val  V
	next *htNode[K, V]
}

// HashTable is a separate chaining hash table. Each bucket is a circular
// singly linked list, and the bucket slot points at one node of the ring.
// A lookup returns the predecessor of the matched node so the node can be
// unlinked in O(1).
// Not thread safe.
type HashTable[K comparable, V any] struct {
	buckets     []*htNode[K, V]
	count       uint64
	initBuckets uint64
	hasher      Hasher[K]
	policy      RehashPolicy
	logger      *zap.Logger
}

var _ Map[string, any] = (*HashTable[string, any])(nil)

func (ht *HashTable[K, V]) Len() int64 {
	return int64(ht.count)
}

func (ht *HashTable[K, V]) BucketCount() uint64 {
	return uint64(len(ht.buckets))
}

func (ht *HashTable[K, V]) LoadFactor() float32 {
	return float32(ht.count) / float32(len(ht.buckets))
}

func (ht *HashTable[K, V]) bucketIndex(key K) uint64 {
	return ht.hasher(key) % uint64(len(ht.buckets))
}

// findPrev returns the node before the one holding key in the ring.
func (ht *HashTable[K, V]) findPrev(key K, bucket *htNode[K, V]) *htNode[K, V] {
	if bucket == nil {
		return nil
	}
	node := bucket
	for {
		if node.next.key == key {
			return node
		}
		if node = node.next; node == bucket {
			break
		}
	}
	return nil
}

// linkNode puts the new node right after the bucket node.
func linkNode[K comparable, V any](bucket **htNode[K, V], node *htNode[K, V]) {
	if *bucket != nil {
		node.next = (*bucket).next
		(*bucket).next = node
		return
	}
	*bucket = node
	node.next = node
}

func unlinkNode[K comparable, V any](bucket **htNode[K, V], prev *htNode[K, V]) *htNode[K, V] {
	node := prev.next
	if /* last one in the ring */ node == prev {
		*bucket = nil
		node.next = nil
		return node
	}
	if node == *bucket {
		*bucket = node.next
	}
	prev.next = node.next
	node.next = nil
	return node
}

func (ht *HashTable[K, V]) rehash(buckets uint64) {
	if buckets == 0 {
		buckets = 1
	}
	old := ht.buckets
	ht.buckets = make([]*htNode[K, V], buckets)
	for _, head := range old {
		if head == nil {
			continue
		}
		node := head
		for {
			next := node.next
			linkNode(&ht.buckets[ht.bucketIndex(node.key)], node)
			if node = next; node == head {
				break
			}
		}
	}
	ht.logger.Debug("hash table rehashed",
		zap.Int("from", len(old)),
		zap.Uint64("to", buckets),
		zap.Uint64("elements", ht.count),
	)
}

func (ht *HashTable[K, V]) insert(key K, val V, replace bool) bool {
	idx := ht.bucketIndex(key)
	if prev := ht.findPrev(key, ht.buckets[idx]); prev != nil {
		if replace {
			prev.next.val = val
		}
		return false
	}

	if ok, buckets := ht.policy.NeedRehash(uint64(len(ht.buckets)), ht.count, 1); ok {
		ht.rehash(buckets)
		idx = ht.bucketIndex(key)
	}
	linkNode(&ht.buckets[idx], &htNode[K, V]{key: key, val: val})
	ht.count++
	return true
}

// Put inserts the key or replaces its value. It reports whether the key
// was inserted.
func (ht *HashTable[K, V]) Put(key K, val V) bool {
	return ht.insert(key, val, true)
}

// PutIfAbsent keeps the existing value of key.
func (ht *HashTable[K, V]) PutIfAbsent(key K, val V) bool {
	return ht.insert(key, val, false)
}

func (ht *HashTable[K, V]) Get(key K) (val V, exists bool) {
	if prev := ht.findPrev(key, ht.buckets[ht.bucketIndex(key)]); prev != nil {
		return prev.next.val, true
	}
	return val, false
}

func (ht *HashTable[K, V]) Contains(key K) bool {
	return ht.findPrev(key, ht.buckets[ht.bucketIndex(key)]) != nil
}

func (ht *HashTable[K, V]) Delete(key K) (val V, deleted bool) {
	idx := ht.bucketIndex(key)
	prev := ht.findPrev(key, ht.buckets[idx])
	if prev == nil {
		return val, false
	}
	node := unlinkNode(&ht.buckets[idx], prev)
	ht.count--
	return node.val, true
}

// Foreach visits the elements bucket by bucket until action returns false.
// The table must not be modified during the visit.
func (ht *HashTable[K, V]) Foreach(action func(key K, val V) bool) {
	for _, head := range ht.buckets {
		if head == nil {
			continue
		}
		node := head
		for {
			if !action(node.key, node.val) {
				return
			}
			if node = node.next; node == head {
				break
			}
		}
	}
}

// Reserve grows the table up front to hold n elements without rehashing.
func (ht *HashTable[K, V]) Reserve(n uint64) {
	buckets := ht.policy.NextBucketCount(ht.policy.BucketsForElements(n))
	if buckets > uint64(len(ht.buckets)) {
		ht.rehash(buckets)
	}
}

// Clear drops all elements and shrinks back to the initial bucket count.
func (ht *HashTable[K, V]) Clear() {
	ht.buckets = make([]*htNode[K, V], ht.initBuckets)
	ht.count = 0
}

type HashTableOpt[K comparable, V any] func(*HashTable[K, V])

func WithHashTableHasher[K comparable, V any](hasher Hasher[K]) HashTableOpt[K, V] {
	return func(ht *HashTable[K, V]) {
		if hasher != nil {
			ht.hasher = hasher
		}
	}
}

func WithHashTableRehashPolicy[K comparable, V any](policy RehashPolicy) HashTableOpt[K, V] {
	return func(ht *HashTable[K, V]) {
		if policy != nil {
			ht.policy = policy
		}
	}
}

// WithHashTableInitBuckets is rounded up by the rehash policy.
func WithHashTableInitBuckets[K comparable, V any](buckets uint64) HashTableOpt[K, V] {
	return func(ht *HashTable[K, V]) {
		ht.initBuckets = buckets
	}
}

func WithHashTableLogger[K comparable, V any](logger *zap.Logger) HashTableOpt[K, V] {
	return func(ht *HashTable[K, V]) {
		if logger != nil {
			ht.logger = logger.Named("hashtable")
		}
	}
}

func NewHashTable[K comparable, V any](opts ...HashTableOpt[K, V]) *HashTable[K, V] {
	ht := &HashTable[K, V]{
		initBuckets: 1,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		if o != nil {
			o(ht)
		}
	}
	if ht.hasher == nil {
		ht.hasher = NewHasher[K]()
	}
	if ht.policy == nil {
		ht.policy = NewPower2RehashPolicy(defaultMaxLoadFactor)
	}
	if ht.initBuckets = ht.policy.NextBucketCount(ht.initBuckets); ht.initBuckets == 0 {
		ht.initBuckets = 1
	}
	ht.buckets = make([]*htNode[K, V], ht.initBuckets)
	return ht
}
