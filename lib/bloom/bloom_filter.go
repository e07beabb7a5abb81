package bloom

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/bits"
	"github.com/benz9527/xcoll/lib/kv"
)

const defaultBitsPerItem = 10

var (
	ErrBloomFilterInvalidCapacity    = errors.New("[bloom] invalid capacity")
	ErrBloomFilterInvalidBitsPerItem = errors.New("[bloom] bits per item must be positive")
)

type filterOptions[T comparable] struct {
	bitsPerItem uint32
	hashCount   uint32
	hasher      kv.Hasher[T]
	logger      *zap.Logger
}

type FilterOpt[T comparable] func(*filterOptions[T])

// WithBloomFilterBitsPerItem sets the expected bits per inserted item.
// The hash count is derived from it unless WithBloomFilterHashCount sets
// a non-zero count.
func WithBloomFilterBitsPerItem[T comparable](n uint32) FilterOpt[T] {
	return func(o *filterOptions[T]) {
		o.bitsPerItem = n
	}
}

func WithBloomFilterHashCount[T comparable](k uint32) FilterOpt[T] {
	return func(o *filterOptions[T]) {
		o.hashCount = k
	}
}

func WithBloomFilterHasher[T comparable](hasher kv.Hasher[T]) FilterOpt[T] {
	return func(o *filterOptions[T]) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}

func WithBloomFilterLogger[T comparable](logger *zap.Logger) FilterOpt[T] {
	return func(o *filterOptions[T]) {
		if logger != nil {
			o.logger = logger.Named("bloom")
		}
	}
}

// Filter is a fixed size bloom filter. It never reports a false negative
// and items cannot be removed except by Purge.
// Not thread safe.
type Filter[T comparable] struct {
	bm       bits.Bitmap
	k        uint32
	bpi      uint32
	hasher   kv.Hasher[T]
	capacity uint64
}

// HashCountOf is ceil(bitsPerItem * 0.693), close to the hash count with
// the lowest false positive rate.
func HashCountOf(bitsPerItem uint32) uint32 {
	return uint32((uint64(bitsPerItem)*693 + 999) / 1000)
}

// NewFilter returns a filter of capacity bits.
func NewFilter[T comparable](capacity uint64, opts ...FilterOpt[T]) (*Filter[T], error) {
	o := &filterOptions[T]{
		bitsPerItem: defaultBitsPerItem,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var err error
	if capacity == 0 || capacity > bits.MaxBitmapSize {
		err = multierr.Append(err, fmt.Errorf("%w: %d not in [1, %d]",
			ErrBloomFilterInvalidCapacity, capacity, bits.MaxBitmapSize))
	}
	if o.bitsPerItem == 0 {
		err = multierr.Append(err, ErrBloomFilterInvalidBitsPerItem)
	}
	k := o.hashCount
	if k == 0 {
		k = HashCountOf(o.bitsPerItem)
	}
	if err != nil {
		return nil, err
	}

	if o.hasher == nil {
		o.hasher = kv.NewHasher[T]()
	}
	f := &Filter[T]{
		bm:       bits.NewX32Bitmap(capacity),
		k:        k,
		bpi:      o.bitsPerItem,
		hasher:   o.hasher,
		capacity: capacity,
	}
	o.logger.Debug("bloom filter created",
		zap.Uint64("capacity", capacity),
		zap.Uint32("bitsPerItem", f.bpi),
		zap.Uint32("hashes", f.k),
	)
	return f, nil
}

// NewFilterFor sizes the filter by the expected number of items.
func NewFilterFor[T comparable](expectedItems uint64, opts ...FilterOpt[T]) (*Filter[T], error) {
	o := &filterOptions[T]{bitsPerItem: defaultBitsPerItem}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if expectedItems > math.MaxUint64/uint64(max(o.bitsPerItem, 1)) {
		return nil, fmt.Errorf("%w: %d items", ErrBloomFilterInvalidCapacity, expectedItems)
	}
	return NewFilter[T](expectedItems*uint64(o.bitsPerItem), opts...)
}

// Capacity is the number of bits.
func (f *Filter[T]) Capacity() uint64 {
	return f.capacity
}

func (f *Filter[T]) HashCount() uint32 {
	return f.k
}

// probes calls fn with the k bit offsets of item until fn returns false.
// The digest is split into h1 and h2, and the i-th probe is h1 + i*h2.
// h2 is odd so the probes do not collapse for an even capacity.
func (f *Filter[T]) probes(item T, fn func(offset uint64) bool) bool {
	digest := f.hasher(item)
	h1, h2 := digest&math.MaxUint32, digest>>32|1
	for i := uint64(0); i < uint64(f.k); i++ {
		if !fn((h1 + i*h2) % f.capacity) {
			return false
		}
	}
	return true
}

func (f *Filter[T]) Insert(item T) {
	f.probes(item, f.bm.SetBit)
}

func (f *Filter[T]) InsertAll(items ...T) {
	for _, item := range items {
		f.Insert(item)
	}
}

// ProbablyContains may return true for an item never inserted.
func (f *Filter[T]) ProbablyContains(item T) bool {
	return f.probes(item, f.bm.GetBit)
}

// DefinitelyMissing is exact when it returns true.
func (f *Filter[T]) DefinitelyMissing(item T) bool {
	return !f.ProbablyContains(item)
}

// Purge unsets all bits.
func (f *Filter[T]) Purge() {
	f.bm.Purge()
}

// EstimatedCount is the number of distinct inserted items estimated from
// the number of set bits, n = -(m/k) * ln(1 - X/m). A saturated filter
// returns math.MaxUint64.
func (f *Filter[T]) EstimatedCount() uint64 {
	x := f.bm.BitCount()
	if x >= f.capacity {
		return math.MaxUint64
	}
	m, k := float64(f.capacity), float64(f.k)
	return uint64(math.Round(-m / k * math.Log1p(-float64(x)/m)))
}

// FalsePositiveRate is (1 - e^(-kn/m))^k for the estimated count n.
func (f *Filter[T]) FalsePositiveRate() float64 {
	n := f.EstimatedCount()
	if n == math.MaxUint64 {
		return 1
	}
	m, k := float64(f.capacity), float64(f.k)
	return math.Pow(-math.Expm1(-k*float64(n)/m), k)
}
