package kv

import (
	"encoding/binary"
	"hash/maphash"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to a 64-bit digest. Equal keys must have equal digests.
type Hasher[K comparable] func(key K) uint64

func hashUint64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxhash.Sum64(b[:])
}

// NewHasher returns the xxhash digest for strings and the builtin integer
// types. Other comparable keys fall back to hash/maphash with a random seed,
// so their digests differ between processes.
func NewHasher[K comparable]() Hasher[K] {
	var zero K
	switch any(zero).(type) {
	case string:
		return func(key K) uint64 {
			return xxhash.Sum64String(*(*string)(unsafe.Pointer(&key)))
		}
	case int, uint, uintptr:
		return func(key K) uint64 {
			return hashUint64(uint64(*(*uint)(unsafe.Pointer(&key))))
		}
	case int64, uint64:
		return func(key K) uint64 {
			return hashUint64(*(*uint64)(unsafe.Pointer(&key)))
		}
	case int32, uint32:
		return func(key K) uint64 {
			return hashUint64(uint64(*(*uint32)(unsafe.Pointer(&key))))
		}
	case int16, uint16:
		return func(key K) uint64 {
			return hashUint64(uint64(*(*uint16)(unsafe.Pointer(&key))))
		}
	case int8, uint8:
		return func(key K) uint64 {
			return hashUint64(uint64(*(*uint8)(unsafe.Pointer(&key))))
		}
	default:
	}
	return NewSeedHasher[K](maphash.MakeSeed())
}

// NewSeedHasher always hashes by hash/maphash. Keys are hashed by their
// identity for pointers and channels and by content for the others.
func NewSeedHasher[K comparable](seed maphash.Seed) Hasher[K] {
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}
