package bits

import (
	"math"
	mbits "math/bits"
	"unsafe"

	"github.com/benz9527/xcoll/lib/infra"
)

// RoundupPowOf2 returns the smallest power of 2 that is not less than n.
// Zero rounds up to 1. The result overflows to 0 when n > 1<<63.
func RoundupPowOf2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << mbits.Len64(n-1)
}

func RoundupPowOf2ByCeil(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return uint64(math.Pow(2, math.Ceil(math.Log2(float64(n)))))
}

func RoundupPowOf2ByLoop(n uint64) uint64 {
	x := uint64(1)
	for x < n {
		x <<= 1
	}
	return x
}

// CeilPowOf2 returns the exponent of RoundupPowOf2(n).
func CeilPowOf2(n uint64) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(mbits.Len64(n - 1))
}

// IsPowOf2 reports whether n is a non-zero power of 2.
func IsPowOf2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// convert keeps the two's complement bits of n within its own width.
func convert[T infra.Integer](n T) uint64 {
	width := unsafe.Sizeof(n) << 3
	v := uint64(n)
	if width < 64 {
		v &= 1<<width - 1
	}
	return v
}

const (
	m1  = 0x5555555555555555
	m2  = 0x3333333333333333
	m4  = 0x0f0f0f0f0f0f0f0f
	h01 = 0x0101010101010101
)

// HammingWeightBySWARV1 counts set bits with the multiply-accumulate SWAR.
func HammingWeightBySWARV1[T infra.Integer](n T) uint8 {
	x := convert[T](n)
	x -= (x >> 1) & m1
	x = (x & m2) + ((x >> 2) & m2)
	x = (x + (x >> 4)) & m4
	return uint8((x * h01) >> 56)
}

// HammingWeightBySWARV2 folds the byte counts with shifts instead of a multiply.
func HammingWeightBySWARV2[T infra.Integer](n T) uint8 {
	x := convert[T](n)
	x -= (x >> 1) & m1
	x = (x & m2) + ((x >> 2) & m2)
	x = (x + (x >> 4)) & m4
	x += x >> 8
	x += x >> 16
	x += x >> 32
	return uint8(x & 0x7f)
}

func HammingWeightBySWARV3[T infra.Integer](n T) uint8 {
	x := convert[T](n)
	x = (x & m1) + ((x >> 1) & m1)
	x = (x & m2) + ((x >> 2) & m2)
	x = (x & m4) + ((x >> 4) & m4)
	return uint8((x * h01) >> 56)
}

var nibbleWeights = [16]uint8{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4}

// HammingWeightByGroupCount looks up the weight of every 4 bits group.
func HammingWeightByGroupCount[T infra.Integer](n T) uint8 {
	x := convert[T](n)
	w := uint8(0)
	for ; x != 0; x >>= 4 {
		w += nibbleWeights[x&0xf]
	}
	return w
}
