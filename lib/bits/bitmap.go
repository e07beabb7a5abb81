package bits

import (
	mbits "math/bits"
)

// MaxBitmapSize bounds the number of bits a single bitmap holds.
const MaxBitmapSize uint64 = 1 << 26

type Bitmap interface {
	// SetBit sets the bit at offset. Offsets beyond Cap are ignored and false is returned.
	SetBit(offset uint64) bool
	UnsetBit(offset uint64) bool
	GetBit(offset uint64) bool
	// BitCount returns the number of set bits.
	BitCount() uint64
	// Cap returns the number of addressable bits.
	Cap() uint64
	EqualTo(bm Bitmap) bool
	Purge()
}

type x32Bitmap struct {
	bits  []uint32
	nbits uint64
}

func NewX32Bitmap(nbits uint64) Bitmap {
	if nbits == 0 {
		nbits = 32
	} else if nbits > MaxBitmapSize {
		nbits = MaxBitmapSize
	}
	return &x32Bitmap{
		bits:  make([]uint32, (nbits+31)>>5),
		nbits: nbits,
	}
}

func (bm *x32Bitmap) SetBit(offset uint64) bool {
	if offset >= bm.nbits {
		return false
	}
	bm.bits[offset>>5] |= 1 << (offset & 31)
	return true
}

func (bm *x32Bitmap) UnsetBit(offset uint64) bool {
	if offset >= bm.nbits {
		return false
	}
	bm.bits[offset>>5] &^= 1 << (offset & 31)
	return true
}

func (bm *x32Bitmap) GetBit(offset uint64) bool {
	if offset >= bm.nbits {
		return false
	}
	return bm.bits[offset>>5]&(1<<(offset&31)) != 0
}

func (bm *x32Bitmap) BitCount() uint64 {
	cnt := uint64(0)
	for _, w := range bm.bits {
		cnt += uint64(mbits.OnesCount32(w))
	}
	return cnt
}

func (bm *x32Bitmap) Cap() uint64 {
	return bm.nbits
}

func (bm *x32Bitmap) EqualTo(other Bitmap) bool {
	o, ok := other.(*x32Bitmap)
	if !ok || o == nil {
		return false
	}
	if bm == o {
		return true
	}
	if bm.nbits != o.nbits {
		return false
	}
	for i := range bm.bits {
		if bm.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}

func (bm *x32Bitmap) Purge() {
	clear(bm.bits)
}
