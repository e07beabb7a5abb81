package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewX32Bitmap(t *testing.T) {
	bm := NewX32Bitmap(10)
	bm2 := NewX32Bitmap(10)
	originalOffsets := []uint64{9, 5, 7, 3, 2, 8, 1}
	expectedOffsets := []uint64{1, 2, 3, 5, 7, 8, 9}
	for _, offset := range originalOffsets {
		require.True(t, bm.SetBit(offset))
		bm2.SetBit(offset)
	}
	require.False(t, bm.SetBit(100))
	require.False(t, bm.UnsetBit(100))
	bm2.UnsetBit(4)
	for _, offset := range expectedOffsets {
		require.True(t, bm.GetBit(offset))
	}
	require.False(t, bm.GetBit(4))
	require.True(t, bm.EqualTo(bm2))
	require.False(t, bm.GetBit(100))
	require.Equal(t, uint64(7), bm.BitCount())
	require.Equal(t, uint64(10), bm.Cap())

	bm2.UnsetBit(9)
	require.False(t, bm.EqualTo(bm2))
	require.False(t, bm.EqualTo(NewX32Bitmap(64)))

	bm.Purge()
	require.Equal(t, uint64(0), bm.BitCount())

	bm = NewX32Bitmap(MaxBitmapSize + 1)
	require.Equal(t, MaxBitmapSize, bm.Cap())
	require.True(t, bm.SetBit(MaxBitmapSize-1))
	require.False(t, bm.SetBit(MaxBitmapSize))
	bm.Purge()
	require.False(t, bm.GetBit(MaxBitmapSize-1))
}

func TestX32BitmapWordBoundary(t *testing.T) {
	bm := NewX32Bitmap(96)
	for _, offset := range []uint64{0, 31, 32, 63, 64, 95} {
		require.True(t, bm.SetBit(offset))
	}
	require.Equal(t, uint64(6), bm.BitCount())
	require.False(t, bm.GetBit(30))
	require.False(t, bm.GetBit(33))
	require.True(t, bm.UnsetBit(32))
	require.False(t, bm.GetBit(32))
	require.True(t, bm.GetBit(31))
	require.Equal(t, uint64(5), bm.BitCount())
}
