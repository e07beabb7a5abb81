package huffman

import (
	"bytes"
	"errors"
	"io"
	"math"
	randv2 "math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleText = `Lorem ipsum dolor sit amet, consectetur adipiscing elit. Cras vitae risus non sem posuere aliquam.
Nulla nisi magna, interdum nec pellentesque sed, sodales et arcu. Morbi lobortis mi sit amet odio malesuada imperdiet.
Nunc a ipsum sollicitudin, luctus dolor non, ultricies magna. Mauris pretium ligula vel vehicula posuere.
Suspendisse congue venenatis ex ut vestibulum. In vel nulla lacinia nisl aliquam venenatis. Quisque id tristique lorem.`

func TestBuildTree_SmallTable(t *testing.T) {
	tree, err := BuildTree(map[string]uint64{"a": 9, "b": 4, "c": 2})
	require.NoError(t, err)
	require.Equal(t, 3, tree.Len())
	require.Equal(t, map[string]Code{"a": "1", "b": "01", "c": "00"}, tree.Table())

	root := tree.Root()
	require.Equal(t, uint64(15), root.Freq())
	_, ok := root.Symbol()
	require.False(t, ok)
	sym, ok := root.Right().Symbol()
	require.True(t, ok)
	require.Equal(t, "a", sym)
	require.Equal(t, "(15)\n(6) a:9\nc:2 b:4\n", tree.String())

	bits, err := tree.EncodedBits(map[string]uint64{"a": 9, "b": 4, "c": 2})
	require.NoError(t, err)
	require.Equal(t, uint64(9+8+4), bits)
}

func TestBuildTree_Errors(t *testing.T) {
	_, err := BuildTree(map[int]uint64{})
	require.ErrorIs(t, err, ErrHuffmanEmptyInput)
	_, err = BuildTreeFromSymbols([]int(nil))
	require.ErrorIs(t, err, ErrHuffmanEmptyInput)

	_, err = BuildTree(map[int]uint64{1: math.MaxInt64, 2: 1})
	require.ErrorIs(t, err, ErrHuffmanFreqOverflow)
	_, err = BuildTree(map[int]uint64{1: math.MaxUint64})
	require.ErrorIs(t, err, ErrHuffmanFreqOverflow)

	tree, err := BuildTreeFromString("ab")
	require.NoError(t, err)
	_, err = tree.Code('z')
	require.ErrorIs(t, err, ErrHuffmanUnknownSymbol)

	_, err = NewEncoder[byte](io.Discard, nil)
	require.ErrorIs(t, err, ErrHuffmanNilTree)
	_, err = NewDecoder[byte](strings.NewReader(""), nil)
	require.ErrorIs(t, err, ErrHuffmanNilTree)
}

func TestBuildTree_Deterministic(t *testing.T) {
	freq := make(map[int]uint64, 64)
	for i := 0; i < 64; i++ {
		freq[i] = uint64(i % 5)
	}
	expected, err := BuildTree(freq)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		tree, err := BuildTree(freq)
		require.NoError(t, err)
		require.Equal(t, expected.Table(), tree.Table())
	}
}

// A full binary tree satisfies the Kraft equality, and no codeword is
// a prefix of another.
func TestBuildTree_PrefixFree(t *testing.T) {
	rnd := randv2.New(randv2.NewPCG(9, 9))
	freq := make(map[uint16]uint64, 300)
	for i := 0; i < 300; i++ {
		freq[uint16(rnd.IntN(1<<16))] = uint64(rnd.IntN(1000) + 1)
	}
	tree, err := BuildTree(freq)
	require.NoError(t, err)

	table := tree.Table()
	require.Len(t, table, len(freq))
	kraft := 0.0
	codes := make([]string, 0, len(table))
	for _, code := range table {
		kraft += math.Pow(2, -float64(code.Len()))
		codes = append(codes, string(code))
	}
	require.InDelta(t, 1.0, kraft, 1e-9)
	for i := range codes {
		for j := range codes {
			if i != j {
				require.False(t, strings.HasPrefix(codes[j], codes[i]))
			}
		}
	}

	// More frequent symbols never get longer codewords.
	for a, fa := range freq {
		for b, fb := range freq {
			if fa > fb {
				require.LessOrEqual(t, table[a].Len(), table[b].Len())
			}
		}
	}
}

func TestCodec_KnownBytes(t *testing.T) {
	tree, err := BuildTree(map[string]uint64{"a": 9, "b": 4, "c": 2})
	require.NoError(t, err)

	testcases := []struct {
		order    BitOrder
		expected []byte
	}{
		{MSBFirst, []byte{0b1010_0000}},
		{LSBFirst, []byte{0b0000_0101}},
	}
	for _, tc := range testcases {
		t.Run(tc.order.String(), func(tt *testing.T) {
			var buf bytes.Buffer
			require.NoError(tt, Encode(&buf, tree, []string{"a", "b", "c"}, WithBitOrder(tc.order)))
			require.Equal(tt, tc.expected, buf.Bytes())

			syms, err := Decode(bytes.NewReader(buf.Bytes()), tree, 3, WithBitOrder(tc.order))
			require.NoError(tt, err)
			require.Equal(tt, []string{"a", "b", "c"}, syms)

			// The zero padding decodes to "c" and a partial codeword.
			dec, err := NewDecoder(bytes.NewReader(buf.Bytes()), tree, WithBitOrder(tc.order))
			require.NoError(tt, err)
			syms, err = dec.ReadSymbols(10)
			require.ErrorIs(tt, err, io.EOF)
			require.Equal(tt, []string{"a", "b", "c", "c"}, syms)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	tree, err := BuildTreeFromString(sampleText)
	require.NoError(t, err)

	for _, order := range []BitOrder{MSBFirst, LSBFirst} {
		t.Run(order.String(), func(tt *testing.T) {
			var buf bytes.Buffer
			enc, err := NewEncoder(&buf, tree, WithBitOrder(order), WithBufferSize(7))
			require.NoError(tt, err)
			n, err := enc.WriteSymbols([]byte(sampleText))
			require.NoError(tt, err)
			require.Equal(tt, len(sampleText), n)
			require.NoError(tt, enc.Flush())
			require.Equal(tt, uint64(buf.Len()), enc.Written())
			require.Less(tt, buf.Len(), len(sampleText))

			freq := make(map[byte]uint64)
			for i := 0; i < len(sampleText); i++ {
				freq[sampleText[i]]++
			}
			bits, err := tree.EncodedBits(freq)
			require.NoError(tt, err)
			require.Equal(tt, (bits+7)/8, uint64(buf.Len()))

			decoded, err := Decode(&buf, tree, len(sampleText), WithBitOrder(order))
			require.NoError(tt, err)
			require.Equal(tt, sampleText, string(decoded))
		})
	}
}

func TestCodec_SingleSymbol(t *testing.T) {
	tree, err := BuildTreeFromString("zzzzzzzzzz")
	require.NoError(t, err)
	require.Equal(t, map[byte]Code{'z': "0"}, tree.Table())
	require.True(t, tree.Root().IsLeaf())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tree, []byte("zzzzzzzzzz")))
	require.Equal(t, []byte{0, 0}, buf.Bytes())

	decoded, err := Decode(bytes.NewReader(buf.Bytes()), tree, 10)
	require.NoError(t, err)
	require.Equal(t, "zzzzzzzzzz", string(decoded))

	_, err = Decode(bytes.NewReader(buf.Bytes()), tree, 17)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCodec_UnknownSymbol(t *testing.T) {
	tree, err := BuildTreeFromString("hello")
	require.NoError(t, err)
	enc, err := NewEncoder(io.Discard, tree)
	require.NoError(t, err)
	n, err := enc.WriteSymbols([]byte("helo world"))
	require.ErrorIs(t, err, ErrHuffmanUnknownSymbol)
	require.Equal(t, 4, n)
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

func TestCodec_WriterError(t *testing.T) {
	tree, err := BuildTreeFromString(sampleText)
	require.NoError(t, err)
	enc, err := NewEncoder(failingWriter{}, tree, WithBufferSize(1))
	require.NoError(t, err)
	_, err = enc.WriteSymbols([]byte(sampleText))
	require.ErrorIs(t, err, errWrite)
}

func TestDecoder_Reset(t *testing.T) {
	tree, err := BuildTreeFromString(sampleText)
	require.NoError(t, err)
	var first, second bytes.Buffer
	require.NoError(t, Encode(&first, tree, []byte("Lorem")))
	require.NoError(t, Encode(&second, tree, []byte("ipsum")))

	dec, err := NewDecoder(&first, tree)
	require.NoError(t, err)
	sym, err := dec.Symbol()
	require.NoError(t, err)
	require.Equal(t, byte('L'), sym)

	dec.Reset(&second)
	syms, err := dec.ReadSymbols(5)
	require.NoError(t, err)
	require.Equal(t, "ipsum", string(syms))
}

func TestBuildTree_Logger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := BuildTree(map[rune]uint64{'a': 9, 'b': 4, 'c': 2}, WithTreeLogger(zap.New(core)))
	require.NoError(t, err)
	entries := logs.FilterMessage("huffman tree built").All()
	require.Len(t, entries, 1)
	require.Equal(t, "huffman", entries[0].LoggerName)
	require.Equal(t, int64(3), entries[0].ContextMap()["symbols"])
	require.Equal(t, uint64(15), entries[0].ContextMap()["total"])
	require.Equal(t, int64(2), entries[0].ContextMap()["maxCodeLen"])
}

func BenchmarkEncode(b *testing.B) {
	tree, err := BuildTreeFromString(sampleText)
	require.NoError(b, err)
	syms := []byte(sampleText)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Encode(io.Discard, tree, syms)
	}
	b.ReportAllocs()
}
