package huffman

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
)

// BitOrder is the order the codeword bits are packed into a byte.
type BitOrder uint8

const (
	// MSBFirst fills a byte from the most significant bit.
	MSBFirst BitOrder = iota
	// LSBFirst fills a byte from the least significant bit.
	LSBFirst
)

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "MSBFirst"
	case LSBFirst:
		return "LSBFirst"
	default:
	}
	return "Unknown"
}

type codecOptions struct {
	order   BitOrder
	bufSize int
}

type CodecOpt func(*codecOptions)

func WithBitOrder(order BitOrder) CodecOpt {
	return func(o *codecOptions) {
		if order == LSBFirst {
			o.order = LSBFirst
		} else {
			o.order = MSBFirst
		}
	}
}

// WithBufferSize sets the number of bytes the encoder keeps before it
// writes to the underlying writer.
func WithBufferSize(size int) CodecOpt {
	return func(o *codecOptions) {
		if size > 0 {
			o.bufSize = size
		}
	}
}

func applyCodecOpts(opts []CodecOpt) *codecOptions {
	o := &codecOptions{order: MSBFirst, bufSize: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Encoder packs the codewords into bytes. The stream carries neither the
// tree nor the number of symbols, and the last byte is padded with zeros.
// Not thread safe.
type Encoder[S cmp.Ordered] struct {
	w       io.Writer
	table   map[S]Code
	order   BitOrder
	bits    byte
	nbits   uint8
	buf     []byte
	written uint64
}

func NewEncoder[S cmp.Ordered](w io.Writer, tree *Tree[S], opts ...CodecOpt) (*Encoder[S], error) {
	if tree == nil || tree.root == nil {
		return nil, ErrHuffmanNilTree
	}
	o := applyCodecOpts(opts)
	return &Encoder[S]{
		w:     w,
		table: tree.table,
		order: o.order,
		buf:   make([]byte, 0, o.bufSize),
	}, nil
}

func (enc *Encoder[S]) putBit(bit byte) error {
	if enc.order == MSBFirst {
		enc.bits |= bit << (7 - enc.nbits)
	} else {
		enc.bits |= bit << enc.nbits
	}
	if enc.nbits++; enc.nbits < 8 {
		return nil
	}
	enc.buf = append(enc.buf, enc.bits)
	enc.bits, enc.nbits = 0, 0
	if len(enc.buf) == cap(enc.buf) {
		return enc.drain()
	}
	return nil
}

func (enc *Encoder[S]) drain() error {
	if len(enc.buf) == 0 {
		return nil
	}
	n, err := enc.w.Write(enc.buf)
	enc.written += uint64(n)
	if err == nil && n < len(enc.buf) {
		err = io.ErrShortWrite
	}
	enc.buf = enc.buf[:copy(enc.buf, enc.buf[n:])]
	return err
}

// PutSymbol appends the codeword of sym.
func (enc *Encoder[S]) PutSymbol(sym S) error {
	code, ok := enc.table[sym]
	if !ok {
		return fmt.Errorf("%w: %v", ErrHuffmanUnknownSymbol, sym)
	}
	for i := 0; i < len(code); i++ {
		if err := enc.putBit(code[i] - '0'); err != nil {
			return err
		}
	}
	return nil
}

// WriteSymbols stops at the first symbol it cannot encode.
func (enc *Encoder[S]) WriteSymbols(syms []S) (int, error) {
	for i, sym := range syms {
		if err := enc.PutSymbol(sym); err != nil {
			return i, err
		}
	}
	return len(syms), nil
}

// Flush pads the pending bits into a whole byte and writes all buffered
// bytes. Symbols put after Flush start from a new byte.
func (enc *Encoder[S]) Flush() error {
	if enc.nbits > 0 {
		enc.buf = append(enc.buf, enc.bits)
		enc.bits, enc.nbits = 0, 0
	}
	return enc.drain()
}

// Written is the number of bytes written to the underlying writer.
func (enc *Encoder[S]) Written() uint64 {
	return enc.written
}

// Decoder walks the tree bit by bit from the root until it reaches a leaf.
// The zero padding of the last byte may decode into extra symbols, so the
// caller reads by the number of symbols or stops at an end symbol.
// Not thread safe.
type Decoder[S cmp.Ordered] struct {
	r     io.ByteReader
	root  *Node[S]
	order BitOrder
	bits  byte
	nbits uint8
}

func NewDecoder[S cmp.Ordered](r io.Reader, tree *Tree[S], opts ...CodecOpt) (*Decoder[S], error) {
	if tree == nil || tree.root == nil {
		return nil, ErrHuffmanNilTree
	}
	o := applyCodecOpts(opts)
	dec := &Decoder[S]{
		root:  tree.root,
		order: o.order,
	}
	dec.Reset(r)
	return dec, nil
}

// Reset drops the unread bits and switches to r.
func (dec *Decoder[S]) Reset(r io.Reader) {
	if br, ok := r.(io.ByteReader); ok {
		dec.r = br
	} else {
		dec.r = bufio.NewReader(r)
	}
	dec.bits, dec.nbits = 0, 0
}

func (dec *Decoder[S]) readBit() (byte, error) {
	if dec.nbits == 0 {
		b, err := dec.r.ReadByte()
		if err != nil {
			return 0, err
		}
		dec.bits, dec.nbits = b, 8
	}
	var bit byte
	if dec.order == MSBFirst {
		bit = dec.bits >> 7
		dec.bits <<= 1
	} else {
		bit = dec.bits & 1
		dec.bits >>= 1
	}
	dec.nbits--
	return bit, nil
}

// Symbol decodes the next symbol. It returns io.EOF at the end of the input,
// and a partial codeword before the end is dropped as padding.
func (dec *Decoder[S]) Symbol() (sym S, err error) {
	node := dec.root
	if node.IsLeaf() {
		// Single symbol tree, each symbol is one bit.
		if _, err = dec.readBit(); err != nil {
			return sym, err
		}
		return node.symbol, nil
	}
	var bit byte
	for !node.IsLeaf() {
		if bit, err = dec.readBit(); err != nil {
			return sym, err
		}
		if bit == 0 {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.symbol, nil
}

// ReadSymbols decodes up to n symbols. Fewer symbols come with io.EOF.
func (dec *Decoder[S]) ReadSymbols(n int) ([]S, error) {
	syms := make([]S, 0, n)
	for len(syms) < n {
		sym, err := dec.Symbol()
		if err != nil {
			return syms, err
		}
		syms = append(syms, sym)
	}
	return syms, nil
}

// Encode is the one-shot form of Encoder.WriteSymbols with Flush.
func Encode[S cmp.Ordered](w io.Writer, tree *Tree[S], syms []S, opts ...CodecOpt) error {
	enc, err := NewEncoder(w, tree, opts...)
	if err != nil {
		return err
	}
	if _, err = enc.WriteSymbols(syms); err != nil {
		return err
	}
	return enc.Flush()
}

// Decode is the one-shot form of Decoder.ReadSymbols. An input shorter
// than n symbols returns io.ErrUnexpectedEOF.
func Decode[S cmp.Ordered](r io.Reader, tree *Tree[S], n int, opts ...CodecOpt) ([]S, error) {
	dec, err := NewDecoder(r, tree, opts...)
	if err != nil {
		return nil, err
	}
	syms, err := dec.ReadSymbols(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return syms, err
}
