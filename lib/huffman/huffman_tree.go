package huffman

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/queue"
)

var (
	ErrHuffmanEmptyInput    = errors.New("[huffman] empty symbol set")
	ErrHuffmanFreqOverflow  = errors.New("[huffman] total frequency overflows")
	ErrHuffmanUnknownSymbol = errors.New("[huffman] symbol not in the code table")
	ErrHuffmanNilTree       = errors.New("[huffman] nil tree")
)

// Node is either a leaf with a symbol or a branch with exactly two children.
type Node[S cmp.Ordered] struct {
	freq        uint64
	symbol      S
	left, right *Node[S]
}

func (n *Node[S]) Freq() uint64 {
	return n.freq
}

// Symbol returns the symbol of a leaf.
func (n *Node[S]) Symbol() (sym S, ok bool) {
	if !n.IsLeaf() {
		return sym, false
	}
	return n.symbol, true
}

func (n *Node[S]) Left() *Node[S] {
	return n.left
}

func (n *Node[S]) Right() *Node[S] {
	return n.right
}

func (n *Node[S]) IsLeaf() bool {
	return n.left == nil && n.right == nil
}

// Code is a codeword, one '0' (left) or '1' (right) byte per bit.
type Code string

func (c Code) Len() int {
	return len(c)
}

type Tree[S cmp.Ordered] struct {
	root  *Node[S]
	table map[S]Code
}

func (t *Tree[S]) Root() *Node[S] {
	return t.root
}

// Len is the number of distinct symbols.
func (t *Tree[S]) Len() int {
	return len(t.table)
}

// Table returns a copy of the code table.
func (t *Tree[S]) Table() map[S]Code {
	table := make(map[S]Code, len(t.table))
	for sym, code := range t.table {
		table[sym] = code
	}
	return table
}

func (t *Tree[S]) Code(sym S) (Code, error) {
	code, ok := t.table[sym]
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrHuffmanUnknownSymbol, sym)
	}
	return code, nil
}

// EncodedBits is the payload size in bits of symbols with the given
// frequencies, excluding the padding.
func (t *Tree[S]) EncodedBits(freq map[S]uint64) (uint64, error) {
	bits := uint64(0)
	for sym, f := range freq {
		code, err := t.Code(sym)
		if err != nil {
			return 0, err
		}
		bits += f * uint64(code.Len())
	}
	return bits, nil
}

/*
buildTable walks the tree, left for '0' and right for '1'.

	     (15)
	     /  \
	   (6)   a:9
	   / \
	 c:2 b:4

a: "1", b: "01", c: "00"

A tree of a single leaf maps the symbol to "0".
*/
func (t *Tree[S]) buildTable() {
	t.table = make(map[S]Code)
	if t.root.IsLeaf() {
		t.table[t.root.symbol] = "0"
		return
	}

	type frame struct {
		node *Node[S]
		code string
	}
	stack := []frame{{node: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node.IsLeaf() {
			t.table[f.node.symbol] = Code(f.code)
			continue
		}
		stack = append(stack,
			frame{node: f.node.right, code: f.code + "1"},
			frame{node: f.node.left, code: f.code + "0"},
		)
	}
}

func (t *Tree[S]) maxCodeLen() int {
	return lo.Max(lo.Map(lo.Values(t.table), func(code Code, _ int) int {
		return code.Len()
	}))
}

type treeOptions struct {
	logger *zap.Logger
}

type TreeOpt func(*treeOptions)

func WithTreeLogger(logger *zap.Logger) TreeOpt {
	return func(o *treeOptions) {
		if logger != nil {
			o.logger = logger.Named("huffman")
		}
	}
}

// BuildTree merges the two least frequent trees until one is left.
// The symbols are seeded into the min-heap in ascending order and equal
// frequencies pop in push order, so the same input always builds the same
// tree. The first popped tree becomes the left child.
func BuildTree[S cmp.Ordered](freq map[S]uint64, opts ...TreeOpt) (*Tree[S], error) {
	if len(freq) == 0 {
		return nil, ErrHuffmanEmptyInput
	}
	o := &treeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	symbols := lo.Keys(freq)
	slices.Sort(symbols)

	// The priorities of the heap are int64.
	total := uint64(0)
	for _, sym := range symbols {
		f := freq[sym]
		if f > math.MaxInt64 || total > math.MaxInt64-f {
			return nil, ErrHuffmanFreqOverflow
		}
		total += f
	}

	pq := queue.NewArrayPriorityQueue[*Node[S]](
		queue.WithArrayPriorityQueueCapacity[*Node[S]](len(symbols)),
	)
	for _, sym := range symbols {
		leaf := &Node[S]{freq: freq[sym], symbol: sym}
		pq.Push(queue.NewPriorityQueueItem[*Node[S]](leaf, int64(leaf.freq)))
	}
	for pq.Len() > 1 {
		left := pq.Pop().Value()
		right := pq.Pop().Value()
		branch := &Node[S]{freq: left.freq + right.freq, left: left, right: right}
		pq.Push(queue.NewPriorityQueueItem[*Node[S]](branch, int64(branch.freq)))
	}

	tree := &Tree[S]{root: pq.Pop().Value()}
	tree.buildTable()
	o.logger.Debug("huffman tree built",
		zap.Int("symbols", len(symbols)),
		zap.Uint64("total", total),
		zap.Int("maxCodeLen", tree.maxCodeLen()),
	)
	return tree, nil
}

// BuildTreeFromSymbols counts the symbols and builds the tree.
func BuildTreeFromSymbols[S cmp.Ordered](syms []S, opts ...TreeOpt) (*Tree[S], error) {
	freq := lo.MapValues(lo.CountValues(syms), func(cnt int, _ S) uint64 {
		return uint64(cnt)
	})
	return BuildTree(freq, opts...)
}

// BuildTreeFromString counts the bytes of s.
func BuildTreeFromString(s string, opts ...TreeOpt) (*Tree[byte], error) {
	return BuildTreeFromSymbols([]byte(s), opts...)
}

// String renders the tree level by level for debugging.
func (t *Tree[S]) String() string {
	var sb strings.Builder
	level := []*Node[S]{t.root}
	for len(level) > 0 {
		next := make([]*Node[S], 0, len(level)*2)
		for i, n := range level {
			if i > 0 {
				sb.WriteByte(' ')
			}
			if sym, ok := n.Symbol(); ok {
				fmt.Fprintf(&sb, "%v:%d", sym, n.freq)
				continue
			}
			fmt.Fprintf(&sb, "(%d)", n.freq)
			next = append(next, n.left, n.right)
		}
		sb.WriteByte('\n')
		level = next
	}
	return sb.String()
}
