package queue

import (
	"container/heap"
	"sync"
)

type pqItem[E comparable] struct {
	priority int64
	index    int64
	seq      uint64
	value    E
}

func (item *pqItem[E]) Index() int64 {
	if item == nil {
		return -1
	}
	return item.index
}

func (item *pqItem[E]) Value() (val E) {
	if item == nil {
		// return empty value by default
		return
	}
	return item.value
}

func (item *pqItem[E]) Priority() int64 {
	if item == nil {
		return -1
	}
	return item.priority
}

func (item *pqItem[E]) Sequence() uint64 {
	if item == nil {
		return 0
	}
	return item.seq
}

func (item *pqItem[E]) SetIndex(idx int64) {
	if item == nil {
		return
	}
	item.index = idx
}

// SetPriority must not be called while the item is in a queue.
func (item *pqItem[E]) SetPriority(pri int64) {
	if item == nil {
		return
	}
	item.priority = pri
}

func (item *pqItem[E]) setSequence(seq uint64) {
	item.seq = seq
}

func NewPriorityQueueItem[E comparable](val E, pri int64) PQItem[E] {
	return &pqItem[E]{
		priority: pri,
		value:    val,
		index:    -1,
	}
}

// arrayPQ implements the heap.Interface.
type arrayPQ[E comparable] struct {
	capacity   int
	seq        uint64
	arr        []PQItem[E]
	comparator PQItemLessThenComparator[E]
}

func (pq *arrayPQ[E]) Len() int { return len(pq.arr) }
func (pq *arrayPQ[E]) Less(i, j int) bool {
	res := pq.comparator(pq.arr[i], pq.arr[j])
	return res == iLTj
}
func (pq *arrayPQ[E]) Swap(i, j int) {
	pq.arr[i], pq.arr[j] = pq.arr[j], pq.arr[i]
	pq.arr[i].SetIndex(int64(i))
	pq.arr[j].SetIndex(int64(j))
}

func (pq *arrayPQ[E]) Pop() interface{} {
	prev := pq.arr
	n := len(prev)
	if n <= 0 {
		return nil
	}

	item := prev[n-1]
	item.SetIndex(-1)
	prev[n-1] = *new(PQItem[E]) // nil object
	pq.arr = prev[:n-1]
	return item
}

func (pq *arrayPQ[E]) Push(i interface{}) {
	item, ok := i.(PQItem[E])
	if !ok {
		return
	}

	if pq.arr == nil {
		pq.arr = make([]PQItem[E], 0, pq.capacity)
	}
	pq.seq++
	item.setSequence(pq.seq)
	item.SetIndex(int64(len(pq.arr)))
	pq.arr = append(pq.arr, item)
}

type ArrayPriorityQueue[E comparable] struct {
	queue *arrayPQ[E]
	lock  *sync.Mutex
}

func (pq *ArrayPriorityQueue[E]) Len() int64 {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	return int64(len(pq.queue.arr))
}

func (pq *ArrayPriorityQueue[E]) Pop() ReadOnlyPQItem[E] {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	if len(pq.queue.arr) == 0 {
		return nil
	}
	item := heap.Pop(pq.queue)
	return item.(ReadOnlyPQItem[E])
}

func (pq *ArrayPriorityQueue[E]) Push(item PQItem[E]) {
	if item == nil {
		return
	}
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	heap.Push(pq.queue, item)
}

func (pq *ArrayPriorityQueue[E]) Peek() ReadOnlyPQItem[E] {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	if len(pq.queue.arr) == 0 {
		return nil
	}
	return pq.queue.arr[0]
}

// Clear drops all items and restarts the push sequence.
func (pq *ArrayPriorityQueue[E]) Clear() {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	for _, item := range pq.queue.arr {
		item.SetIndex(-1)
	}
	clear(pq.queue.arr)
	pq.queue.arr = pq.queue.arr[:0]
	pq.queue.seq = 0
}

// MinPriorityFirst pops the smallest priority first. Equal priorities
// pop in push order.
func MinPriorityFirst[E comparable](i, j ReadOnlyPQItem[E]) CmpEnum {
	if ip, jp := i.Priority(), j.Priority(); ip < jp {
		return iLTj
	} else if ip > jp {
		return iGTj
	}
	return seqCompare(i, j)
}

// MaxPriorityFirst pops the largest priority first. Equal priorities
// pop in push order.
func MaxPriorityFirst[E comparable](i, j ReadOnlyPQItem[E]) CmpEnum {
	if ip, jp := i.Priority(), j.Priority(); ip > jp {
		return iLTj
	} else if ip < jp {
		return iGTj
	}
	return seqCompare(i, j)
}

func seqCompare[E comparable](i, j ReadOnlyPQItem[E]) CmpEnum {
	if is, js := i.Sequence(), j.Sequence(); is < js {
		return iLTj
	} else if is > js {
		return iGTj
	}
	return iEQj
}

type ArrayPriorityQueueOption[E comparable] func(*ArrayPriorityQueue[E])

func NewArrayPriorityQueue[E comparable](opts ...ArrayPriorityQueueOption[E]) PriorityQueue[E] {
	pq := &ArrayPriorityQueue[E]{
		queue: new(arrayPQ[E]),
	}
	for _, o := range opts {
		if o != nil {
			o(pq)
		}
	}
	if pq.queue.capacity <= 0 {
		pq.queue.capacity = 64
	}
	if pq.queue.comparator == nil {
		pq.queue.comparator = MinPriorityFirst[E]
	}
	return pq
}

func WithArrayPriorityQueueCapacity[E comparable](capacity int) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		if capacity <= 0 {
			capacity = 64
		}
		pq.queue.capacity = capacity
	}
}

func WithArrayPriorityQueueComparator[E comparable](fn PQItemLessThenComparator[E]) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		if fn == nil {
			fn = MinPriorityFirst[E]
		}
		pq.queue.comparator = fn
	}
}

func WithArrayPriorityQueueEnableThreadSafe[E comparable]() ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		pq.lock = &sync.Mutex{}
	}
}
