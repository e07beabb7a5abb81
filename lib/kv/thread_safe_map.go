package kv

import (
	"errors"
	"io"
	"reflect"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrThreadSafeMapKeyNotFound = errors.New("[kv] key not found")
)

// threadSafeMap serializes the access to a HashTable by a RWMutex.
type threadSafeMap[K comparable, V any] struct {
	lock           sync.RWMutex
	items          *HashTable[K, V]
	initCap        uint64
	isClosableItem bool
	logger         *zap.Logger
}

func (t *threadSafeMap[K, V]) newTable(n uint64) *HashTable[K, V] {
	ht := NewHashTable[K, V](WithHashTableLogger[K, V](t.logger))
	ht.Reserve(n)
	return ht
}

func (t *threadSafeMap[K, V]) AddOrUpdate(key K, obj V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.items.Put(key, obj)
	return nil
}

func (t *threadSafeMap[K, V]) Replace(items map[K]V) error {
	ht := t.newTable(uint64(len(items)))
	for k, v := range items {
		ht.Put(k, v)
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	t.items = ht
	return nil
}

func (t *threadSafeMap[K, V]) Delete(key K) (V, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if val, deleted := t.items.Delete(key); deleted {
		return val, nil
	}
	return *new(V), ErrThreadSafeMapKeyNotFound
}

func (t *threadSafeMap[K, V]) Get(key K) (item V, exists bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.items.Get(key)
}

func (t *threadSafeMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {
	realFilters := lo.Filter(filters, func(filter SafeStoreKeyFilterFunc[K], _ int) bool {
		return filter != nil
	})
	if len(realFilters) == 0 {
		realFilters = append(realFilters, defaultAllKeysFilter[K])
	}

	t.lock.RLock()
	defer t.lock.RUnlock()

	keys := make([]K, 0, t.items.Len())
	t.items.Foreach(func(key K, _ V) bool {
		for _, filter := range realFilters {
			if filter(key) {
				keys = append(keys, key)
				break
			}
		}
		return true
	})
	return keys
}

func (t *threadSafeMap[K, V]) ListValues(keys ...K) (items []V) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if len(keys) > 0 {
		values := make([]V, 0, len(keys))
		for _, key := range lo.Uniq(keys) {
			if val, exists := t.items.Get(key); exists {
				values = append(values, val)
			}
		}
		return values
	}

	values := make([]V, 0, t.items.Len())
	t.items.Foreach(func(_ K, val V) bool {
		values = append(values, val)
		return true
	})
	return values
}

func isNilItem(item any) bool {
	if item == nil {
		return true
	}
	switch v := reflect.ValueOf(item); v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
	}
	return false
}

// Purge drops all items. The io.Closer items are closed if the closable
// check is enabled, and their errors are combined.
func (t *threadSafeMap[K, V]) Purge() (merr error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.isClosableItem {
		t.items.Foreach(func(key K, item V) bool {
			if isNilItem(item) {
				return true
			}
			if closer, ok := any(item).(io.Closer); ok {
				if err := closer.Close(); err != nil {
					t.logger.Error("purge item close failed", zap.Any("key", key), zap.Error(err))
					merr = multierr.Append(merr, err)
				}
			}
			return true
		})
	}

	t.items = t.newTable(t.initCap)
	return merr
}

type ThreadSafeMapOption[K comparable, V any] func(*threadSafeMap[K, V])

func WithThreadSafeMapInitCap[K comparable, V any](capacity uint64) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.initCap = capacity
	}
}

func WithThreadSafeMapCloseableItemCheck[K comparable, V any]() ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.isClosableItem = reflect.TypeOf((*V)(nil)).Elem().Implements(reflect.TypeOf((*io.Closer)(nil)).Elem())
	}
}

func WithThreadSafeMapLogger[K comparable, V any](logger *zap.Logger) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewThreadSafeMap[K comparable, V any](opts ...ThreadSafeMapOption[K, V]) ThreadSafeStorer[K, V] {
	m := &threadSafeMap[K, V]{
		initCap: 32,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		if o != nil {
			o(m)
		}
	}
	m.items = m.newTable(m.initCap)
	return m
}
