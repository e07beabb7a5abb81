package kv

import "io"

type Map[K comparable, V any] interface {
	Len() int64
	Put(key K, val V) bool
	PutIfAbsent(key K, val V) bool
	Get(key K) (val V, exists bool)
	Contains(key K) bool
	Delete(key K) (val V, deleted bool)
	Foreach(action func(key K, val V) bool)
	Clear()
}

type SafeStoreKeyFilterFunc[K comparable] func(key K) bool

func defaultAllKeysFilter[K comparable](key K) bool {
	return true
}

type Closable interface {
	io.Closer
}

type ThreadSafeStorer[K comparable, V any] interface {
	Purge() error
	AddOrUpdate(key K, obj V) error
	Replace(items map[K]V) error
	Delete(key K) (V, error)
	Get(key K) (item V, exists bool)
	ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K
	ListValues(keys ...K) (items []V)
}
