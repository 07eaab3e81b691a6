package remote

import (
	"sort"
	"sync"
)

type SyncMap[K comparable, V any] struct {
	m    map[K]V
	lock *sync.RWMutex
}

func NewSyncMap[K comparable, V any]() SyncMap[K, V] {
	var lock sync.RWMutex
	return SyncMap[K, V]{
		m:    make(map[K]V),
		lock: &lock,
	}
}

func (sm SyncMap[K, V]) Put(key K, value V) {
	sm.lock.Lock()
	sm.m[key] = value
	sm.lock.Unlock()
}

func (sm SyncMap[K, V]) Get(key K) (V, bool) {
	sm.lock.RLock()
	value, ok := sm.m[key]
	sm.lock.RUnlock()
	return value, ok
}

func (sm SyncMap[K, V]) Delete(key K) {
	sm.lock.Lock()
	delete(sm.m, key)
	sm.lock.Unlock()
}

func (sm SyncMap[K, V]) Len() int {
	sm.lock.RLock()
	defer sm.lock.RUnlock()
	return len(sm.m)
}

// Range calls fn on a snapshot of the entries until fn returns false.
func (sm SyncMap[K, V]) Range(fn func(key K, value V) bool) {
	sm.lock.RLock()
	keys := make([]K, 0, len(sm.m))
	values := make([]V, 0, len(sm.m))
	for k, v := range sm.m {
		keys = append(keys, k)
		values = append(values, v)
	}
	sm.lock.RUnlock()
	for i := range keys {
		if !fn(keys[i], values[i]) {
			return
		}
	}
}

func sortedKeys[V any](sm SyncMap[string, V]) []string {
	var keys []string
	sm.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	return keys
}
