package hexgrid

import "sync"

// Storage indexes hexagons by their canonical coordinate key.
// Every method must be safe for concurrent use and individually atomic.
// Callers may supply their own implementation through GridConfig.Storage.
type Storage interface {
	Get(key string) (*Hexagon, bool)
	Put(key string, h *Hexagon)
	Delete(key string) (*Hexagon, bool)
	Contains(key string) bool
	Len() int
	// Range calls fn for each entry until fn returns false. fn must not
	// call back into the storage.
	Range(fn func(key string, h *Hexagon) bool)
}

// MapStorage is the default Storage: a map guarded by a RWMutex.
type MapStorage struct {
	mu    sync.RWMutex
	hexes map[string]*Hexagon
}

// NewMapStorage creates an empty MapStorage.
func NewMapStorage() *MapStorage {
	return &MapStorage{hexes: make(map[string]*Hexagon)}
}

func (s *MapStorage) Get(key string) (*Hexagon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hexes[key]
	return h, ok
}

func (s *MapStorage) Put(key string, h *Hexagon) {
	s.mu.Lock()
	s.hexes[key] = h
	s.mu.Unlock()
}

func (s *MapStorage) Delete(key string) (*Hexagon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hexes[key]
	if ok {
		delete(s.hexes, key)
	}
	return h, ok
}

func (s *MapStorage) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hexes[key]
	return ok
}

func (s *MapStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hexes)
}

// Range holds the read lock for the whole iteration.
func (s *MapStorage) Range(fn func(key string, h *Hexagon) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, h := range s.hexes {
		if !fn(k, h) {
			return
		}
	}
}
