package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore implements the Store port with in-process maps. It is
// primarily intended for tests and local development without Redis.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]entry
	lists  map[string][]string

	now func() time.Time
}

type entry struct {
	value    string
	deadline time.Time // zero means no TTL
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]entry),
		lists:  make(map[string][]string),
		now:    time.Now,
	}
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.deadline = s.now().Add(ttl)
	}
	s.values[key] = e
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveEntry(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
		delete(s.lists, key)
	}
	return nil
}

func (s *MemoryStore) RPush(ctx context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append(s.lists[key], values...)
	return nil
}

func (s *MemoryStore) LRange(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if e, ok := s.liveEntry(key); ok {
		n, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			n = 0
		}
		count = n + 1
		e.value = strconv.FormatInt(count, 10)
		s.values[key] = e
	} else {
		count = 1
		s.values[key] = entry{value: "1"}
	}
	return count, nil
}

func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.liveEntry(key); ok {
		e.deadline = s.now().Add(ttl)
		s.values[key] = e
	}
	return nil
}

// liveEntry returns the entry for key, removing it first if expired.
// Callers must hold the lock.
func (s *MemoryStore) liveEntry(key string) (entry, bool) {
	e, ok := s.values[key]
	if !ok {
		return entry{}, false
	}
	if !e.deadline.IsZero() && s.now().After(e.deadline) {
		delete(s.values, key)
		return entry{}, false
	}
	return e, true
}
