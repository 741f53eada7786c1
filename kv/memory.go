package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

type MemoryStore struct {
	entries *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	v, found := s.entries.Get(key)
	if !found {
		return nil, ErrKeyNotFound
	}
	value := v.([]byte)
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, value []byte) error {
	s.entries.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}
