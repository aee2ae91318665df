package kv

import (
	"context"
	"sync"
)

type InMemory struct {
	storage map[string]string

	mx sync.RWMutex
}

func NewInMemory() *InMemory {
	return &InMemory{
		storage: make(map[string]string, 8), //nolint:mnd // a handful of collections

		mx: sync.RWMutex{},
	}
}

func (s *InMemory) Get(_ context.Context, key string) (string, bool, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	v, ok := s.storage[key]
	return v, ok, nil
}

func (s *InMemory) Set(_ context.Context, key, value string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.storage[key] = value
	return nil
}

func (s *InMemory) Remove(_ context.Context, key string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	delete(s.storage, key)
	return nil
}
