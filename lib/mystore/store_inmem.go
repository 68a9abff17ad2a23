package mystore

import (
	"context"
	"sync"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	s.Lock()
	defer s.Unlock()

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	s.Lock()
	defer s.Unlock()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) Remove(c context.Context, uid string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.Items, uid)

	return nil
}
