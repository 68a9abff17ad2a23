package paymentapi

import (
	"context"
	"sync"
)

// Loader initializes a provider SDK once. A failed load is not remembered, so
// the next call tries again.
type Loader struct {
	mutex  sync.Mutex
	loaded bool
	load   func(c context.Context) error
}

func NewLoader(load func(c context.Context) error) *Loader {
	return &Loader{
		load: load,
	}
}

func (l *Loader) Load(c context.Context) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.loaded {
		return nil
	}

	err := l.load(c)
	if err != nil {
		return err
	}
	l.loaded = true

	return nil
}
