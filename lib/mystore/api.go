package mystore

import (
	"context"
)

//go:generate mockgen -source=api.go -package mystore -destination store_mock.go Store
type Store[T any] interface {
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	Remove(c context.Context, uid string) error
}

// New picks the backend: Cloud Datastore when running in a Google Cloud
// project, Redis when an address is given and an in-memory map otherwise.
func New[T any](c context.Context, projectID string, redisAddr string) (Store[T], func(), error) {
	if projectID != "" {
		return newGcloudStore[T](c, projectID)
	}

	if redisAddr != "" {
		return newRedisStore[T](c, redisAddr)
	}

	return NewInMemoryStore[T](c)
}
