package mystore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/datastore"
)

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func newGcloudStore[T any](c context.Context, projectID string) (*gcloudStore[T], func(), error) {
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kindOf[T](),
		}, func() {
			client.Close()
		}, nil
}

func kindOf[T any]() string {
	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if strings.Contains(kind, ".") {
		kind = strings.Split(kind, ".")[1]
	}
	return kind
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	_, err := s.client.Put(c, datastore.NameKey(s.kind, uid, nil), &value)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	value := new(T)

	err := s.client.Get(c, datastore.NameKey(s.kind, uid, nil), value)
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *gcloudStore[T]) Remove(c context.Context, uid string) error {
	err := s.client.Delete(c, datastore.NameKey(s.kind, uid, nil))
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}
