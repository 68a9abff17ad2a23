package mystorage

import (
	"context"
	"fmt"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mystore"
)

type Item struct {
	SessionUID string
	Key        string
	Value      string `datastore:",noindex"`
}

type sessionStorage struct {
	store mystore.Store[Item]
}

func New(store mystore.Store[Item]) Storage {
	return &sessionStorage{
		store: store,
	}
}

func itemUID(sessionUID string, key string) string {
	return fmt.Sprintf("%s/%s", sessionUID, key)
}

func sessionOf(c context.Context) (string, error) {
	sessionUID := mycontext.SessionUIDFromContext(c)
	if sessionUID == "" {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("missing session"))
	}
	return sessionUID, nil
}

func (s *sessionStorage) GetItem(c context.Context, key string) (string, bool, error) {
	sessionUID, err := sessionOf(c)
	if err != nil {
		return "", false, err
	}

	item, found, err := s.store.Get(c, itemUID(sessionUID, key))
	if err != nil {
		return "", false, myerrors.NewInternalError(err)
	}
	if !found {
		return "", false, nil
	}

	return item.Value, true, nil
}

func (s *sessionStorage) SetItem(c context.Context, key string, value string) error {
	sessionUID, err := sessionOf(c)
	if err != nil {
		return err
	}

	err = s.store.Put(c, itemUID(sessionUID, key), Item{
		SessionUID: sessionUID,
		Key:        key,
		Value:      value,
	})
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}

func (s *sessionStorage) RemoveItem(c context.Context, key string) error {
	sessionUID, err := sessionOf(c)
	if err != nil {
		return err
	}

	err = s.store.Remove(c, itemUID(sessionUID, key))
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}
