package mystorage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys of the values kept per visitor session.
const (
	KeyCart      = "cart"
	KeyLastOrder = "lastOrder"
	KeyUser      = "user"
	KeyToken     = "token"
	KeyLanguage  = "language"
	KeyCheckout  = "checkout"
)

// Storage is a key/value store of serialized values, scoped to the session
// found in the context.
//
//go:generate mockgen -source=api.go -package mystorage -destination storage_mock.go Storage
type Storage interface {
	GetItem(c context.Context, key string) (string, bool, error)
	SetItem(c context.Context, key string, value string) error
	RemoveItem(c context.Context, key string) error
}

// GetJSON reads the value under key and unmarshals it into dest.
// Absent values are reported as not found; unparseable values as an error.
func GetJSON(c context.Context, s Storage, key string, dest any) (bool, error) {
	raw, found, err := s.GetItem(c, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	err = json.Unmarshal([]byte(raw), dest)
	if err != nil {
		return false, fmt.Errorf("error parsing stored %s: %w", key, err)
	}

	return true, nil
}

func SetJSON(c context.Context, s Storage, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializing %s: %w", key, err)
	}

	return s.SetItem(c, key, string(data))
}
