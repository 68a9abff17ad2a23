package mystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTTL = 30 * 24 * time.Hour

type redisStore[T any] struct {
	client *redis.Client
	kind   string
}

func newRedisStore[T any](c context.Context, addr string) (*redisStore[T], func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})

	err := client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis at %s: %s", addr, err)
	}

	return redisStoreFromClient[T](client), func() {
		client.Close()
	}, nil
}

func redisStoreFromClient[T any](client *redis.Client) *redisStore[T] {
	return &redisStore[T]{
		client: client,
		kind:   kindOf[T](),
	}
}

func (s *redisStore[T]) key(uid string) string {
	return fmt.Sprintf("%s:%s", s.kind, uid)
}

func (s *redisStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling entity %s with uid %s: %w", s.kind, uid, err)
	}

	err = s.client.Set(c, s.key(uid), data, redisTTL).Err()
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %w", s.kind, uid, err)
	}

	return nil
}

func (s *redisStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	data, err := s.client.Get(c, s.key(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("error fetching entity %s with uid %s: %w", s.kind, uid, err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling entity %s with uid %s: %w", s.kind, uid, err)
	}

	return value, true, nil
}

func (s *redisStore[T]) Remove(c context.Context, uid string) error {
	err := s.client.Del(c, s.key(uid)).Err()
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %w", s.kind, uid, err)
	}

	return nil
}
