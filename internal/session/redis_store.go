package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the redis key of the machine's single session slot.
const DefaultKey = "machine_process"

type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. A ttl of zero keeps
// sessions until they are released.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    DefaultKey,
		ttl:    ttl,
	}
}

func (r *RedisStore) Get(ctx context.Context) (*Session, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decode(val)
}

func (r *RedisStore) Create(ctx context.Context, s Session) (bool, error) {
	if s.ProcessID == "" {
		return false, fmt.Errorf("session: missing process id")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.SetNX(ctx, r.key, data, r.ttl).Result()
}

func (r *RedisStore) Release(ctx context.Context, processID string) (bool, error) {
	released := false

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, r.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		s, err := decode(val)
		if err != nil {
			return err
		}
		if s.ProcessID != processID {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, r.key)
			return nil
		})
		if err != nil {
			return err
		}

		released = true
		return nil
	}, r.key)

	// the slot changed between GET and DEL
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return released, nil
}

func (r *RedisStore) Take(ctx context.Context) (*Session, error) {
	val, err := r.client.GetDel(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decode(val)
}

func decode(val []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}
