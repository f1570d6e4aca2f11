package docstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis keeps each document as a single string key. Writers take a short
// SETNX lock so two Puts to the same document never interleave.
type Redis struct {
	client  *redis.Client
	prefix  string
	lockTTL time.Duration
}

func NewRedis(client *redis.Client, prefix string, lockTTL time.Duration) *Redis {
	if prefix == "" {
		prefix = "docstore"
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Redis{client: client, prefix: prefix, lockTTL: lockTTL}
}

func (r *Redis) key(name string) (string, error) {
	n, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return r.prefix + ":doc:" + n, nil
}

func (r *Redis) Get(ctx context.Context, name string) ([]byte, error) {
	key, err := r.key(name)
	if err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", name)
	}
	return data, nil
}

func (r *Redis) Put(ctx context.Context, name string, data []byte) error {
	key, err := r.key(name)
	if err != nil {
		return err
	}
	lockKey := key + ":lock"
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey, token, r.lockTTL).Result()
	if err != nil {
		return errors.Wrapf(err, "acquire write lock for %s", name)
	}
	if !ok {
		return ErrLocked
	}
	defer func() {
		_ = r.release(context.WithoutCancel(ctx), lockKey, token)
	}()

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", name)
	}
	return nil
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (r *Redis) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, r.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "release write lock")
	}
	return nil
}
