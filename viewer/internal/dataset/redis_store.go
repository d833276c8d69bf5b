package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore отдает объекты датасетов, хранящиеся как строковые значения Redis
type RedisStore struct {
	client   *redis.Client
	prefix   string
	maxBytes int64
}

// NewRedisStore создает хранилище поверх существующего клиента.
// prefix добавляется к имени каждого объекта.
func NewRedisStore(client *redis.Client, prefix string, maxBytes int64) *RedisStore {
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		maxBytes: maxBytes,
	}
}

// NewRedisClient создает клиента и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// ===== Ключи Redis =====

func (r *RedisStore) objectKey(name string) string {
	return r.prefix + name
}

func (r *RedisStore) Name() string {
	return "redis:" + r.client.Options().Addr
}

// Close закрывает клиента Redis
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// ===== Объекты =====

func (r *RedisStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := r.objectKey(name)

	if r.maxBytes > 0 {
		size, err := r.client.StrLen(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", key, err)
		}
		if size > r.maxBytes {
			return nil, &ObjectTooLargeError{Name: name, Limit: r.maxBytes}
		}
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return names, nil
}

func (r *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := r.client.Set(ctx, r.objectKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", r.objectKey(name), err)
	}
	return nil
}
