package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"captionsearch/config"
	"captionsearch/types"
)

const maxUpdateAttempts = 10

// RedisStore keeps jobs as JSON values with a TTL, acting as the result backend
// shared by the API process and the workers.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. ttl <= 0 keeps jobs forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func jobKey(id string) string {
	return config.JobKeyPrefix + id
}

func (r *RedisStore) Create(ctx context.Context, job *types.Job) error {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, jobKey(job.ID), raw, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*types.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()
	raw, err := r.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var job types.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// Update runs fn inside a WATCH/MULTI transaction, retrying on contention.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(job *types.Job) error) (*types.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()
	key := jobKey(id)

	var updated types.Job
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var job types.Job
		if err := json.Unmarshal(raw, &job); err != nil {
			return fmt.Errorf("decode job %s: %w", id, err)
		}
		if err := fn(&job); err != nil {
			return err
		}
		out, err := json.Marshal(&job)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, r.keepTTL())
			return nil
		})
		if err == nil {
			updated = job
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("update job %s: too much contention", id)
}

func (r *RedisStore) keepTTL() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	return redis.KeepTTL
}
