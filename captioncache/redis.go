package captioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"captionsearch/config"
	"captionsearch/types"
)

// RedisStore keeps each record as a JSON string under captions:<owner>|<hash>
// plus a per-owner set of hashes used by List.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already connected client. The caller closes it.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(owner, fileHash string) string {
	return config.CaptionKeyPrefix + types.RecordKey(owner, fileHash)
}

func ownerIndexKey(owner string) string {
	return config.CaptionKeyPrefix + "index:" + owner
}

func (r *RedisStore) Get(ctx context.Context, owner, fileHash string) (*types.CaptionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, recordKey(owner, fileHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var rec types.CaptionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode caption record: %w", err)
	}
	return &rec, nil
}

func (r *RedisStore) Put(ctx context.Context, record *types.CaptionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode caption record: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(record.Owner, record.FileHash), raw, 0)
		pipe.SAdd(ctx, ownerIndexKey(record.Owner), record.FileHash)
		return nil
	})
	return err
}

func (r *RedisStore) List(ctx context.Context, owner string) ([]*types.CaptionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()

	hashes, err := r.client.SMembers(ctx, ownerIndexKey(owner)).Result()
	if err != nil {
		return nil, err
	}
	if len(hashes) == 0 {
		return nil, nil
	}
	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = recordKey(owner, h)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*types.CaptionRecord, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec types.CaptionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	sortRecords(out)
	return out, nil
}

// Close is a no-op: the client belongs to whoever passed it in.
func (r *RedisStore) Close() error {
	return nil
}
