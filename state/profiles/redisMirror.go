package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"nostrpfp/engine/library"
)

const PROFILE_KEY = "pfp:profile:%s" // <pubkey>

// storeRetries bounds how often Store retries after another writer touched the key.
const storeRetries = 50

func ProfileKey(account library.Account) string {
	return fmt.Sprintf(PROFILE_KEY, account)
}

// RedisMirror shares fetched profiles between processes.
type RedisMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisMirror(rdb *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{rdb: rdb, ttl: ttl}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Store only overwrites the shared copy when profile is newer than it. The compare and the write
// run in a WATCH transaction, so a concurrent older write cannot land on top of a newer one.
func (r *RedisMirror) Store(ctx context.Context, account library.Account, profile library.TimestampedProfile) error {
	key := ProfileKey(account)
	value, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	txf := func(tx *redis.Tx) error {
		existing, ok, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if ok && existing.Timestamp >= profile.Timestamp {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, r.ttl)
			return nil
		})
		return err
	}
	for i := 0; i < storeRetries; i++ {
		err = r.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("store %s: %w", key, err)
}

func (r *RedisMirror) Load(ctx context.Context, account library.Account) (library.TimestampedProfile, bool, error) {
	return load(ctx, r.rdb, ProfileKey(account))
}

func load(ctx context.Context, rdb getter, key string) (library.TimestampedProfile, bool, error) {
	var p library.TimestampedProfile
	value, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return p, false, nil
	}
	if err != nil {
		return p, false, err
	}
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return p, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return p, true, nil
}
