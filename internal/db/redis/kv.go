package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecmcp/internal/db"
)

// Get reads a cached value. A missing key yields db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, db.Wrap("GET", key, err)
	}
	return v, nil
}

// MGet reads many cached values. Keys are grouped per slot on a cluster.
func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	found, err := rueidis.MGet(s.client, ctx, keys)
	if err != nil {
		return nil, db.Wrap("MGET", keys[0], err)
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		msg, ok := found[k]
		if !ok || msg.IsNil() {
			continue
		}
		if out[i], err = msg.AsBytes(); err != nil {
			return nil, db.Wrap("MGET", k, err)
		}
	}
	return out, nil
}

// SetWithTTL writes a value that expires after ttl. A non-positive ttl never expires.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return db.Wrap("SET", key, s.do(ctx, s.setCmd(key, value, ttl)).Error())
}

// MSetWithTTL pipelines one SET per entry. The first failure is returned with its key.
func (s *Store) MSetWithTTL(ctx context.Context, entries []db.CacheEntry, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	cmds := make([]rueidis.Completed, 0, len(entries))
	for _, e := range entries {
		cmds = append(cmds, s.setCmd(e.Key, e.Value, ttl))
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return db.Wrap("SET", entries[i].Key, err)
		}
	}
	return nil
}

func (s *Store) setCmd(key string, value []byte, ttl time.Duration) rueidis.Completed {
	set := s.b().Set().Key(key).Value(rueidis.BinaryString(value))
	if ttl > 0 {
		return set.Ex(ttl).Build()
	}
	return set.Build()
}
