package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecmcp/internal/db"
)

// scanPageSize is the COUNT hint of each SCAN step.
const scanPageSize = 100

// HSet writes metadata fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for f, v := range fields {
		cmd = cmd.FieldValue(f, v)
	}
	return db.Wrap("HSET", key, s.do(ctx, cmd.Build()).Error())
}

// HGetAll reads a metadata hash. An absent key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, db.Wrap("HGETALL", key, err)
	}
	return m, nil
}

// HGetAllMulti reads several hashes in one pipelined round-trip. Results keep key order.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make([]rueidis.Completed, 0, len(keys))
	for _, k := range keys {
		cmds = append(cmds, s.b().Hgetall().Key(k).Build())
	}
	out := make([]map[string]string, 0, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, db.Wrap("HGETALL", keys[i], err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Del removes a key of any type.
func (s *Store) Del(ctx context.Context, key string) error {
	return db.Wrap("DEL", key, s.do(ctx, s.b().Del().Key(key).Build()).Error())
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, db.Wrap("EXISTS", key, err)
	}
	return n == 1, nil
}

// Scan collects every key matching pattern, following the cursor to the end.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanPageSize).Build()
		page, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, db.Wrap("SCAN", pattern, err)
		}
		keys = append(keys, page.Elements...)
		if cursor = page.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
