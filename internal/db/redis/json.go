package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecmcp/internal/db"
)

// rootPath addresses the whole document.
const rootPath = "$"

// JSONSetMulti pipelines one JSON.SET per item. The first failure is returned
// with its key; items before it stay written.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}
	cmds := make([]rueidis.Completed, 0, len(items))
	for _, it := range items {
		path := it.Path
		if path == "" {
			path = rootPath
		}
		cmds = append(cmds, s.b().JsonSet().Key(it.Key).Path(path).Value(rueidis.BinaryString(it.Data)).Build())
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return db.Wrap("JSON.SET", items[i].Key, err)
		}
	}
	return nil
}

// JSONGet reads a document, or the given paths of it. A missing key yields db.ErrKeyNotFound.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	raw, err := s.do(ctx, s.b().JsonGet().Key(key).Path(paths...).Build()).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, db.Wrap("JSON.GET", key, err)
	case raw == "":
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}
