package redis

import (
	"context"

	"github.com/kailas-cloud/vecmcp/internal/db"
)

// CreateIndex runs FT.CREATE for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := def.Args()
	if err != nil {
		return err
	}
	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	if serverSays(err, "index already exists") {
		return db.ErrIndexExists
	}
	return db.Wrap("FT.CREATE", def.Name, err)
}

// DropIndex runs FT.DROPINDEX. Indexed documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	if serverSays(err, "unknown index name", "no such index") {
		return db.ErrIndexNotFound
	}
	return db.Wrap("FT.DROPINDEX", name, err)
}

// ListIndexes returns every FT index on the server. Without a search module
// it yields db.ErrSearchNotEnabled.
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	names, err := s.do(ctx, s.b().Arbitrary("FT._LIST").Build()).AsStrSlice()
	if serverSays(err, "unknown command") {
		return nil, db.ErrSearchNotEnabled
	}
	if err != nil {
		return nil, db.Wrap("FT._LIST", "", err)
	}
	return names, nil
}
