package tools

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// Dispatch decodes raw JSON arguments for the named tool and runs it.
func (s *Service) Dispatch(ctx context.Context, name string, raw []byte) (any, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch name {
	case ToolConnect:
		return call(ctx, raw, s.Connect)
	case ToolInsertMany:
		return call(ctx, raw, s.InsertMany)
	case ToolVectorSearch:
		return call(ctx, raw, s.VectorSearch)
	case ToolCreateIndex:
		return call(ctx, raw, s.CreateIndex)
	case ToolDropIndex:
		return call(ctx, raw, s.DropIndex)
	case ToolCollectionIndexes:
		return call(ctx, raw, s.CollectionIndexes)
	case ToolCount:
		return call(ctx, raw, s.Count)
	default:
		return nil, fmt.Errorf("unknown tool %q: %w", name, domain.ErrNotFound)
	}
}

func call[A any, R any](ctx context.Context, raw []byte, fn func(context.Context, A) (R, error)) (any, error) {
	var args A
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w: %w", domain.ErrInvalidArgument, err)
	}
	res, err := fn(ctx, args)
	if err != nil {
		return nil, err
	}
	return res, nil
}
