package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	domdoc "github.com/kailas-cloud/vecmcp/internal/domain/document"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	docrepo "github.com/kailas-cloud/vecmcp/internal/repository/document"
	"github.com/kailas-cloud/vecmcp/internal/usecase/embedding"
)

// DefaultSearchLimit applies when vector-search is called without a limit.
const DefaultSearchLimit = 10

// MaxSearchLimit bounds the limit of vector-search.
const MaxSearchLimit = 1000

// VectorSearch embeds queryText (or takes queryVector as is) and runs a KNN
// query over the vectorSearch index holding args.Path.
func (s *Service) VectorSearch(ctx context.Context, args VectorSearchArgs) (*VectorSearchResult, error) {
	return invoke(ctx, s, ToolVectorSearch, args.Confirm, nil, func(ctx context.Context) (*VectorSearchResult, error) {
		ns, err := domain.NewNamespace(args.Database, args.Collection)
		if err != nil {
			return nil, err
		}
		if args.Path == "" {
			return nil, fmt.Errorf("path is required: %w", domain.ErrInvalidArgument)
		}
		if (args.QueryText == "") == (len(args.QueryVector) == 0) {
			return nil, fmt.Errorf("exactly one of queryText and queryVector is required: %w", domain.ErrInvalidArgument)
		}
		limit := args.Limit
		if limit == 0 {
			limit = DefaultSearchLimit
		}
		if limit < 0 || limit > MaxSearchLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxSearchLimit, domain.ErrInvalidArgument)
		}

		h, err := s.conns.Require()
		if err != nil {
			return nil, err
		}
		if !h.IsVectorSearchSupported(ctx) {
			return nil, domain.ErrVectorSearchNotSupported
		}
		indexes, err := s.repos.Indexes(h).List(ctx, ns)
		if err != nil {
			return nil, fmt.Errorf("list indexes of %s: %w", ns, err)
		}
		idx, def, ok := findVectorField(indexes, args.Path)
		if !ok {
			return nil, &domain.VectorIndexNotFoundError{Namespace: ns, Path: args.Path}
		}

		filters, err := buildFilters(idx, args.Filter)
		if err != nil {
			return nil, err
		}

		vector, err := s.queryVector(ctx, ns, args)
		if err != nil {
			return nil, err
		}
		if len(vector) != def.NumDimensions() {
			return nil, fmt.Errorf("query vector has %d dimensions, %s expects %d: %w",
				len(vector), args.Path, def.NumDimensions(), domain.ErrInvalidArgument)
		}

		hits, err := s.repos.Documents(h).Search(ctx, ns, docrepo.KNNRequest{
			Index:     idx.Name,
			Path:      args.Path,
			Vector:    vector,
			Limit:     limit,
			Filters:   filters,
			RawScores: def.Similarity() != vectorindex.SimilarityCosine,
		})
		if err != nil {
			return nil, fmt.Errorf("vector search %s: %w", ns, err)
		}

		out := make([]SearchHit, 0, len(hits))
		for _, hit := range hits {
			sh := SearchHit{ID: hit.ID, Score: hit.Score}
			if hit.Document != nil {
				sh.Document = domdoc.ToStorage(hit.Document)
			}
			out = append(out, sh)
		}
		return &VectorSearchResult{Index: idx.Name, Documents: out}, nil
	})
}

func (s *Service) queryVector(ctx context.Context, ns domain.Namespace, args VectorSearchArgs) ([]float32, error) {
	if len(args.QueryVector) > 0 {
		v := make([]float32, len(args.QueryVector))
		for i, x := range args.QueryVector {
			v[i] = float32(x)
		}
		return v, nil
	}

	params, err := domain.ParseEmbeddingParameters(args.EmbeddingParameters)
	if err != nil {
		return nil, err
	}
	vectors, err := s.embeddings.GenerateEmbeddings(ctx, embedding.Request{
		Namespace:  ns,
		Path:       args.Path,
		RawValues:  []string{args.QueryText},
		Parameters: params,
		InputType:  domain.InputTypeQuery,
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query vector, got %d: %w", len(vectors), domain.ErrEmbeddingProviderError)
	}
	return vectors[0], nil
}

// findVectorField returns the first vectorSearch index with a vector field on path.
func findVectorField(indexes []vectorindex.SearchIndex, path string) (vectorindex.SearchIndex, vectorindex.Definition, bool) {
	for _, idx := range indexes {
		for _, def := range idx.VectorDefinitions() {
			if def.Path() == path {
				return idx, def, true
			}
		}
	}
	return vectorindex.SearchIndex{}, vectorindex.Definition{}, false
}

// buildFilters maps {path: value} to exact matches on filter fields of idx.
func buildFilters(idx vectorindex.SearchIndex, filter map[string]any) (map[string]string, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	filterPaths := make(map[string]bool)
	for _, f := range idx.Fields {
		if f.Type == vectorindex.FieldFilter {
			filterPaths[f.Path] = true
		}
	}

	out := make(map[string]string, len(filter))
	for path, v := range filter {
		if !filterPaths[path] {
			return nil, fmt.Errorf("%s is not a filter field of index %s: %w", path, idx.Name, domain.ErrInvalidArgument)
		}
		value, err := filterValue(v)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w: %w", path, domain.ErrInvalidArgument, err)
		}
		out[path] = value
	}
	return out, nil
}

func filterValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		return "", fmt.Errorf("unsupported filter value type %T", v)
	}
}
