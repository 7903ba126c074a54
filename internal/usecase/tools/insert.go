package tools

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	domdoc "github.com/kailas-cloud/vecmcp/internal/domain/document"
	"github.com/kailas-cloud/vecmcp/internal/usecase/embedding"
	"github.com/kailas-cloud/vecmcp/internal/usecase/validation"
)

// embeddingInputKey is the embeddingParameters entry that lists the texts to embed.
const embeddingInputKey = "input"

// fieldInput collects the texts embedded for one vector field path.
type fieldInput struct {
	path    string
	docs    []int
	texts   []string
	vectors [][]float32
}

// InsertMany converts, embeds and validates documents, then writes the whole
// batch. Any violation aborts the batch before anything is written.
func (s *Service) InsertMany(ctx context.Context, args InsertManyArgs) (*InsertManyResult, error) {
	return invoke(ctx, s, ToolInsertMany, args.Confirm, nil, func(ctx context.Context) (*InsertManyResult, error) {
		ns, err := domain.NewNamespace(args.Database, args.Collection)
		if err != nil {
			return nil, err
		}
		if len(args.Documents) == 0 {
			return nil, fmt.Errorf("documents must not be empty: %w", domain.ErrInvalidArgument)
		}
		if maxDocs := s.policy.MaxDocumentsPerInsert; maxDocs > 0 && len(args.Documents) > maxDocs {
			return nil, fmt.Errorf("batch of %d documents exceeds the limit of %d: %w",
				len(args.Documents), maxDocs, domain.ErrInvalidArgument)
		}

		docs := make([]domdoc.Document, len(args.Documents))
		for i, raw := range args.Documents {
			doc, err := domdoc.FromValue(raw)
			if err != nil {
				return nil, fmt.Errorf("document %d: %w: %w", i, domain.ErrInvalidArgument, err)
			}
			docs[i] = doc
		}

		h, err := s.conns.Require()
		if err != nil {
			return nil, err
		}

		var embedded []string
		if len(args.EmbeddingParameters) > 0 {
			if !s.previewEnabled(PreviewVectorSearch) {
				return nil, fmt.Errorf("embeddingParameters require the %s preview feature: %w",
					PreviewVectorSearch, domain.ErrToolDisabled)
			}
			embedded, err = s.embedDocuments(ctx, ns, docs, args.EmbeddingParameters)
			if err != nil {
				return nil, err
			}
		}

		violations, err := s.validator.FindViolationsMany(ctx, ns, docs)
		if err != nil {
			return nil, fmt.Errorf("validate documents: %w", err)
		}
		if err := validation.AsError(violations); err != nil {
			return nil, err
		}

		ids, err := s.repos.Documents(h).InsertMany(ctx, ns, docs)
		if err != nil {
			return nil, fmt.Errorf("insert into %s: %w", ns, err)
		}
		return &InsertManyResult{InsertedCount: len(ids), InsertedIDs: ids, EmbeddedPaths: embedded}, nil
	})
}

// embedDocuments generates embeddings for every path named in the input list
// and stores them into the documents. Paths are embedded concurrently.
func (s *Service) embedDocuments(
	ctx context.Context, ns domain.Namespace, docs []domdoc.Document, raw map[string]any,
) ([]string, error) {
	params, err := domain.ParseEmbeddingParameters(raw)
	if err != nil {
		return nil, err
	}
	inputs, err := parseEmbeddingInput(raw[embeddingInputKey], len(docs))
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, in := range inputs {
		g.Go(func() error {
			vectors, err := s.embeddings.GenerateEmbeddings(gctx, embedding.Request{
				Namespace:  ns,
				Path:       in.path,
				RawValues:  in.texts,
				Parameters: params,
				InputType:  domain.InputTypeDocument,
			})
			if err != nil {
				return err
			}
			in.vectors = vectors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(inputs))
	for _, in := range inputs {
		for j, docIdx := range in.docs {
			if err := docs[docIdx].Set(in.path, in.vectors[j]); err != nil {
				return nil, fmt.Errorf("document %d: %w: %w", docIdx, domain.ErrInvalidArgument, err)
			}
		}
		paths = append(paths, in.path)
	}
	return paths, nil
}

// parseEmbeddingInput reads the input list: one object per document mapping a
// vector field path to the text to embed. Results are sorted by path.
func parseEmbeddingInput(v any, numDocs int) ([]*fieldInput, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("embeddingParameters.input must be a list: %w", domain.ErrInvalidArgument)
	}
	if len(list) != numDocs {
		return nil, fmt.Errorf("embeddingParameters.input has %d entries for %d documents: %w",
			len(list), numDocs, domain.ErrInvalidArgument)
	}

	byPath := make(map[string]*fieldInput)
	for i, entry := range list {
		if entry == nil {
			continue
		}
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("embeddingParameters.input[%d] must be an object: %w", i, domain.ErrInvalidArgument)
		}
		for path, text := range obj {
			s, ok := text.(string)
			if !ok {
				return nil, fmt.Errorf("embeddingParameters.input[%d].%s must be a string: %w",
					i, path, domain.ErrInvalidArgument)
			}
			in := byPath[path]
			if in == nil {
				in = &fieldInput{path: path}
				byPath[path] = in
			}
			in.docs = append(in.docs, i)
			in.texts = append(in.texts, s)
		}
	}

	out := make([]*fieldInput, 0, len(byPath))
	for _, in := range byPath {
		out = append(out, in)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].path < out[b].path })
	return out, nil
}
