package searchindex

import (
	"fmt"

	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// buildIndex creates an FT definition over the namespace's JSON documents.
// Vector fields are FLOAT32/HNSW, filter fields TAG and text fields TEXT.
func buildIndex(keys Keys, ns domain.Namespace, idx vectorindex.SearchIndex, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(keys.Index(ns, idx.Name), keys.Documents(ns))

	for _, f := range idx.Fields {
		jsonPath, alias := "$."+f.Path, FieldAlias(f.Path)
		switch f.Type {
		case vectorindex.FieldVector:
			distance, err := distanceFor(f.Similarity)
			if err != nil {
				return nil, err
			}
			b.Vector(jsonPath, alias, db.HNSW{
				Dim:         f.NumDimensions,
				Distance:    distance,
				M:           hnsw.M,
				EFConstruct: hnsw.EFConstruct,
			})
		case vectorindex.FieldFilter:
			b.Tag(jsonPath, alias)
		case vectorindex.FieldText:
			b.Text(jsonPath, alias)
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.Type)
		}
	}

	return b.Build()
}

// distanceFor maps a similarity to the FT distance metric.
func distanceFor(s vectorindex.Similarity) (db.Distance, error) {
	switch s {
	case vectorindex.SimilarityCosine:
		return db.DistanceCosine, nil
	case vectorindex.SimilarityEuclidean:
		return db.DistanceL2, nil
	case vectorindex.SimilarityDotProduct:
		return db.DistanceIP, nil
	default:
		return "", fmt.Errorf("unknown similarity: %q", s)
	}
}
