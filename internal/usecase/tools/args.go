package tools

import "github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"

// ConnectArgs are the arguments of connect.
type ConnectArgs struct {
	Addrs    []string `json:"addrs"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
	Confirm  bool     `json:"confirm,omitempty"`
}

// ConnectResult is the result of connect.
type ConnectResult struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// InsertManyArgs are the arguments of insert-many.
type InsertManyArgs struct {
	Database   string           `json:"database"`
	Collection string           `json:"collection"`
	Documents  []map[string]any `json:"documents"`
	// EmbeddingParameters holds model, outputDimension, outputDType and input,
	// a list aligned with Documents mapping a vector field path to the text to embed.
	EmbeddingParameters map[string]any `json:"embeddingParameters,omitempty"`
	Confirm             bool           `json:"confirm,omitempty"`
}

// InsertManyResult is the result of insert-many.
type InsertManyResult struct {
	InsertedCount int      `json:"insertedCount"`
	InsertedIDs   []string `json:"insertedIds"`
	// EmbeddedPaths lists the paths embeddings were generated for.
	EmbeddedPaths []string `json:"embeddedPaths,omitempty"`
}

// VectorSearchArgs are the arguments of vector-search.
type VectorSearchArgs struct {
	Database            string         `json:"database"`
	Collection          string         `json:"collection"`
	Path                string         `json:"path"`
	QueryText           string         `json:"queryText,omitempty"`
	QueryVector         []float64      `json:"queryVector,omitempty"`
	Limit               int            `json:"limit,omitempty"`
	Filter              map[string]any `json:"filter,omitempty"`
	EmbeddingParameters map[string]any `json:"embeddingParameters,omitempty"`
	Confirm             bool           `json:"confirm,omitempty"`
}

// SearchHit is one vector-search result.
type SearchHit struct {
	ID       string         `json:"_id"`
	Score    float64        `json:"score"`
	Document map[string]any `json:"document,omitempty"`
}

// VectorSearchResult is the result of vector-search.
type VectorSearchResult struct {
	Index     string      `json:"index"`
	Documents []SearchHit `json:"documents"`
}

// CreateIndexArgs are the arguments of create-index.
type CreateIndexArgs struct {
	Database   string              `json:"database"`
	Collection string              `json:"collection"`
	Name       string              `json:"name"`
	Type       vectorindex.Kind    `json:"type"`
	Fields     []vectorindex.Field `json:"fields"`
	Confirm    bool                `json:"confirm,omitempty"`
}

// CreateIndexResult is the result of create-index.
type CreateIndexResult struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// DropIndexArgs are the arguments of drop-index.
type DropIndexArgs struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
	Confirm    bool   `json:"confirm,omitempty"`
}

// DropIndexResult is the result of drop-index.
type DropIndexResult struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// NamespaceArgs are the arguments of collection-indexes and count.
type NamespaceArgs struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
	Confirm    bool   `json:"confirm,omitempty"`
}

// CollectionIndexesResult is the result of collection-indexes.
type CollectionIndexesResult struct {
	Indexes []vectorindex.SearchIndex `json:"indexes"`
}

// CountResult is the result of count.
type CountResult struct {
	Count int `json:"count"`
}
