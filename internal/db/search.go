package db

// TagMatch is an exact-match pre-filter on a TAG field.
type TagMatch struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // schema alias of the vector field
	Filters      []TagMatch
	Vector       []float32
	K            int
	ReturnFields []string
	RawScores    bool // return __vector_score as-is (L2 and IP distances)
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
