package vecmcp

import (
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	healthuc "github.com/kailas-cloud/vecmcp/internal/usecase/health"
	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
)

// Tool arguments and results, shared with the MCP and HTTP transports.
type (
	InsertManyArgs          = tools.InsertManyArgs
	InsertManyResult        = tools.InsertManyResult
	VectorSearchArgs        = tools.VectorSearchArgs
	VectorSearchResult      = tools.VectorSearchResult
	SearchHit               = tools.SearchHit
	CreateIndexArgs         = tools.CreateIndexArgs
	CreateIndexResult       = tools.CreateIndexResult
	DropIndexArgs           = tools.DropIndexArgs
	DropIndexResult         = tools.DropIndexResult
	NamespaceArgs           = tools.NamespaceArgs
	CollectionIndexesResult = tools.CollectionIndexesResult
	CountResult             = tools.CountResult
	ConnectArgs             = tools.ConnectArgs
	ConnectResult           = tools.ConnectResult
)

// Search index definitions.
type (
	SearchIndex = vectorindex.SearchIndex
	IndexField  = vectorindex.Field
	IndexKind   = vectorindex.Kind
)

// Index kinds.
const (
	IndexVectorSearch = vectorindex.KindVectorSearch
	IndexSearch       = vectorindex.KindSearch
)

// PreviewVectorSearch gates vector-search and embedding generation on insert.
const PreviewVectorSearch = tools.PreviewVectorSearch

// HealthReport is the result of Client.Health.
type HealthReport = healthuc.Report
