// Package vecmcp embeds the vecmcp tool surface in a Go program. The same
// policy, validation and embedding pipeline that serve MCP and HTTP callers
// run in-process against Valkey or Redis with the search module.
//
//	client, _ := vecmcp.New(ctx,
//	    vecmcp.WithValkey("localhost:6379", ""),
//	    vecmcp.WithPreviewFeatures(vecmcp.PreviewVectorSearch),
//	)
//	defer client.Close()
//
//	_, _ = client.CreateIndex(ctx, vecmcp.CreateIndexArgs{
//	    Database: "mflix", Collection: "movies", Name: "plots",
//	    Type: vecmcp.IndexVectorSearch,
//	    Fields: []vecmcp.IndexField{{Type: "vector", Path: "plot_embedding", NumDimensions: 3, Similarity: "cosine"}},
//	})
//	res, _ := client.VectorSearch(ctx, vecmcp.VectorSearchArgs{
//	    Database: "mflix", Collection: "movies", Path: "plot_embedding",
//	    QueryVector: []float64{0.1, 0.2, 0.3}, Limit: 5,
//	})
package vecmcp
