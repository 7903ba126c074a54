package searchindex

import (
	"strings"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// Keys is the key layout:
//
//	{prefix}index:{db}.{coll}:{name}   index metadata hash
//	{prefix}idx:{db}.{coll}:{name}     FT index name
//	{prefix}{db}.{coll}:               document key prefix
type Keys struct {
	Prefix string
}

// Meta returns the metadata hash key of an index.
func (k Keys) Meta(ns domain.Namespace, name string) string {
	return k.Prefix + "index:" + ns.String() + ":" + name
}

// Index returns the FT index name.
func (k Keys) Index(ns domain.Namespace, name string) string {
	return k.Prefix + "idx:" + ns.String() + ":" + name
}

// Documents returns the key prefix of the namespace's documents.
func (k Keys) Documents(ns domain.Namespace) string {
	return ns.KeyPrefix(k.Prefix)
}

// FieldAlias returns the schema alias of a document path.
func FieldAlias(path string) string {
	return strings.ReplaceAll(path, ".", "_")
}
