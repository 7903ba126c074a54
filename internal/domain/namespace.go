package domain

import (
	"fmt"
	"strings"
)

// DefaultKeyPrefix is the default prefix of every key written by vecmcp.
const DefaultKeyPrefix = "vecmcp:"

// Namespace identifies a document collection as "<database>.<collection>".
type Namespace struct {
	Database   string
	Collection string
}

// NewNamespace validates both parts. Names are limited to [a-zA-Z0-9_-];
// collections may also contain dots.
func NewNamespace(database, collection string) (Namespace, error) {
	if database == "" {
		return Namespace{}, fmt.Errorf("database is required: %w", ErrInvalidArgument)
	}
	if collection == "" {
		return Namespace{}, fmt.Errorf("collection is required: %w", ErrInvalidArgument)
	}
	if !validName(database, false) {
		return Namespace{}, fmt.Errorf("database %q contains invalid characters: %w", database, ErrInvalidArgument)
	}
	if !validName(collection, true) {
		return Namespace{}, fmt.Errorf("collection %q contains invalid characters: %w", collection, ErrInvalidArgument)
	}
	return Namespace{Database: database, Collection: collection}, nil
}

// ParseNamespace splits "db.collection" on the first dot.
func ParseNamespace(s string) (Namespace, error) {
	database, collection, ok := strings.Cut(s, ".")
	if !ok {
		return Namespace{}, fmt.Errorf("namespace %q must be <database>.<collection>: %w", s, ErrInvalidArgument)
	}
	return NewNamespace(database, collection)
}

// String returns the "db.collection" form used as the catalog cache key.
func (n Namespace) String() string {
	return n.Database + "." + n.Collection
}

// KeyPrefix returns the key prefix of the namespace's documents under root.
func (n Namespace) KeyPrefix(root string) string {
	return root + n.String() + ":"
}

func validName(s string, allowDot bool) bool {
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != '-' && (r != '.' || !allowDot) {
			return false
		}
	}
	return true
}
