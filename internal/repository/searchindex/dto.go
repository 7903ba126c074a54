package searchindex

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// indexToHash converts a SearchIndex to a map for HSET.
func indexToHash(ns domain.Namespace, idx vectorindex.SearchIndex) (map[string]string, error) {
	fieldsJSON, err := json.Marshal(idx.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return map[string]string{
		"name":        idx.Name,
		"namespace":   ns.String(),
		"type":        string(idx.Kind),
		"fields_json": string(fieldsJSON),
		"created_at":  strconv.FormatInt(idx.CreatedAt, 10),
	}, nil
}

// indexFromHash hydrates a SearchIndex from an HGETALL result map.
func indexFromHash(m map[string]string) (vectorindex.SearchIndex, error) {
	idx := vectorindex.SearchIndex{
		Name: m["name"],
		Kind: vectorindex.Kind(m["type"]),
	}

	if s := m["created_at"]; s != "" {
		createdAt, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return vectorindex.SearchIndex{}, fmt.Errorf("invalid created_at: %w", err)
		}
		idx.CreatedAt = createdAt
	}

	if s := m["fields_json"]; s != "" {
		if err := json.Unmarshal([]byte(s), &idx.Fields); err != nil {
			return vectorindex.SearchIndex{}, fmt.Errorf("unmarshal fields: %w", err)
		}
	}

	return idx, nil
}
