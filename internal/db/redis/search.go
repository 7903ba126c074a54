package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecmcp/internal/db"
)

// scoreAlias names the KNN distance in replies.
const scoreAlias = "__vector_score"

// SearchKNN runs a filtered KNN query. Scores are similarities in [0, 1]
// derived from cosine distance unless q.RawScores asks for the distance itself.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := checkKNN(q); err != nil {
		return nil, err
	}

	args := append(make([]string, 0, 16), q.IndexName, knnExpr(q))
	if n := len(q.ReturnFields); n > 0 {
		args = append(args, "RETURN", strconv.Itoa(n+1), scoreAlias)
		args = append(args, q.ReturnFields...)
	}
	args = append(args,
		"SORTBY", scoreAlias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", rueidis.VectorString32(q.Vector),
		"DIALECT", "2",
	)

	reply, err := s.ftSearch(ctx, q.IndexName, args)
	if err != nil {
		return nil, err
	}
	return decodeHits(reply, q.RawScores)
}

// SearchCount returns how many documents of index match query.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	reply, err := s.ftSearch(ctx, index, []string{index, query, "LIMIT", "0", "0"})
	if err != nil {
		return 0, err
	}
	if len(reply) == 0 {
		return 0, nil
	}
	n, err := reply[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("FT.SEARCH %s: total: %w", index, err)
	}
	return int(n), nil
}

func (s *Store) ftSearch(ctx context.Context, index string, args []string) ([]rueidis.RedisMessage, error) {
	reply, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if serverSays(err, "no such index", "unknown index name") {
		return nil, db.ErrIndexNotFound
	}
	if err != nil {
		return nil, db.Wrap("FT.SEARCH", index, err)
	}
	return reply, nil
}

func checkKNN(q *db.KNNQuery) error {
	switch {
	case q.IndexName == "":
		return errors.New("knn: index name is required")
	case q.VectorField == "":
		return errors.New("knn: vector field is required")
	case len(q.Vector) == 0:
		return errors.New("knn: query vector is empty")
	case q.K <= 0:
		return fmt.Errorf("knn: k must be positive, got %d", q.K)
	}
	return nil
}

// knnExpr renders "(<prefilter>)=>[KNN k @field $BLOB AS score]"; no filters means "*".
func knnExpr(q *db.KNNQuery) string {
	pre := "*"
	if f := buildFilter(q.Filters); f != "" {
		pre = "(" + f + ")"
	}
	return fmt.Sprintf("%s=>[KNN %d @%s $BLOB AS %s]", pre, q.K, q.VectorField, scoreAlias)
}

// decodeHits reads a RESP2 reply: total, then key and field-list pairs.
func decodeHits(reply []rueidis.RedisMessage, rawScores bool) (*db.SearchResult, error) {
	res := &db.SearchResult{}
	if len(reply) == 0 {
		return res, nil
	}
	total, err := reply[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("FT.SEARCH: total: %w", err)
	}
	res.Total = int(total)

	for i := 1; i+1 < len(reply); i += 2 {
		key, kerr := reply[i].ToString()
		pairs, ferr := reply[i+1].ToArray()
		if kerr != nil || ferr != nil {
			continue
		}
		hit := db.SearchEntry{Key: key, Fields: fieldMap(pairs)}
		if raw, ok := hit.Fields[scoreAlias]; ok {
			delete(hit.Fields, scoreAlias)
			if d, err := strconv.ParseFloat(raw, 64); err == nil {
				hit.Score = d
				if !rawScores {
					hit.Score = max(0, 1-d)
				}
			}
		}
		res.Entries = append(res.Entries, hit)
	}
	return res, nil
}

func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name, nerr := pairs[i].ToString()
		value, verr := pairs[i+1].ToString()
		if nerr == nil && verr == nil {
			m[name] = value
		}
	}
	return m
}

// buildFilter ANDs exact TAG matches.
func buildFilter(matches []db.TagMatch) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, "@"+m.Field+":{"+escapeTag(m.Value)+"}")
	}
	return strings.Join(parts, " ")
}

// escapeTag backslash-escapes everything but letters, digits and underscores.
func escapeTag(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
