// Package document is the extended-JSON document model: nested key-value
// structures carrying numeric wrapper kinds and binary vectors.
package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IDField is the document identifier field.
const IDField = "_id"

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,256}$`)

// Document is a decoded document. Nested objects are Documents too.
type Document map[string]any

// Lookup resolves a dot-separated path. A missing segment or a non-object
// intermediate value means the field is absent.
func (d Document) Lookup(path string) (any, bool) {
	var cur any = d
	for _, seg := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at a dot-separated path, creating intermediate objects.
func (d Document) Set(path string, value any) error {
	segs := strings.Split(path, ".")
	cur := map[string]any(d)
	for i, seg := range segs[:len(segs)-1] {
		next, exists := cur[seg]
		if !exists {
			child := Document{}
			cur[seg] = child
			cur = child
			continue
		}
		obj, ok := asObject(next)
		if !ok {
			return fmt.Errorf("cannot set %q: %q is not an object", path, strings.Join(segs[:i+1], "."))
		}
		cur = obj
	}
	cur[segs[len(segs)-1]] = value
	return nil
}

// EnsureID returns the document key id, generating and storing one when _id is absent.
// String and integer ids are accepted.
func (d Document) EnsureID(generate func() string) (string, error) {
	raw, ok := d[IDField]
	if !ok {
		id := generate()
		d[IDField] = id
		return id, nil
	}

	var id string
	switch v := raw.(type) {
	case string:
		id = v
	case int64:
		id = strconv.FormatInt(v, 10)
	case Int32:
		id = strconv.FormatInt(int64(v), 10)
	case Int64:
		id = strconv.FormatInt(int64(v), 10)
	default:
		return "", fmt.Errorf("_id must be a string or an integer, got %T", raw)
	}
	if !idRegex.MatchString(id) {
		return "", fmt.Errorf("_id %q must be 1-256 alphanumeric characters, underscores or hyphens", id)
	}
	return id, nil
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case Document:
		return o, true
	case map[string]any:
		return o, true
	default:
		return nil, false
	}
}
