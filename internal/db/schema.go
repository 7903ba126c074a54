package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Distance is an FT vector DISTANCE_METRIC.
type Distance string

// Supported distance metrics.
const (
	DistanceCosine Distance = "COSINE"
	DistanceL2     Distance = "L2"
	DistanceIP     Distance = "IP"
)

// FieldKind is the FT schema type of an indexed path.
type FieldKind int

// Indexed path kinds.
const (
	KindTag FieldKind = iota + 1
	KindText
	KindVector
)

func (k FieldKind) String() string {
	switch k {
	case KindTag:
		return "TAG"
	case KindText:
		return "TEXT"
	case KindVector:
		return "VECTOR"
	default:
		return "UNKNOWN"
	}
}

// HNSW configures a FLOAT32 HNSW vector field. Zero M or EFConstruct keep
// the server default.
type HNSW struct {
	Dim         int
	Distance    Distance
	M           int
	EFConstruct int
}

// SchemaField indexes one JSONPath under an alias usable in queries.
type SchemaField struct {
	Path   string
	Alias  string
	Kind   FieldKind
	Vector HNSW
}

// IndexDefinition is an FT index over the JSON documents under Prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []SchemaField
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts an index named name over keys starting with prefix.
func NewIndex(name, prefix string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, Prefix: prefix}}
}

// Tag indexes path as an exact-match TAG field.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	return b.add(SchemaField{Path: path, Alias: alias, Kind: KindTag})
}

// Text indexes path as a full-text field.
func (b *IndexBuilder) Text(path, alias string) *IndexBuilder {
	return b.add(SchemaField{Path: path, Alias: alias, Kind: KindText})
}

// Vector indexes path as an HNSW vector field.
func (b *IndexBuilder) Vector(path, alias string, v HNSW) *IndexBuilder {
	return b.add(SchemaField{Path: path, Alias: alias, Kind: KindVector, Vector: v})
}

func (b *IndexBuilder) add(f SchemaField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// Validate reports the first problem that FT.CREATE would reject.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if len(d.Fields) == 0 {
		return errors.New("index needs at least one field")
	}
	aliases := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Path == "" {
			return fmt.Errorf("field %d: path is required", i)
		}
		if !IsValidIdentifier(f.Alias) {
			return fmt.Errorf("field %s: invalid alias %q", f.Path, f.Alias)
		}
		if _, dup := aliases[f.Alias]; dup {
			return fmt.Errorf("field %s: duplicate alias %q", f.Path, f.Alias)
		}
		aliases[f.Alias] = struct{}{}
		if f.Kind == KindVector && f.Vector.Dim <= 0 {
			return fmt.Errorf("field %s: vector dimension must be positive", f.Path)
		}
	}
	return nil
}

// Args renders the FT.CREATE arguments, index name first.
func (d *IndexDefinition) Args() ([]string, error) {
	args := []string{d.Name, "ON", "JSON"}
	if d.Prefix != "" {
		args = append(args, "PREFIX", "1", d.Prefix)
	}
	args = append(args, "SCHEMA")
	for i := range d.Fields {
		f := &d.Fields[i]
		args = append(args, f.Path, "AS", f.Alias)
		switch f.Kind {
		case KindTag, KindText:
			args = append(args, f.Kind.String())
		case KindVector:
			args = append(args, vectorArgs(f.Vector)...)
		default:
			return nil, fmt.Errorf("field %s: unknown kind %d", f.Path, f.Kind)
		}
	}
	return args, nil
}

func vectorArgs(v HNSW) []string {
	distance := v.Distance
	if distance == "" {
		distance = DistanceCosine
	}
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	if v.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(v.M))
	}
	if v.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruct))
	}
	return append([]string{"VECTOR", "HNSW", strconv.Itoa(len(attrs))}, attrs...)
}

// String renders the full FT.CREATE command for logs.
func (d *IndexDefinition) String() string {
	args, err := d.Args()
	if err != nil {
		return "FT.CREATE " + d.Name + " <invalid>"
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

// IsValidIdentifier reports whether s is a non-empty run of [A-Za-z0-9_.:-].
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
