package document

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-json"
)

// decimalPattern matches the string forms of a Decimal128, exponent range unchecked.
var decimalPattern = regexp.MustCompile(`^[+-]?((\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?|Inf|Infinity|NaN)$`)

// Decode parses extended JSON into a Document.
func Decode(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return FromValue(v)
}

// FromValue converts a generically decoded JSON object (map[string]any with
// float64 or json.Number numbers) into a Document, resolving wrapper objects.
func FromValue(v any) (Document, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		if d, isDoc := v.(Document); isDoc {
			obj = d
		} else {
			return nil, fmt.Errorf("document must be an object, got %T", v)
		}
	}
	out, err := convert(obj)
	if err != nil {
		return nil, err
	}
	doc, ok := out.(Document)
	if !ok {
		return nil, fmt.Errorf("document must be an object, got a %T wrapper", out)
	}
	return doc, nil
}

func convert(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		return convertObject(x)
	case Document:
		return convertObject(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			c, err := convert(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return f, nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x), nil
		}
		return x, nil
	default:
		return v, nil
	}
}

func convertObject(obj map[string]any) (any, error) {
	if len(obj) == 1 {
		for key, val := range obj {
			if w, ok, err := convertWrapper(key, val); ok || err != nil {
				return w, err
			}
		}
	}
	out := make(Document, len(obj))
	for k, val := range obj {
		c, err := convert(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = c
	}
	return out, nil
}

func convertWrapper(key string, val any) (any, bool, error) {
	switch key {
	case "$numberInt":
		s, err := wrapperString(key, val)
		if err != nil {
			return nil, true, err
		}
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, true, fmt.Errorf("$numberInt %q: %w", s, err)
		}
		return Int32(n), true, nil
	case "$numberLong":
		s, err := wrapperString(key, val)
		if err != nil {
			return nil, true, err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, true, fmt.Errorf("$numberLong %q: %w", s, err)
		}
		return Int64(n), true, nil
	case "$numberDouble":
		s, err := wrapperString(key, val)
		if err != nil {
			return nil, true, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, true, fmt.Errorf("$numberDouble %q: %w", s, err)
		}
		return Double(f), true, nil
	case "$numberDecimal":
		s, err := wrapperString(key, val)
		if err != nil {
			return nil, true, err
		}
		if !decimalPattern.MatchString(s) {
			return nil, true, fmt.Errorf("$numberDecimal %q: not a decimal", s)
		}
		return Decimal128(s), true, nil
	case "$binary":
		b, err := decodeBinary(val)
		return b, true, err
	default:
		return nil, false, nil
	}
}

func wrapperString(key string, val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must hold a string, got %T", key, val)
	}
	return s, nil
}

func decodeBinary(val any) (Binary, error) {
	obj, ok := val.(map[string]any)
	if !ok {
		return Binary{}, fmt.Errorf("$binary must be an object, got %T", val)
	}
	b64, ok := obj["base64"].(string)
	if !ok {
		return Binary{}, fmt.Errorf("$binary.base64 must be a string")
	}
	st, ok := obj["subType"].(string)
	if !ok {
		return Binary{}, fmt.Errorf("$binary.subType must be a string")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Binary{}, fmt.Errorf("$binary.base64: %w", err)
	}
	if len(st) == 1 {
		st = "0" + st
	}
	sub, err := hex.DecodeString(st)
	if err != nil || len(sub) != 1 {
		return Binary{}, fmt.Errorf("$binary.subType %q must be one hex byte", st)
	}
	return Binary{Subtype: sub[0], Data: data}, nil
}

// ToStorage converts a Document into plain JSON values for the JSON store.
// Numeric wrappers become numbers and float32/int8 vector binaries become
// numeric arrays so the search module can index them; other binaries keep
// their extended-JSON form.
func ToStorage(d Document) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = storageValue(v)
	}
	return out
}

func storageValue(v any) any {
	switch x := v.(type) {
	case Document:
		return ToStorage(x)
	case map[string]any:
		return ToStorage(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = storageValue(e)
		}
		return out
	case Int32:
		return int64(x)
	case Int64:
		return int64(x)
	case Double:
		return float64(x)
	case Decimal128:
		if f, err := strconv.ParseFloat(string(x), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return json.Number(string(x))
		}
		return map[string]any{"$numberDecimal": string(x)}
	case Binary:
		if f, ok := Float32s(x); ok {
			return f
		}
		if i, ok := Int8s(x); ok {
			return i
		}
		return map[string]any{"$binary": map[string]any{
			"base64":  base64.StdEncoding.EncodeToString(x.Data),
			"subType": hex.EncodeToString([]byte{x.Subtype}),
		}}
	default:
		return v
	}
}
