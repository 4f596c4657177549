package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShapeError reports a stored document that does not match its expected
// schema. The quiz layer classifies it as an internal error: documents are
// only written through this package, so a malformed one is an invariant
// violation, not client input.
type ShapeError struct {
	Doc    string
	Fields []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s document: bad fields [%s]", e.Doc, strings.Join(e.Fields, ", "))
}

// docReader accumulates field extraction failures so a single decode reports
// every bad field at once.
type docReader struct {
	doc    string
	data   bson.M
	fields []string
}

func newDocReader(doc string, data bson.M) *docReader {
	return &docReader{doc: doc, data: data}
}

func (r *docReader) bad(field, want string) {
	r.fields = append(r.fields, fmt.Sprintf("%s (want %s)", field, want))
}

func (r *docReader) str(field string) string {
	v, ok := r.data[field].(string)
	if !ok {
		r.bad(field, "string")
	}
	return v
}

func (r *docReader) integer(field string) int {
	switch v := r.data[field].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		r.bad(field, "number")
		return 0
	}
}

func (r *docReader) float(field string) float64 {
	switch v := r.data[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		r.bad(field, "number")
		return 0
	}
}

func (r *docReader) boolean(field string) bool {
	v, ok := r.data[field].(bool)
	if !ok {
		r.bad(field, "bool")
	}
	return v
}

func (r *docReader) timestamp(field string) time.Time {
	switch v := r.data[field].(type) {
	case time.Time:
		return v
	case primitive.DateTime:
		return v.Time()
	default:
		r.bad(field, "timestamp")
		return time.Time{}
	}
}

func (r *docReader) sub(field string) bson.M {
	if m, ok := asMap(r.data[field]); ok {
		return m
	}
	r.bad(field, "document")
	return bson.M{}
}

func (r *docReader) list(field string) []any {
	if s, ok := asSlice(r.data[field]); ok {
		return s
	}
	r.bad(field, "array")
	return nil
}

func (r *docReader) has(field string) bool {
	_, ok := r.data[field]
	return ok
}

func (r *docReader) err() error {
	if len(r.fields) == 0 {
		return nil
	}
	return &ShapeError{Doc: r.doc, Fields: r.fields}
}

// asMap normalizes the driver's document representations.
func asMap(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case bson.D:
		out := make(bson.M, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	case map[string]any:
		return bson.M(m), true
	default:
		return nil, false
	}
}

// asSlice normalizes the driver's array representations.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case bson.A:
		return []any(s), true
	default:
		return nil, false
	}
}
