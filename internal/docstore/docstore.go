// Package docstore is the narrow contract this service needs from its
// document database: collections of id→field-map documents supporting
// equality filters, a single-field sort, before/after cursor pagination
// and a push-based live query that redelivers the full result set on
// every change. The Mongo implementation backs deployments; MemStore
// backs tests and local runs.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by point lookups for missing documents.
var ErrNotFound = errors.New("docstore: document not found")

// Document is one record of a collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// String returns the named field as a string, or "" when absent or of
// another type.
func (d Document) String(key string) string {
	if v, ok := d.Fields[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the named field as an int, accepting the numeric types the
// drivers decode into.
func (d Document) Int(key string) int {
	switch v := d.Fields[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the named field as a float64.
func (d Document) Float(key string) float64 {
	switch v := d.Fields[key].(type) {
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
	}
	return 0
}

// Bool returns the named field as a bool, defaulting to false.
func (d Document) Bool(key string) bool {
	if v, ok := d.Fields[key].(bool); ok {
		return v
	}
	return false
}

// Time returns the named field as a time.Time, or the zero time.
func (d Document) Time(key string) time.Time {
	if v, ok := d.Fields[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

// StringSlice returns the named field as a []string, tolerating []any
// payloads from JSON/BSON decoding.
func (d Document) StringSlice(key string) []string {
	switch v := d.Fields[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether the field is present at all, regardless of type.
func (d Document) Has(key string) bool {
	_, ok := d.Fields[key]
	return ok
}

// Filter is a server-side equality predicate on one field.
type Filter struct {
	Field string
	Value any
}

// Query describes a filtered, ordered read over one collection. StartAfter
// and EndBefore are document ids acting as keyset cursors relative to the
// sort order: StartAfter yields the Limit documents following the cursor,
// EndBefore the Limit documents immediately preceding it.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
	StartAfter string
	EndBefore  string
}

// Where appends an equality filter.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Value: value})
	return q
}

// Unsubscribe tears down a live query. It must be called when the
// consumer goes away; delivery stops after it returns.
type Unsubscribe func()

// Collection is one named collection of documents.
type Collection interface {
	// Get performs a point lookup, returning ErrNotFound when missing.
	Get(ctx context.Context, id string) (Document, error)

	// Set creates or fully replaces the document with the given id.
	Set(ctx context.Context, id string, fields map[string]any) error

	// Update merges the given fields into an existing document,
	// returning ErrNotFound when it does not exist.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes a document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, id string) error

	// Find returns the documents matching the query in sort order.
	Find(ctx context.Context, q Query) ([]Document, error)

	// Count returns the number of documents matching the query's
	// filters, ignoring cursors and limit.
	Count(ctx context.Context, q Query) (int, error)

	// Watch establishes a live query: onSnapshot receives the full
	// recomputed result set for the initial state and after every
	// change to the collection; onError receives transport failures
	// without clearing previously delivered data. Callbacks are invoked
	// sequentially per subscription.
	Watch(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error)
}

// Store hands out collections and owns the underlying connection.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
