// Package store is the document store behind the site: schemaless documents grouped in
// named collections, with realtime snapshot listeners. Two backends implement it, a
// gorm/sqlite one for self-hosting and a Firestore one.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrStopped            = errors.New("iterator stopped")
	ErrUnsupportedValue   = errors.New("unsupported value type")
)

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's commit time when written.
var ServerTimestamp = serverTimestamp{}

type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Data       map[string]any `json:"data"`
}

func (d Document) Ref() DocRef { return DocRef{Collection: d.Collection, ID: d.ID} }

func (d Document) Value(field string) any {
	if d.Data == nil {
		return nil
	}
	return d.Data[field]
}

func (d Document) String(field string) string {
	s, _ := d.Value(field).(string)
	return s
}

func (d Document) Bool(field string) bool {
	b, _ := d.Value(field).(bool)
	return b
}

func (d Document) Int(field string) int64 {
	n, _ := toInt(d.Value(field))
	return n
}

func (d Document) Time(field string) time.Time {
	t, _ := d.Value(field).(time.Time)
	return t
}

// Strings reads a list of strings; non-string entries are skipped.
func (d Document) Strings(field string) []string {
	switch v := d.Value(field).(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Target is what a listener watches: a Query or a single DocRef.
type Target interface {
	CollectionPath() string
	Key() string
}

type DocRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

func Doc(collection, id string) DocRef { return DocRef{Collection: collection, ID: id} }

// Path joins a collection path and further segments, e.g. Path("artifacts", app, "public").
func Path(segments ...string) string { return strings.Join(segments, "/") }

func (r DocRef) CollectionPath() string { return r.Collection }
func (r DocRef) Key() string            { return r.Collection + "/" + r.ID }

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type Order struct {
	Field string    `json:"field"`
	Dir   Direction `json:"dir"`
}

// Query selects documents of one collection. Filters are equalities.
type Query struct {
	Collection string   `json:"collection"`
	Filters    []Filter `json:"filters,omitempty"`
	Order      *Order   `json:"order,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

func Collection(path string) Query { return Query{Collection: path} }

func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

func (q Query) OrderBy(field string, dir Direction) Query {
	q.Order = &Order{Field: field, Dir: dir}
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

func (q Query) CollectionPath() string { return q.Collection }

func (q Query) Key() string {
	var b strings.Builder
	b.WriteString(q.Collection)
	for _, f := range q.Filters {
		b.WriteString("|")
		b.WriteString(f.Field)
		b.WriteString("==")
		b.WriteString(formatKeyValue(f.Value))
	}
	if q.Order != nil {
		b.WriteString("|order:")
		b.WriteString(q.Order.Field)
		if q.Order.Dir == Desc {
			b.WriteString(":desc")
		}
	}
	if q.Limit > 0 {
		b.WriteString("|limit:")
		b.WriteString(formatKeyValue(int64(q.Limit)))
	}
	return b.String()
}

// Snapshot is the complete result set of a target at one point in time.
// For a DocRef target it holds zero or one document.
type Snapshot struct {
	Docs []Document `json:"docs"`
}

func (s Snapshot) Size() int { return len(s.Docs) }

func (s Snapshot) First() (Document, bool) {
	if len(s.Docs) == 0 {
		return Document{}, false
	}
	return s.Docs[0], true
}

// Iterator yields full snapshots until stopped. The first Next returns the current state.
type Iterator interface {
	Next(ctx context.Context) (Snapshot, error)
	Stop()
}

type Reader interface {
	Get(ctx context.Context, ref DocRef) (Document, error)
	List(ctx context.Context, q Query) ([]Document, error)
}

type Writer interface {
	Add(ctx context.Context, collection string, data map[string]any) (DocRef, error)
	Set(ctx context.Context, ref DocRef, data map[string]any, merge bool) error
	Update(ctx context.Context, ref DocRef, data map[string]any) error
	Delete(ctx context.Context, ref DocRef) error
	Increment(ctx context.Context, ref DocRef, field string, delta int64) error
}

type Listener interface {
	Listen(ctx context.Context, target Target) (Iterator, error)
}

type Store interface {
	Reader
	Writer
	Listener
	Close() error
}
