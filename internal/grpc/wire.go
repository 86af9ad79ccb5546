package grpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"portfolio/internal/rules"
	"portfolio/internal/store"
)

// Messages are structpb.Struct values; document data travels in the store's wire form,
// so times and server timestamps survive the trip.

func EncodeRef(ref store.DocRef) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"collection": ref.Collection, "id": ref.ID})
}

func DecodeRef(s *structpb.Struct) (store.DocRef, error) {
	m := s.AsMap()
	ref := store.DocRef{Collection: str(m["collection"]), ID: str(m["id"])}
	if ref.Collection == "" || ref.ID == "" {
		return ref, fmt.Errorf("document reference needs collection and id")
	}
	return ref, nil
}

func encodeDoc(d store.Document) (map[string]any, error) {
	data, err := store.EncodeData(d.Data)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": d.ID, "collection": d.Collection, "data": data}, nil
}

func decodeDoc(v any) store.Document {
	m, _ := v.(map[string]any)
	data, _ := m["data"].(map[string]any)
	return store.Document{ID: str(m["id"]), Collection: str(m["collection"]), Data: store.DecodeData(data)}
}

func EncodeDocument(d store.Document) (*structpb.Struct, error) {
	m, err := encodeDoc(d)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func DecodeDocument(s *structpb.Struct) store.Document { return decodeDoc(s.AsMap()) }

func EncodeSnapshot(snap store.Snapshot) (*structpb.Struct, error) {
	docs := make([]any, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		m, err := encodeDoc(d)
		if err != nil {
			return nil, err
		}
		docs = append(docs, m)
	}
	return structpb.NewStruct(map[string]any{"docs": docs})
}

func DecodeSnapshot(s *structpb.Struct) store.Snapshot {
	raw, _ := s.AsMap()["docs"].([]any)
	snap := store.Snapshot{Docs: make([]store.Document, 0, len(raw))}
	for _, d := range raw {
		snap.Docs = append(snap.Docs, decodeDoc(d))
	}
	return snap
}

func encodeQuery(q store.Query) (map[string]any, error) {
	filters := make([]any, 0, len(q.Filters))
	for _, f := range q.Filters {
		v, err := store.Encode(f.Value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, map[string]any{"field": f.Field, "value": v})
	}
	m := map[string]any{"collection": q.Collection, "filters": filters, "limit": int64(q.Limit)}
	if q.Order != nil {
		m["order"] = map[string]any{"field": q.Order.Field, "desc": q.Order.Dir == store.Desc}
	}
	return m, nil
}

func decodeQuery(m map[string]any) (store.Query, error) {
	q := store.Collection(str(m["collection"]))
	if q.Collection == "" {
		return q, fmt.Errorf("query needs a collection")
	}
	raw, _ := m["filters"].([]any)
	for _, f := range raw {
		fm, _ := f.(map[string]any)
		q = q.Where(str(fm["field"]), store.Decode(fm["value"]))
	}
	if o, ok := m["order"].(map[string]any); ok {
		dir := store.Asc
		if desc, _ := o["desc"].(bool); desc {
			dir = store.Desc
		}
		q = q.OrderBy(str(o["field"]), dir)
	}
	if n, ok := m["limit"].(float64); ok && n > 0 {
		q = q.Take(int(n))
	}
	return q, nil
}

func EncodeQuery(q store.Query) (*structpb.Struct, error) {
	m, err := encodeQuery(q)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func DecodeQuery(s *structpb.Struct) (store.Query, error) { return decodeQuery(s.AsMap()) }

// EncodeTarget wraps a listener target as {"doc": ref} or {"query": query}.
func EncodeTarget(t store.Target) (*structpb.Struct, error) {
	switch x := t.(type) {
	case store.DocRef:
		return structpb.NewStruct(map[string]any{"doc": map[string]any{"collection": x.Collection, "id": x.ID}})
	case store.Query:
		m, err := encodeQuery(x)
		if err != nil {
			return nil, err
		}
		return structpb.NewStruct(map[string]any{"query": m})
	}
	return nil, fmt.Errorf("unsupported target %T", t)
}

func DecodeTarget(s *structpb.Struct) (store.Target, error) {
	m := s.AsMap()
	if d, ok := m["doc"].(map[string]any); ok {
		ref := store.DocRef{Collection: str(d["collection"]), ID: str(d["id"])}
		if ref.Collection == "" || ref.ID == "" {
			return nil, fmt.Errorf("document target needs collection and id")
		}
		return ref, nil
	}
	if q, ok := m["query"].(map[string]any); ok {
		return decodeQuery(q)
	}
	return nil, fmt.Errorf("target needs doc or query")
}

// WriteRequest is every mutation the service accepts.
type WriteRequest struct {
	Op         rules.Op
	Collection string
	ID         string
	Data       map[string]any
	Merge      bool
	Field      string
	Delta      int64
}

func (w WriteRequest) Encode() (*structpb.Struct, error) {
	data, err := store.EncodeData(w.Data)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"op":         string(w.Op),
		"collection": w.Collection,
		"id":         w.ID,
		"data":       data,
		"merge":      w.Merge,
		"field":      w.Field,
		"delta":      w.Delta,
	})
}

func DecodeWrite(s *structpb.Struct) (WriteRequest, error) {
	m := s.AsMap()
	data, _ := m["data"].(map[string]any)
	merge, _ := m["merge"].(bool)
	delta, _ := m["delta"].(float64)
	w := WriteRequest{
		Op:         rules.Op(str(m["op"])),
		Collection: str(m["collection"]),
		ID:         str(m["id"]),
		Data:       store.DecodeData(data),
		Merge:      merge,
		Field:      str(m["field"]),
		Delta:      int64(delta),
	}
	if w.Collection == "" {
		return w, fmt.Errorf("write needs a collection")
	}
	if w.Op != rules.OpAdd && w.ID == "" {
		return w, fmt.Errorf("%s needs a document id", w.Op)
	}
	return w, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
