package store

import "sort"

// normalize runs data through the wire codec so that every backend sees the same
// value shapes ([]any, map[string]any, int64, time.Time).
func normalize(data map[string]any) (map[string]any, error) {
	enc, err := EncodeData(data)
	if err != nil {
		return nil, err
	}
	return DecodeData(enc), nil
}

func matches(q Query, d Document) bool {
	for _, f := range q.Filters {
		v, ok := d.Data[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

// Apply evaluates q over docs in memory. Documents missing the order-by field are left
// out; ties keep the input order.
func Apply(q Query, docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Collection != "" && d.Collection != q.Collection {
			continue
		}
		if !matches(q, d) {
			continue
		}
		if q.Order != nil {
			if _, ok := d.Data[q.Order.Field]; !ok {
				continue
			}
		}
		out = append(out, d)
	}
	if q.Order != nil {
		field, desc := q.Order.Field, q.Order.Dir == Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i].Data[field], out[j].Data[field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
