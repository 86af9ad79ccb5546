package store

import (
	"testing"
	"time"
)

func docs(items ...map[string]any) []Document {
	out := make([]Document, len(items))
	for i, data := range items {
		out[i] = Document{ID: string(rune('a' + i)), Collection: "projects_data", Data: data}
	}
	return out
}

func ids(ds []Document) string {
	s := ""
	for _, d := range ds {
		s += d.ID
	}
	return s
}

func TestApplyOrdersAndExcludesMissingField(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := docs(
		map[string]any{"createdAt": t0},
		map[string]any{"title": "no timestamp"},
		map[string]any{"createdAt": t0.Add(2 * time.Hour)},
		map[string]any{"createdAt": t0.Add(time.Hour)},
	)

	got := Apply(Collection("projects_data").OrderBy("createdAt", Desc), in)
	if ids(got) != "cda" {
		t.Errorf("Expected order cda, got %s", ids(got))
	}

	got = Apply(Collection("projects_data").OrderBy("createdAt", Asc), in)
	if ids(got) != "adc" {
		t.Errorf("Expected order adc, got %s", ids(got))
	}
}

func TestApplyTiesKeepInputOrder(t *testing.T) {
	in := docs(
		map[string]any{"rank": 1},
		map[string]any{"rank": 1},
		map[string]any{"rank": 0},
		map[string]any{"rank": 1},
	)
	got := Apply(Collection("projects_data").OrderBy("rank", Desc), in)
	if ids(got) != "abdc" {
		t.Errorf("Expected abdc, got %s", ids(got))
	}
}

func TestApplyFiltersAndLimit(t *testing.T) {
	in := docs(
		map[string]any{"isFeatured": true, "category": "Web Developer", "n": int64(1)},
		map[string]any{"isFeatured": false, "category": "Web Developer", "n": int64(2)},
		map[string]any{"isFeatured": true, "category": "Data Analyst", "n": int64(3)},
		map[string]any{"isFeatured": true, "category": "Web Developer", "n": int64(4)},
		map[string]any{"isFeatured": "true", "n": int64(5)},
	)

	got := Apply(Collection("projects_data").Where("isFeatured", true).OrderBy("n", Desc).Take(2), in)
	if ids(got) != "dc" {
		t.Errorf("Expected dc, got %s", ids(got))
	}

	got = Apply(Collection("projects_data").Where("category", "Web Developer"), in)
	if ids(got) != "abd" {
		t.Errorf("Expected abd, got %s", ids(got))
	}
}

func TestApplyNumericEquality(t *testing.T) {
	in := docs(map[string]any{"n": 2.0}, map[string]any{"n": int64(3)})
	got := Apply(Collection("projects_data").Where("n", 2), in)
	if ids(got) != "a" {
		t.Errorf("Expected a, got %s", ids(got))
	}
}

func TestQueryKey(t *testing.T) {
	q := Collection("projects_data").Where("isFeatured", true).OrderBy("createdAt", Desc).Take(3)
	want := "projects_data|isFeatured==true|order:createdAt:desc|limit:3"
	if q.Key() != want {
		t.Errorf("Expected %q, got %q", want, q.Key())
	}
	if Doc("config", "hero_text").Key() != "config/hero_text" {
		t.Errorf("Unexpected doc key %q", Doc("config", "hero_text").Key())
	}
}

func TestWhereDoesNotAlias(t *testing.T) {
	base := Collection("c").Where("a", 1)
	x := base.Where("b", 2)
	y := base.Where("c", 3)
	if len(x.Filters) != 2 || len(y.Filters) != 2 || x.Filters[1].Field != "b" {
		t.Fatalf("Filters aliased: %+v %+v", x.Filters, y.Filters)
	}
}
