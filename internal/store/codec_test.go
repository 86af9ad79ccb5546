package store

import (
	"testing"
	"time"
)

func TestCodecRoundTrip(t *testing.T) {
	when := time.Date(2025, 3, 1, 10, 30, 0, 123, time.UTC)
	in := map[string]any{
		"title":     "Portfolio",
		"count":     42,
		"ratio":     0.5,
		"tech":      []string{"Go", "React"},
		"createdAt": when,
		"joinedAt":  ServerTimestamp,
		"nested":    map[string]any{"id": "Halo", "en": "Hello"},
	}

	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out["count"] != int64(42) {
		t.Errorf("Expected count int64(42), got %#v", out["count"])
	}
	if out["ratio"] != 0.5 {
		t.Errorf("Expected ratio 0.5, got %#v", out["ratio"])
	}
	if got, ok := out["createdAt"].(time.Time); !ok || !got.Equal(when) {
		t.Errorf("Expected createdAt %v, got %#v", when, out["createdAt"])
	}
	if out["joinedAt"] != ServerTimestamp {
		t.Errorf("Expected server timestamp sentinel, got %#v", out["joinedAt"])
	}
	tech, ok := out["tech"].([]any)
	if !ok || len(tech) != 2 || tech[1] != "React" {
		t.Errorf("Unexpected tech %#v", out["tech"])
	}
	nested, ok := out["nested"].(map[string]any)
	if !ok || nested["en"] != "Hello" {
		t.Errorf("Unexpected nested %#v", out["nested"])
	}
}

func TestEncodeRejectsUnknownTypes(t *testing.T) {
	if _, err := EncodeData(map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatal("Expected error for channel value")
	}
}

func TestMergeDataIsDeep(t *testing.T) {
	dst := map[string]any{
		"name": map[string]any{"id": "Nama", "en": "Name"},
		"tags": []any{"a", "b"},
		"keep": true,
	}
	src := map[string]any{
		"name": map[string]any{"en": "Full name"},
		"tags": []any{"c"},
	}

	out := mergeData(dst, src)

	name := out["name"].(map[string]any)
	if name["id"] != "Nama" || name["en"] != "Full name" {
		t.Errorf("Expected nested merge, got %#v", name)
	}
	if tags := out["tags"].([]any); len(tags) != 1 || tags[0] != "c" {
		t.Errorf("Expected list replaced, got %#v", tags)
	}
	if out["keep"] != true {
		t.Error("Expected untouched field to survive")
	}
	if dst["name"].(map[string]any)["en"] != "Name" {
		t.Error("mergeData must not mutate dst")
	}
}

func TestResolveTimestamps(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := resolveTimestamps(map[string]any{
		"joinedAt": ServerTimestamp,
		"meta":     map[string]any{"at": ServerTimestamp},
		"uid":      "abc",
	}, now)

	if out["joinedAt"] != now {
		t.Errorf("Expected joinedAt resolved, got %#v", out["joinedAt"])
	}
	if out["meta"].(map[string]any)["at"] != now {
		t.Errorf("Expected nested resolved, got %#v", out["meta"])
	}
	if out["uid"] != "abc" {
		t.Errorf("Expected uid unchanged, got %#v", out["uid"])
	}
}
