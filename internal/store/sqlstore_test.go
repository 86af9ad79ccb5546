package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"portfolio/internal/store"
	"portfolio/internal/store/storetest"
	"portfolio/pkg/models"
)

func TestSQLStoreCRUD(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()

	ref, err := st.Add(ctx, "skills", map[string]any{"name": "Go", "createdAt": store.ServerTimestamp})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(ref.ID) != 20 {
		t.Errorf("Expected 20 character id, got %q", ref.ID)
	}

	doc, err := st.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.String("name") != "Go" {
		t.Errorf("Expected name Go, got %q", doc.String("name"))
	}
	if doc.Time("createdAt").IsZero() {
		t.Error("Expected createdAt to be resolved to commit time")
	}

	if err := st.Update(ctx, ref, map[string]any{"name": "Golang"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	doc, _ = st.Get(ctx, ref)
	if doc.String("name") != "Golang" || doc.Time("createdAt").IsZero() {
		t.Errorf("Update must replace only given fields, got %#v", doc.Data)
	}

	if err := st.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := st.Get(ctx, ref); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Delete(ctx, ref); err != nil {
		t.Errorf("Deleting a missing document should succeed, got %v", err)
	}
}

func TestSQLStoreUpdateMissing(t *testing.T) {
	st := storetest.New(t)
	err := st.Update(context.Background(), store.Doc("skills", "nope"), map[string]any{"name": "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLStoreSetMerge(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	ref := store.Doc("config", "profile_data")

	if err := st.Set(ctx, ref, map[string]any{
		"name": "Refaldo",
		"bio":  map[string]any{"id": "Halo", "en": "Hello"},
	}, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := st.Set(ctx, ref, map[string]any{"bio": map[string]any{"en": "Hi"}}, true); err != nil {
		t.Fatalf("Set merge failed: %v", err)
	}

	doc, err := st.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	bio := doc.Value("bio").(map[string]any)
	if doc.String("name") != "Refaldo" || bio["id"] != "Halo" || bio["en"] != "Hi" {
		t.Errorf("Unexpected merged doc %#v", doc.Data)
	}

	if err := st.Set(ctx, ref, map[string]any{"name": "Only"}, false); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	doc, _ = st.Get(ctx, ref)
	if len(doc.Data) != 1 || doc.String("name") != "Only" {
		t.Errorf("Expected overwrite, got %#v", doc.Data)
	}
}

func TestSQLStoreIncrement(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	ref := store.Doc("artifacts/app/public/data/visitors", "stats")

	for i := 0; i < 3; i++ {
		if err := st.Increment(ctx, ref, "count", 1); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}
	doc, err := st.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Int("count") != 3 {
		t.Errorf("Expected count 3, got %d", doc.Int("count"))
	}
}

func TestSQLStoreListOrdering(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		_, err := st.Add(ctx, "projects_data", map[string]any{
			"title":      title,
			"isFeatured": i != 1,
			"createdAt":  t0.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if _, err := st.Add(ctx, "projects_data", map[string]any{"title": "undated", "isFeatured": true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := st.List(ctx, store.Collection("projects_data").Where("isFeatured", true).OrderBy("createdAt", store.Desc).Take(3))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].String("title") != "third" || got[1].String("title") != "first" {
		t.Errorf("Unexpected result %+v", got)
	}
}

func TestSQLStoreListen(t *testing.T) {
	st := storetest.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	it, err := st.Listen(ctx, store.Collection("guestbook_messages"))
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	snap, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("First Next failed: %v", err)
	}
	if snap.Size() != 0 {
		t.Errorf("Expected empty first snapshot, got %d", snap.Size())
	}

	if _, err := st.Add(ctx, "guestbook_messages", map[string]any{"name": "Ana", "message": "Hi"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	snap, err = it.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if snap.Size() != 1 {
		t.Errorf("Expected one document, got %d", snap.Size())
	}

	if st.Listeners() != 1 {
		t.Errorf("Expected 1 listener, got %d", st.Listeners())
	}
	it.Stop()
	it.Stop()
	if st.Listeners() != 0 {
		t.Errorf("Expected listeners released, got %d", st.Listeners())
	}
	if _, err := it.Next(ctx); !errors.Is(err, store.ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}
}

func TestSQLStoreListenDocument(t *testing.T) {
	st := storetest.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ref := store.Doc("config", "hero_text")

	it, err := st.Listen(ctx, ref)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer it.Stop()

	snap, err := it.Next(ctx)
	if err != nil || snap.Size() != 0 {
		t.Fatalf("Expected empty snapshot for missing doc, got %d, %v", snap.Size(), err)
	}

	if err := st.Set(ctx, ref, map[string]any{"id": []any{"Halo"}}, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	snap, err = it.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	doc, ok := snap.First()
	if !ok || doc.ID != "hero_text" {
		t.Errorf("Expected hero_text document, got %+v", snap)
	}
}

func TestSQLStoreListenCancelled(t *testing.T) {
	st := storetest.New(t)
	ctx, cancel := context.WithCancel(context.Background())

	it, err := st.Listen(ctx, store.Collection("skills"))
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer it.Stop()
	if _, err := it.Next(ctx); err != nil {
		t.Fatalf("First Next failed: %v", err)
	}

	cancel()
	if _, err := it.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSQLStoreSeed(t *testing.T) {
	st := storetest.New(t)
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{
		"skills": [{"id": "go", "name": "Go", "createdAt": {"$time": "2025-01-01T00:00:00Z"}}],
		"config": [{"id": "hero_text", "id_lines": ["Halo"]}]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := st.Seed(path)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 inserted, got %d", n)
	}
	if n, _ := st.Seed(path); n != 0 {
		t.Errorf("Expected reseed to insert nothing, got %d", n)
	}

	doc, err := st.Get(context.Background(), store.Doc("skills", "go"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Time("createdAt").Year() != 2025 {
		t.Errorf("Expected decoded createdAt, got %#v", doc.Value("createdAt"))
	}
}

func TestObserveReportsWrites(t *testing.T) {
	var events []models.ChangeEvent
	st := store.Observe(storetest.New(t), func(ev models.ChangeEvent) { events = append(events, ev) })
	ctx := context.Background()

	ref, err := st.Add(ctx, "contact_messages", map[string]any{"name": "Ana"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_ = st.Update(ctx, store.Doc("contact_messages", "missing"), map[string]any{"read": true})
	if err := st.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Op != "add" || events[0].DocID != ref.ID || events[1].Op != "delete" {
		t.Errorf("Unexpected events %+v", events)
	}
}
