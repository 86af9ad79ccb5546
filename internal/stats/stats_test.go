package stats

import (
	"context"
	"strings"
	"testing"

	"portfolio/internal/store"
	"portfolio/internal/store/storetest"
)

func TestRecordVisit(t *testing.T) {
	cases := []struct {
		name    string
		initial *int
		want    int64
	}{
		{"missing document starts at 100", nil, 100},
		{"below threshold increments", intp(41), 42},
		{"at threshold resets to 101", intp(1000), 101},
		{"above threshold resets to 101", intp(1500), 101},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := storetest.New(t)
			tr := New(st, "app")
			ctx := context.Background()
			if tc.initial != nil {
				if err := st.Set(ctx, tr.VisitorDoc(), map[string]any{"count": *tc.initial, "since": "2024"}, false); err != nil {
					t.Fatal(err)
				}
			}

			if err := tr.RecordVisit(ctx); err != nil {
				t.Fatalf("RecordVisit failed: %v", err)
			}
			doc, err := st.Get(ctx, tr.VisitorDoc())
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if doc.Int("count") != tc.want {
				t.Errorf("Expected count %d, got %d", tc.want, doc.Int("count"))
			}
			if tc.initial != nil && doc.String("since") != "2024" {
				t.Error("Other counter fields must survive")
			}
		})
	}
}

func TestJoinAndLeave(t *testing.T) {
	st := storetest.New(t)
	tr := New(st, "app")
	ctx := context.Background()

	ref, err := tr.Join(ctx, "uid123", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if !strings.HasPrefix(ref.ID, "uid123_") || len(ref.ID) != len("uid123_")+7 {
		t.Errorf("Unexpected presence id %q", ref.ID)
	}
	if Owner(ref.ID) != "uid123" {
		t.Errorf("Expected owner uid123, got %q", Owner(ref.ID))
	}
	if ref.Collection != "artifacts/app/public/data/online_users" {
		t.Errorf("Unexpected collection %q", ref.Collection)
	}

	doc, err := st.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Time("joinedAt").IsZero() || doc.String("userAgent") != "Mozilla/5.0" {
		t.Errorf("Unexpected presence doc %#v", doc.Data)
	}

	if err := tr.Leave(ctx, ref.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	online, _ := st.List(ctx, store.Collection(tr.OnlineCollection()))
	if len(online) != 0 {
		t.Errorf("Expected nobody online, got %d", len(online))
	}
}

func intp(n int) *int { return &n }
