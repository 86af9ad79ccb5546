// Package stats keeps the visitor counter and the online presence list.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"portfolio/internal/store"
)

const (
	// InitialCount seeds a missing counter.
	InitialCount = 100
	// ResetThreshold sends the counter back to ResetCount once reached.
	ResetThreshold = 1000
	ResetCount     = 101
)

type Tracker struct {
	st    store.Store
	appID string
}

// New expects an already sanitized app id.
func New(st store.Store, appID string) *Tracker {
	return &Tracker{st: st, appID: appID}
}

func (t *Tracker) base() string {
	return store.Path("artifacts", t.appID, "public", "data")
}

// VisitorDoc is the counter document.
func (t *Tracker) VisitorDoc() store.DocRef {
	return store.Doc(store.Path(t.base(), "visitors"), "stats")
}

// OnlineCollection holds one document per open session.
func (t *Tracker) OnlineCollection() string {
	return store.Path(t.base(), "online_users")
}

// RecordVisit counts a new session.
func (t *Tracker) RecordVisit(ctx context.Context) error {
	ref := t.VisitorDoc()
	doc, err := t.st.Get(ctx, ref)
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = t.st.Set(ctx, ref, map[string]any{"count": InitialCount}, false)
	case err != nil:
	case doc.Int("count") >= ResetThreshold:
		err = t.st.Set(ctx, ref, map[string]any{"count": ResetCount}, true)
	default:
		err = t.st.Increment(ctx, ref, "count", 1)
	}
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Join registers a presence document for uid and returns it so the caller can Leave.
func (t *Tracker) Join(ctx context.Context, uid, userAgent string) (store.DocRef, error) {
	ref := store.Doc(t.OnlineCollection(), PresenceID(uid))
	err := t.st.Set(ctx, ref, map[string]any{
		"joinedAt":  store.ServerTimestamp,
		"userAgent": userAgent,
		"uid":       uid,
	}, false)
	if err != nil {
		return store.DocRef{}, fmt.Errorf("join presence: %w", err)
	}
	return ref, nil
}

// Leave removes a presence document. It is best effort; a session that never leaves
// stays counted.
func (t *Tracker) Leave(ctx context.Context, id string) error {
	return t.st.Delete(ctx, store.Doc(t.OnlineCollection(), id))
}

// PresenceID is uid plus a random 7 character suffix, one per tab.
func PresenceID(uid string) string {
	return uid + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
}

// Owner returns the uid a presence id was created for.
func Owner(presenceID string) string {
	if i := strings.LastIndex(presenceID, "_"); i >= 0 {
		return presenceID[:i]
	}
	return ""
}
