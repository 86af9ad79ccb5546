package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/content"
	"portfolio/internal/store"
)

var (
	ErrUnknownTab  = errors.New("unknown tab")
	ErrNotEditable = errors.New("tab has no form")
	ErrCancelled   = errors.New("cancelled")
	ErrEmptyReply  = errors.New("reply is empty")
	ErrNotListed   = errors.New("item not in the current list")
)

// DeletePrompt is what the confirmer is asked before a delete.
const DeletePrompt = "Hapus data ini?"

type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always confirms; for callers that already asked, such as an HTTP request with confirm=true.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// Editor performs the writes of the dashboard.
type Editor struct {
	st  store.Store
	now func() time.Time
}

func NewEditor(st store.Store) *Editor {
	return &Editor{st: st, now: time.Now}
}

func collectionOf(f Form) (string, error) {
	d, err := Lookup(f.Tab())
	if err != nil {
		return "", err
	}
	return d.Collection, nil
}

// Create validates f and adds it with createdAt set to now.
func (e *Editor) Create(ctx context.Context, f Form) (store.DocRef, error) {
	if err := f.Validate(); err != nil {
		return store.DocRef{}, err
	}
	coll, err := collectionOf(f)
	if err != nil {
		return store.DocRef{}, err
	}
	doc := f.Document()
	doc["createdAt"] = e.now()
	return e.st.Add(ctx, coll, doc)
}

// Update validates f and replaces its fields on id. createdAt is left alone.
func (e *Editor) Update(ctx context.Context, id string, f Form) error {
	if err := f.Validate(); err != nil {
		return err
	}
	coll, err := collectionOf(f)
	if err != nil {
		return err
	}
	doc := f.Document()
	delete(doc, "createdAt")
	return e.st.Update(ctx, store.Doc(coll, id), doc)
}

// Delete removes id from tab's collection once c confirms.
func (e *Editor) Delete(ctx context.Context, tab Tab, id string, c Confirmer) error {
	d, err := Lookup(tab)
	if err != nil {
		return err
	}
	if d.Collection == "" {
		return fmt.Errorf("%w: %s", ErrNotEditable, tab)
	}
	if c == nil || !c.Confirm(DeletePrompt) {
		return ErrCancelled
	}
	return e.st.Delete(ctx, store.Doc(d.Collection, id))
}

// Reply answers a guestbook message. Only reply and replyDate are written.
func (e *Editor) Reply(ctx context.Context, id, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyReply
	}
	return e.st.Update(ctx, store.Doc(content.GuestbookMsgs, id), map[string]any{
		"reply":     text,
		"replyDate": e.now(),
	})
}

// List returns tab's items, newest first.
func (e *Editor) List(ctx context.Context, tab Tab) ([]store.Document, error) {
	d, err := Lookup(tab)
	if err != nil {
		return nil, err
	}
	if d.Collection == "" {
		return nil, nil
	}
	return e.st.List(ctx, content.Newest(d.Collection))
}
