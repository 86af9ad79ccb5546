package content

import (
	"context"
	"errors"
	"strings"

	"portfolio/internal/store"
)

var ErrEmptyMessage = errors.New("name and message are required")

// PostGuestbook adds a public guestbook entry signed by uid.
func PostGuestbook(ctx context.Context, w store.Writer, uid, name, text, lang string) (store.DocRef, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(text) == "" {
		return store.DocRef{}, ErrEmptyMessage
	}
	return w.Add(ctx, GuestbookMsgs, map[string]any{
		"text":      text,
		"name":      name,
		"createdAt": store.ServerTimestamp,
		"uid":       uid,
		"lang":      lang,
	})
}

// PostContact stores a message for the owner; it starts unread.
func PostContact(ctx context.Context, w store.Writer, name, email, message string) (store.DocRef, error) {
	if name == "" || email == "" || message == "" {
		return store.DocRef{}, ErrEmptyMessage
	}
	return w.Add(ctx, ContactMessages, map[string]any{
		"name":      name,
		"email":     email,
		"message":   message,
		"createdAt": store.ServerTimestamp,
		"read":      false,
	})
}
