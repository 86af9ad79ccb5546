package rules

import (
	"errors"
	"testing"

	"portfolio/internal/auth"
	"portfolio/internal/content"
	"portfolio/internal/store"
)

func TestRules(t *testing.T) {
	r := New("admin@x.io")
	admin := &auth.Claims{UID: "a", Email: "admin@x.io"}
	visitor := &auth.Claims{UID: "v", Anonymous: true}
	stats := "artifacts/app/public/data/visitors"
	online := "artifacts/app/public/data/online_users"

	cases := []struct {
		name   string
		claims *auth.Claims
		op     Op
		coll   string
		want   bool
	}{
		{"anyone reads projects", nil, OpRead, content.Projects, true},
		{"anyone reads config", nil, OpRead, content.Config, true},
		{"visitor cannot read contact messages", visitor, OpRead, content.ContactMessages, false},
		{"admin reads contact messages", admin, OpRead, content.ContactMessages, true},
		{"visitor posts contact", visitor, OpAdd, content.ContactMessages, true},
		{"no session cannot post contact", nil, OpAdd, content.ContactMessages, false},
		{"visitor posts guestbook", visitor, OpAdd, content.GuestbookMsgs, true},
		{"visitor cannot reply", visitor, OpUpdate, content.GuestbookMsgs, false},
		{"visitor cannot delete guestbook", visitor, OpDelete, content.GuestbookMsgs, false},
		{"admin replies", admin, OpUpdate, content.GuestbookMsgs, true},
		{"visitor cannot add projects", visitor, OpAdd, content.Projects, false},
		{"visitor cannot edit config", visitor, OpSet, content.Config, false},
		{"visitor counts visits", visitor, OpIncrement, stats, true},
		{"visitor joins presence", visitor, OpSet, online, true},
		{"visitor leaves presence", visitor, OpDelete, online, true},
		{"no session cannot count", nil, OpIncrement, stats, false},
		{"anyone reads stats", nil, OpRead, stats, true},
		{"unknown collection", visitor, OpRead, "secrets", false},
		{"non admin email", &auth.Claims{UID: "x", Email: "other@x.io"}, OpAdd, content.Projects, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Check(tc.claims, tc.op, tc.coll)
			if tc.want && err != nil {
				t.Errorf("denied: %v", err)
			}
			if !tc.want && !errors.Is(err, store.ErrPermissionDenied) {
				t.Errorf("error = %v, want permission denied", err)
			}
		})
	}
}
