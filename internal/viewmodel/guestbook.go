package viewmodel

import (
	"context"
	"strings"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/live"
	"portfolio/internal/store"
)

const guestbookLimit = 30

// Messages shown when a public form fails to send.
const (
	GuestbookSendFailed = "Gagal mengirim pesan. Pastikan koneksi aman."
	ContactSendFailed   = "Gagal mengirim pesan. Cek koneksi internet Anda."
)

type GuestbookView struct {
	Loading  bool             `json:"loading"`
	Messages []GuestbookEntry `json:"messages"`
	Sending  bool             `json:"sending"`
	Error    string           `json:"error,omitempty"`
}

// Guestbook shows the latest messages and posts new ones as the current identity.
type Guestbook struct {
	base[GuestbookView]

	w        store.Writer
	uid      func() string
	messages []content.GuestbookMessage
	sending  bool
	err      string
}

func GuestbookQuery() store.Query {
	return content.Newest(content.GuestbookMsgs).Take(guestbookLimit)
}

func NewGuestbook(ctx context.Context, st store.Store, lang i18n.Lang, uid func() string) *Guestbook {
	g := &Guestbook{w: st, uid: uid}
	g.init(ctx, st, lang, g.view)
	g.setup(func() {
		g.watch("messages", GuestbookQuery(), func(s store.Snapshot) {
			g.messages = content.Decode(s, content.GuestbookMessageFrom)
		})
	})
	return g
}

// Send posts a message. Blank input is ignored. done, if set, runs on the event loop
// with the outcome unless the guestbook was closed first.
func (g *Guestbook) Send(name, text string, done func(error)) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(text) == "" {
		if done != nil {
			done(content.ErrEmptyMessage)
		}
		return
	}
	g.scope.Call(func() {
		if g.sending {
			return
		}
		g.sending, g.err = true, ""
		g.publish()
		uid, lang := g.uid(), g.lang.String()
		live.Go(g.scope, func(ctx context.Context) (store.DocRef, error) {
			return content.PostGuestbook(ctx, g.w, uid, name, text, lang)
		}, func(_ store.DocRef, err error) {
			g.sending = false
			if err != nil {
				g.err = GuestbookSendFailed
			}
			g.publish()
			if done != nil {
				done(err)
			}
		})
	})
}

func (g *Guestbook) view() GuestbookView {
	v := GuestbookView{
		Loading:  g.loading(),
		Messages: make([]GuestbookEntry, 0, len(g.messages)),
		Sending:  g.sending,
		Error:    g.err,
	}
	for _, m := range g.messages {
		v.Messages = append(v.Messages, GuestbookEntry{
			ID:        m.ID,
			Name:      m.Name,
			Text:      m.Text,
			Lang:      m.Lang,
			Reply:     m.Reply,
			ReplyDate: m.ReplyDate,
			CreatedAt: m.CreatedAt,
		})
	}
	return v
}

type ContactStatus string

const (
	ContactIdle    ContactStatus = "idle"
	ContactSending ContactStatus = "sending"
	ContactSuccess ContactStatus = "success"
)

type ContactView struct {
	Loading bool          `json:"loading"`
	Status  ContactStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// Contact has no subscriptions; it only sends the form.
type Contact struct {
	base[ContactView]
	w      store.Writer
	status ContactStatus
	err    string
}

func NewContact(ctx context.Context, st store.Store, lang i18n.Lang) *Contact {
	c := &Contact{w: st, status: ContactIdle}
	c.init(ctx, st, lang, c.view)
	c.setup(func() {})
	return c
}

func (c *Contact) Send(name, email, message string, done func(error)) {
	c.scope.Call(func() {
		if c.status == ContactSending {
			return
		}
		c.status, c.err = ContactSending, ""
		c.publish()
		live.Go(c.scope, func(ctx context.Context) (store.DocRef, error) {
			return content.PostContact(ctx, c.w, name, email, message)
		}, func(_ store.DocRef, err error) {
			if err != nil {
				c.status, c.err = ContactIdle, ContactSendFailed
			} else {
				c.status = ContactSuccess
			}
			c.publish()
			if done != nil {
				done(err)
			}
		})
	})
}

func (c *Contact) view() ContactView {
	return ContactView{Loading: c.loading(), Status: c.status, Error: c.err}
}
