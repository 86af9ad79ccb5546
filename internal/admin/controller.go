package admin

import (
	"context"
	"errors"
	"slices"
	"sync"

	"portfolio/internal/content"
	"portfolio/internal/live"
	"portfolio/internal/store"
)

// Notices shown after a dashboard action.
const (
	NoticeCreated  = "Berhasil tambah!"
	NoticeUpdated  = "Berhasil update!"
	NoticeDeleted  = "Dihapus!"
	NoticeReplied  = "Balasan terkirim!"
	NoticeSettings = "Settings disimpan!"
	ReplyFailed    = "Gagal membalas."
	DeleteFailed   = "Gagal."
)

// Item is one row of the current tab's list.
type Item struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Answered bool           `json:"answered,omitempty"`
	Data     map[string]any `json:"data"`
}

type View struct {
	Tab       Tab           `json:"tab"`
	Loading   bool          `json:"loading"`
	Items     []Item        `json:"items"`
	EditingID string        `json:"editingId,omitempty"`
	Draft     Form          `json:"draft,omitempty"`
	Settings  *SiteSettings `json:"settings,omitempty"`
	Notice    string        `json:"notice,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Controller drives the dashboard: one tab at a time, its live list, and the draft
// being edited. State lives on the scope's loop.
type Controller struct {
	scope  *live.Scope
	st     store.Store
	editor *Editor

	tab       Tab
	def       Definition
	docs      []store.Document
	loading   bool
	unsub     func()
	editingID string
	draft     Form
	settings  *SiteSettings
	notice    string
	err       string

	mu      sync.Mutex
	current View
	subs    []func(View)
}

func NewController(ctx context.Context, st store.Store) *Controller {
	c := &Controller{scope: live.NewScope(ctx), st: st, editor: NewEditor(st)}
	_ = c.SetTab(TabProjects)
	return c
}

// Editor exposes the stateless operations behind the controller.
func (c *Controller) Editor() *Editor { return c.editor }

// SetTab switches tabs. The previous subscription is released before the new one starts,
// and the list starts over in the loading state.
func (c *Controller) SetTab(tab Tab) error {
	def, err := Lookup(tab)
	if err != nil {
		return err
	}
	c.scope.Call(func() {
		if c.unsub != nil {
			c.unsub()
			c.unsub = nil
		}
		c.tab, c.def = tab, def
		c.docs, c.settings = nil, nil
		c.resetDraft()
		c.notice, c.err = "", ""
		switch {
		case def.Collection != "":
			c.loading = true
			c.unsub = c.scope.Subscribe(c.st, content.Newest(def.Collection),
				func(s store.Snapshot) { c.docs, c.loading = s.Docs, false; c.publish() },
				func(error) { c.docs, c.loading = nil, false; c.publish() },
			)
		case tab == TabSettings:
			c.loading = true
			live.Go(c.scope, c.editor.LoadSiteSettings, func(s SiteSettings, err error) {
				if c.tab != TabSettings || c.settings != nil {
					return
				}
				c.loading = false
				if err != nil {
					c.err = err.Error()
				}
				c.settings = &s
				c.publish()
			})
		default:
			c.loading = false
		}
		c.publish()
	})
	return nil
}

func (c *Controller) resetDraft() {
	c.editingID = ""
	c.draft = nil
	if c.def.Blank != nil {
		c.draft = c.def.Blank()
	}
}

// Items returns the current list.
func (c *Controller) Items() []Item { return c.Current().Items }

func (c *Controller) Loading() bool { return c.Current().Loading }

// Edit prefills the draft from the listed item id.
func (c *Controller) Edit(id string) error {
	var err error
	c.scope.Call(func() {
		if c.def.FromDoc == nil {
			err = ErrNotEditable
			return
		}
		for _, d := range c.docs {
			if d.ID == id {
				c.editingID, c.draft = id, c.def.FromDoc(d)
				c.publish()
				return
			}
		}
		err = ErrNotListed
	})
	return err
}

// CancelEdit drops the draft and returns to creating.
func (c *Controller) CancelEdit() {
	c.scope.Call(func() {
		c.resetDraft()
		c.publish()
	})
}

// Submit saves form as a new item, or as an update of the item being edited. On success
// the draft is cleared and a notice set; on failure the draft is kept and the error shown.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	var editing string
	if !c.scope.Call(func() { editing = c.editingID; c.draft = form }) {
		return context.Canceled
	}
	var err error
	if editing != "" {
		err = c.editor.Update(ctx, editing, form)
	} else {
		_, err = c.editor.Create(ctx, form)
	}
	c.scope.Call(func() {
		if err != nil {
			c.notice, c.err = "", err.Error()
		} else {
			c.resetDraft()
			c.err = ""
			c.notice = NoticeCreated
			if editing != "" {
				c.notice = NoticeUpdated
			}
		}
		c.publish()
	})
	return err
}

// Delete removes id from the current tab after confirm agrees.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) error {
	tab := c.Current().Tab
	err := c.editor.Delete(ctx, tab, id, confirm)
	if errors.Is(err, ErrCancelled) {
		return err
	}
	c.scope.Call(func() {
		if err != nil {
			c.notice, c.err = "", DeleteFailed
		} else {
			c.notice, c.err = NoticeDeleted, ""
			if c.editingID == id {
				c.resetDraft()
			}
		}
		c.publish()
	})
	return err
}

func (c *Controller) Reply(ctx context.Context, id, text string) error {
	err := c.editor.Reply(ctx, id, text)
	if errors.Is(err, ErrEmptyReply) {
		return err
	}
	c.scope.Call(func() {
		if err != nil {
			c.notice, c.err = "", ReplyFailed
		} else {
			c.notice, c.err = NoticeReplied, ""
		}
		c.publish()
	})
	return err
}

func (c *Controller) SaveSettings(ctx context.Context, s SiteSettings) error {
	err := c.editor.SaveSiteSettings(ctx, s)
	c.scope.Call(func() {
		c.settings = &s
		if err != nil {
			c.notice, c.err = "", err.Error()
		} else {
			c.notice, c.err = NoticeSettings, ""
		}
		c.publish()
	})
	return err
}

func (c *Controller) publish() {
	v := View{
		Tab:       c.tab,
		Loading:   c.loading,
		Items:     Items(c.tab, c.docs),
		EditingID: c.editingID,
		Draft:     c.draft,
		Notice:    c.notice,
		Error:     c.err,
	}
	if c.settings != nil {
		s := *c.settings
		v.Settings = &s
	}
	c.mu.Lock()
	c.current = v
	subs := slices.Clone(c.subs)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// OnChange registers fn for every published view. fn runs on the event loop.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Controller) Close() { c.scope.Close() }

// Items labels tab's documents for a list.
func Items(tab Tab, docs []store.Document) []Item {
	def, _ := Lookup(tab)
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		it := Item{ID: d.ID, Label: d.String(def.Label), Data: d.Data}
		if tab == TabGuestbook {
			it.Answered = content.GuestbookMessageFrom(d).Answered()
		}
		items = append(items, it)
	}
	return items
}
