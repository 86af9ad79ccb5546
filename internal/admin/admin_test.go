package admin

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"portfolio/internal/content"
	"portfolio/internal/store"
	"portfolio/internal/store/storetest"
)

var fixed = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newEditor(t *testing.T) (*Editor, store.Store) {
	st := storetest.New(t)
	e := NewEditor(st)
	e.now = func() time.Time { return fixed }
	return e, st
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEveryTabDefined(t *testing.T) {
	for _, tab := range Tabs() {
		d, err := Lookup(tab)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", tab, err)
		}
		if tab == TabSettings || tab == TabGuestbook {
			if _, err := NewForm(tab); !errors.Is(err, ErrNotEditable) {
				t.Errorf("NewForm(%s) error = %v, want ErrNotEditable", tab, err)
			}
			continue
		}
		f, err := NewForm(tab)
		if err != nil {
			t.Fatalf("NewForm(%s): %v", tab, err)
		}
		if f.Tab() != tab {
			t.Errorf("form for %s reports tab %s", tab, f.Tab())
		}
		if d.Collection == "" || d.FromDoc == nil {
			t.Errorf("tab %s is missing its collection or decoder", tab)
		}
	}
	if _, err := ParseTab("manga"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("ParseTab(manga) error = %v", err)
	}
}

func TestFormValidation(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{"project without title", &ProjectForm{Category: "Web Developer"}, "title"},
		{"certificate without title", &CertificateForm{Issuer: "AWS"}, "title"},
		{"skill without name", &SkillForm{Color: "#fff"}, "name"},
		{"experience without company", &ExperienceForm{Role: "Engineer"}, "company"},
		{"experience without role", &ExperienceForm{Company: "Acme"}, "role"},
		{"testimonial without name", &TestimonialForm{Role: "CTO"}, "name"},
		{"article with blank title", &ArticleForm{Title: "   "}, "title"},
		{"valid project", &ProjectForm{Title: "Shop"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestProjectFormDocument(t *testing.T) {
	f := &ProjectForm{Title: "Shop", Tech: "React, Go ,Tailwind", DescID: "Toko"}
	doc := f.Document()
	if got := doc["tech"]; !reflect.DeepEqual(got, []string{"React", "Go", "Tailwind"}) {
		t.Errorf("tech = %v", got)
	}
	want := map[string]any{"id": "Toko", "en": "Toko"}
	if !reflect.DeepEqual(doc["description"], want) {
		t.Errorf("description = %v, want %v", doc["description"], want)
	}
	if _, ok := doc["createdAt"]; ok {
		t.Error("Document must not carry createdAt")
	}
}

func TestCreateThenUpdateKeepsCreatedAt(t *testing.T) {
	e, st := newEditor(t)
	ctx := context.Background()

	ref, err := e.Create(ctx, &ProjectForm{Title: "Shop", Category: content.CategoryWeb})
	if err != nil {
		t.Fatal(err)
	}
	e.now = func() time.Time { return fixed.Add(48 * time.Hour) }
	if err := e.Update(ctx, ref.ID, &ProjectForm{Title: "Shop v2", Category: content.CategoryWeb}); err != nil {
		t.Fatal(err)
	}

	d, err := st.Get(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if d.String("title") != "Shop v2" {
		t.Errorf("title = %q", d.String("title"))
	}
	if !d.Time("createdAt").Equal(fixed) {
		t.Errorf("createdAt = %v, want %v", d.Time("createdAt"), fixed)
	}

	items, err := e.List(ctx, TabProjects)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != ref.ID {
		t.Errorf("List = %v", items)
	}
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	e, st := newEditor(t)
	if _, err := e.Create(context.Background(), &SkillForm{}); err == nil {
		t.Fatal("expected a validation error")
	}
	docs, _ := st.List(context.Background(), store.Collection(content.Skills))
	if len(docs) != 0 {
		t.Errorf("invalid form was written: %v", docs)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	e, st := newEditor(t)
	ctx := context.Background()
	ref, err := e.Create(ctx, &SkillForm{Name: "Go"})
	if err != nil {
		t.Fatal(err)
	}

	var asked string
	no := ConfirmFunc(func(p string) bool { asked = p; return false })
	if err := e.Delete(ctx, TabSkills, ref.ID, no); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Delete error = %v, want ErrCancelled", err)
	}
	if asked != DeletePrompt {
		t.Errorf("prompt = %q", asked)
	}
	if _, err := st.Get(ctx, ref); err != nil {
		t.Fatalf("document gone after cancelled delete: %v", err)
	}
	if err := e.Delete(ctx, TabSkills, ref.ID, nil); !errors.Is(err, ErrCancelled) {
		t.Errorf("nil confirmer error = %v", err)
	}

	if err := e.Delete(ctx, TabSkills, ref.ID, Always); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, ref); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after delete error = %v", err)
	}
	if err := e.Delete(ctx, TabSettings, "x", Always); !errors.Is(err, ErrNotEditable) {
		t.Errorf("settings delete error = %v", err)
	}
}

func TestReplyTouchesOnlyReplyFields(t *testing.T) {
	e, st := newEditor(t)
	ctx := context.Background()
	ref, err := content.PostGuestbook(ctx, st, "u1", "Budi", "Halo!", "id")
	if err != nil {
		t.Fatal(err)
	}
	before, _ := st.Get(ctx, ref)

	if err := e.Reply(ctx, ref.ID, "  "); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("blank reply error = %v", err)
	}
	if err := e.Reply(ctx, ref.ID, "Terima kasih"); err != nil {
		t.Fatal(err)
	}

	after, err := st.Get(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if after.String("reply") != "Terima kasih" || !after.Time("replyDate").Equal(fixed) {
		t.Errorf("reply fields = %q %v", after.String("reply"), after.Time("replyDate"))
	}
	for k, v := range before.Data {
		if !reflect.DeepEqual(after.Data[k], v) {
			t.Errorf("field %s changed from %v to %v", k, v, after.Data[k])
		}
	}
	if len(after.Data) != len(before.Data)+2 {
		t.Errorf("fields = %v", after.Data)
	}
	if !content.GuestbookMessageFrom(after).Answered() {
		t.Error("message should be answered")
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("Web Developer\r\n\n  \nData Analyst\n")
	want := []string{"Web Developer", "Data Analyst"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %q, want %q", got, want)
	}
	if got := SplitLines(""); len(got) != 0 {
		t.Errorf("SplitLines(empty) = %q", got)
	}
}

func TestSiteSettingsRoundTrip(t *testing.T) {
	e, st := newEditor(t)
	ctx := context.Background()

	empty, err := e.LoadSiteSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty != (SiteSettings{}) {
		t.Errorf("settings before save = %+v", empty)
	}

	s := SiteSettings{
		HeroTextID: "Pengembang Web\nAnalis Data",
		HeroTextEN: "Web Developer\nData Analyst",
		HeroDescID: "Halo",
		HeroDescEN: "Hello",
		PhotoURL:   "https://example.com/me.jpg",
		CVLink:     "https://example.com/cv.pdf",
		EduName:    "Universitas",
		EduYear:    "2021 - 2025",
		BioID:      "Bio",
		BioEN:      "About me",
		EduDescID:  "Informatika",
		EduDescEN:  "Informatics",
	}
	for i := 0; i < 2; i++ {
		if err := e.SaveSiteSettings(ctx, s); err != nil {
			t.Fatal(err)
		}
		got, err := e.LoadSiteSettings(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("save %d: loaded %+v, want %+v", i+1, got, s)
		}
	}

	hero, _ := st.Get(ctx, content.HeroDoc)
	h := content.HeroConfigFrom(hero)
	if !reflect.DeepEqual(h.TextsEN, []string{"Web Developer", "Data Analyst"}) {
		t.Errorf("hero en texts = %v", h.TextsEN)
	}
}

func TestSiteSettingsEnglishFallsBack(t *testing.T) {
	e, st := newEditor(t)
	ctx := context.Background()
	if err := e.SaveSiteSettings(ctx, SiteSettings{HeroTextID: "Satu\nDua", HeroDescID: "Halo"}); err != nil {
		t.Fatal(err)
	}
	hero, _ := st.Get(ctx, content.HeroDoc)
	h := content.HeroConfigFrom(hero)
	if !reflect.DeepEqual(h.TextsEN, []string{"Satu", "Dua"}) {
		t.Errorf("en texts = %v, want the id lines", h.TextsEN)
	}
	if got := h.Description.ENs; got != "Halo" {
		t.Errorf("en description = %q", got)
	}
}

type failingProfile struct {
	store.Store
}

func (f failingProfile) Set(ctx context.Context, ref store.DocRef, data map[string]any, merge bool) error {
	if ref == content.ProfileDoc {
		return store.ErrPermissionDenied
	}
	return f.Store.Set(ctx, ref, data, merge)
}

func TestSiteSettingsPartialFailure(t *testing.T) {
	st := storetest.New(t)
	e := NewEditor(failingProfile{st})
	ctx := context.Background()

	err := e.SaveSiteSettings(ctx, SiteSettings{HeroTextID: "Halo", PhotoURL: "x"})
	var pe *PartialSaveError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PartialSaveError", err)
	}
	if pe.Saved != content.HeroDoc || pe.Failed != content.ProfileDoc {
		t.Errorf("partial = %+v", pe)
	}
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Error("partial error should unwrap to the cause")
	}
	if _, err := st.Get(ctx, content.HeroDoc); err != nil {
		t.Errorf("hero should stay saved: %v", err)
	}
	if _, err := st.Get(ctx, content.ProfileDoc); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("profile should not exist: %v", err)
	}
}

func TestControllerSubmitAndEdit(t *testing.T) {
	st := storetest.New(t)
	c := NewController(context.Background(), st)
	defer c.Close()
	ctx := context.Background()

	eventually(t, "projects list", func() bool { return !c.Loading() })
	if err := c.Submit(ctx, &ProjectForm{Title: "Shop"}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "created item", func() bool { return len(c.Items()) == 1 })
	v := c.Current()
	if v.Notice != NoticeCreated || v.Error != "" {
		t.Errorf("after create: notice %q error %q", v.Notice, v.Error)
	}
	if d, ok := v.Draft.(*ProjectForm); !ok || d.Title != "" {
		t.Errorf("draft not cleared: %+v", v.Draft)
	}

	id := c.Items()[0].ID
	if c.Items()[0].Label != "Shop" {
		t.Errorf("label = %q", c.Items()[0].Label)
	}
	if err := c.Edit("missing"); !errors.Is(err, ErrNotListed) {
		t.Errorf("Edit(missing) = %v", err)
	}
	if err := c.Edit(id); err != nil {
		t.Fatal(err)
	}
	v = c.Current()
	if v.EditingID != id || v.Draft.(*ProjectForm).Title != "Shop" {
		t.Fatalf("edit prefill = %q %+v", v.EditingID, v.Draft)
	}

	bad := &ProjectForm{}
	if err := c.Submit(ctx, bad); err == nil {
		t.Fatal("expected validation error")
	}
	v = c.Current()
	if v.Draft != Form(bad) || v.EditingID != id || v.Error != "title is required" {
		t.Errorf("failed submit view = %+v", v)
	}

	if err := c.Submit(ctx, &ProjectForm{Title: "Shop v2"}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "updated label", func() bool {
		items := c.Items()
		return len(items) == 1 && items[0].Label == "Shop v2"
	})
	if v := c.Current(); v.Notice != NoticeUpdated || v.EditingID != "" {
		t.Errorf("after update: %+v", v)
	}
}

func TestControllerSetTab(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	if _, err := content.PostGuestbook(ctx, st, "u1", "Budi", "Halo", "id"); err != nil {
		t.Fatal(err)
	}
	c := NewController(ctx, st)
	defer c.Close()
	eventually(t, "projects list", func() bool { return !c.Loading() })

	if err := c.SetTab("manga"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("SetTab(manga) = %v", err)
	}
	if err := c.SetTab(TabGuestbook); err != nil {
		t.Fatal(err)
	}
	eventually(t, "guestbook list", func() bool { return !c.Loading() && len(c.Items()) == 1 })
	eventually(t, "previous subscription released", func() bool { return st.Listeners() == 1 })

	id := c.Items()[0].ID
	if c.Items()[0].Answered {
		t.Error("new message should not be answered")
	}
	if err := c.Reply(ctx, id, "Makasih"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "answered", func() bool { return c.Items()[0].Answered })

	if err := c.SetTab(TabSettings); err != nil {
		t.Fatal(err)
	}
	eventually(t, "settings prefill", func() bool { return !c.Loading() && c.Current().Settings != nil })
	eventually(t, "guestbook subscription released", func() bool { return st.Listeners() == 0 })
	if len(c.Items()) != 0 {
		t.Errorf("settings tab items = %v", c.Items())
	}
}
