package render

import (
	"strings"
	"testing"
	"time"

	"portfolio/internal/i18n"
	"portfolio/internal/viewmodel"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.Local)
	tests := []struct {
		ago  time.Duration
		lang i18n.Lang
		want string
	}{
		{10 * time.Second, i18n.ID, "Baru saja"},
		{59 * time.Second, i18n.EN, "Just now"},
		{5 * time.Minute, i18n.ID, "5m"},
		{3*time.Hour + 10*time.Minute, i18n.EN, "3h"},
		{48 * time.Hour, i18n.ID, "8/5/2025"},
		{48 * time.Hour, i18n.EN, "5/8/2025"},
	}
	for _, tt := range tests {
		if got := RelativeTime(now.Add(-tt.ago), now, tt.lang); got != tt.want {
			t.Errorf("RelativeTime(-%v, %s) = %q, want %q", tt.ago, tt.lang, got, tt.want)
		}
	}
	if got := RelativeTime(time.Time{}, now, i18n.ID); got != "" {
		t.Errorf("zero time = %q", got)
	}
}

func TestGuestbookReplyBlock(t *testing.T) {
	now := time.Now()
	e := viewmodel.GuestbookEntry{Name: "Budi", Text: "Keren!", CreatedAt: now.Add(-2 * time.Hour)}
	out := GuestbookEntry(e, now, i18n.ID)
	if strings.Contains(out, "Admin:") {
		t.Errorf("unanswered entry shows a reply block:\n%s", out)
	}

	e.Reply = "Makasih Budi"
	e.ReplyDate = now.Add(-30 * time.Second)
	out = GuestbookEntry(e, now, i18n.ID)
	for _, want := range []string{"Budi · 2h", "Keren!", "Admin: Makasih Budi · Baru saja"} {
		if !strings.Contains(out, want) {
			t.Errorf("entry missing %q:\n%s", want, out)
		}
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<h2>Judul</h2><p>Satu <b>dua</b></p><p></p><p>tiga</p>")
	want := "Judul\n\nSatu dua\n\ntiga"
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestLoadingAndEmpty(t *testing.T) {
	if got := Certificates(viewmodel.CertificatesView{Loading: true}, i18n.EN); got != "Loading..." {
		t.Errorf("loading = %q", got)
	}
	if got := Blog(viewmodel.BlogView{}, i18n.ID); got != "Belum ada data." {
		t.Errorf("empty = %q", got)
	}
	v := viewmodel.ProjectsView{Category: "Web Developer", Categories: []string{"All", "Web Developer"}}
	if got := Projects(v, i18n.ID); !strings.HasPrefix(got, "All  [Web Developer]") {
		t.Errorf("projects header = %q", got)
	}
}
