// Package render turns page views into plain text for the terminal client and the
// text/plain view endpoints.
package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"portfolio/internal/i18n"
	"portfolio/internal/viewmodel"
)

// Failure panel shown when a page fails to render.
const (
	FailureTitle  = "Oops! Terjadi Gangguan Teknis."
	FailureBody   = "Komponen ini gagal dimuat karena masalah internal (kemungkinan koneksi, data hilang, atau error rendering)."
	FailureAction = "Coba Muat Ulang Halaman"
)

// RelativeTime formats t against now the way the guestbook does: "Baru saja" under a
// minute, then minutes, hours, and finally the date.
func RelativeTime(t, now time.Time, lang i18n.Lang) string {
	if t.IsZero() {
		return ""
	}
	diff := int(now.Sub(t) / time.Second)
	switch {
	case diff < 60:
		if lang == i18n.EN {
			return "Just now"
		}
		return "Baru saja"
	case diff < 3600:
		return fmt.Sprintf("%dm", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh", diff/3600)
	}
	if lang == i18n.EN {
		return t.Local().Format("1/2/2006")
	}
	return t.Local().Format("2/1/2006")
}

// PlainText strips markup from trusted article HTML, keeping block breaks.
func PlainText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(collapseBlank(b.String()))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "br", "div", "li", "h1", "h2", "h3", "h4", "tr":
				b.WriteByte('\n')
			}
		}
	}
}

func collapseBlank(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func loading(lang i18n.Lang) string {
	if lang == i18n.EN {
		return "Loading..."
	}
	return "Memuat..."
}

func empty(lang i18n.Lang) string {
	if lang == i18n.EN {
		return "Nothing here yet."
	}
	return "Belum ada data."
}

// GuestbookEntry renders one message, with the admin reply below it when answered.
func GuestbookEntry(e viewmodel.GuestbookEntry, now time.Time, lang i18n.Lang) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s · %s\n%s", e.Name, RelativeTime(e.CreatedAt, now, lang), e.Text)
	if e.Answered() {
		fmt.Fprintf(&b, "\n  ↳ Admin: %s · %s", e.Reply, RelativeTime(e.ReplyDate, now, lang))
	}
	return b.String()
}

func Guestbook(v viewmodel.GuestbookView, now time.Time, lang i18n.Lang) string {
	if v.Loading {
		return loading(lang)
	}
	if len(v.Messages) == 0 {
		return empty(lang)
	}
	parts := make([]string, 0, len(v.Messages))
	for _, m := range v.Messages {
		parts = append(parts, GuestbookEntry(m, now, lang))
	}
	out := strings.Join(parts, "\n\n")
	if v.Error != "" {
		out = v.Error + "\n\n" + out
	}
	return out
}

func Home(v viewmodel.HomeView, lang i18n.Lang) string {
	if v.Loading {
		return loading(lang)
	}
	var b strings.Builder
	b.WriteString(strings.Join(v.HeroTexts, " / "))
	if v.HeroDescription != "" {
		b.WriteString("\n" + v.HeroDescription)
	}
	fmt.Fprintf(&b, "\n\nWeb %d · Apps %d · Data %d · %d projects · %d certificates",
		v.Counts.Web, v.Counts.Apps, v.Counts.Data, v.Counts.TotalProjects, v.Counts.Certificates)
	if len(v.Featured) > 0 {
		b.WriteString("\n\nFeatured:")
		for _, p := range v.Featured {
			b.WriteString("\n" + projectLine(p))
		}
	}
	if len(v.Skills) > 0 {
		names := make([]string, 0, len(v.Skills))
		for _, s := range v.Skills {
			names = append(names, s.Name)
		}
		b.WriteString("\n\n" + strings.Join(names, " · "))
	}
	return b.String()
}

func projectLine(p viewmodel.ProjectCard) string {
	tech := make([]string, 0, len(p.Tech))
	for _, t := range p.Tech {
		tech = append(tech, t.Name)
	}
	line := fmt.Sprintf("• %s [%s]", p.Title, p.Category)
	if len(tech) > 0 {
		line += " " + strings.Join(tech, ", ")
	}
	if p.Description != "" {
		line += "\n  " + p.Description
	}
	return line
}

func Projects(v viewmodel.ProjectsView, lang i18n.Lang) string {
	head := make([]string, 0, len(v.Categories))
	for _, c := range v.Categories {
		if c == v.Category {
			c = "[" + c + "]"
		}
		head = append(head, c)
	}
	out := strings.Join(head, "  ")
	if v.Loading {
		return out + "\n\n" + loading(lang)
	}
	if len(v.Projects) == 0 {
		return out + "\n\n" + empty(lang)
	}
	for _, p := range v.Projects {
		out += "\n\n" + projectLine(p)
	}
	return out
}

func About(v viewmodel.AboutView, lang i18n.Lang) string {
	if v.Loading {
		return loading(lang)
	}
	var b strings.Builder
	b.WriteString(v.Profile.Bio)
	if v.Profile.EduName != "" {
		fmt.Fprintf(&b, "\n\n%s (%s)\n%s", v.Profile.EduName, v.Profile.EduYear, v.Profile.EduDesc)
	}
	for _, e := range v.Experiences {
		fmt.Fprintf(&b, "\n\n%s @ %s · %s\n%s", e.Role, e.Company, e.Year, e.Desc)
	}
	for _, t := range v.Testimonials {
		fmt.Fprintf(&b, "\n\n\"%s\"\n  %s, %s", t.Text, t.Name, t.Role)
	}
	return strings.TrimSpace(b.String())
}

func Certificates(v viewmodel.CertificatesView, lang i18n.Lang) string {
	if v.Loading {
		return loading(lang)
	}
	if len(v.Certificates) == 0 {
		return empty(lang)
	}
	lines := make([]string, 0, len(v.Certificates))
	for _, c := range v.Certificates {
		lines = append(lines, fmt.Sprintf("• %s, %s (%s)", c.Title, c.Issuer, c.Date))
	}
	return strings.Join(lines, "\n")
}

func Blog(v viewmodel.BlogView, lang i18n.Lang) string {
	if v.Loading {
		return loading(lang)
	}
	if v.Selected != nil {
		return v.Selected.Title + "\n\n" + PlainText(v.Selected.Content)
	}
	if len(v.Articles) == 0 {
		return empty(lang)
	}
	lines := make([]string, 0, len(v.Articles))
	for i, a := range v.Articles {
		lines = append(lines, fmt.Sprintf("%d. %s [%s]", i+1, a.Title, a.Category))
	}
	return strings.Join(lines, "\n")
}

func Stats(v viewmodel.StatsView, lang i18n.Lang) string {
	label := "Pengunjung"
	if lang == i18n.EN {
		label = "Visitors"
	}
	return fmt.Sprintf("%s %d · Online %d · API %s", label, v.Visitors, v.Online, v.API)
}

// Failure is the error panel text.
func Failure() string {
	return FailureTitle + "\n" + FailureBody + "\n[" + FailureAction + "]"
}
