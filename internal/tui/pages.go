package tui

import (
	"fmt"
	"strings"
	"time"

	"portfolio/internal/admin"
	"portfolio/internal/i18n"
	"portfolio/internal/nav"
	"portfolio/internal/render"
	"portfolio/internal/shell"
	"portfolio/internal/viewmodel"
)

func pick(lang i18n.Lang, id, en string) string {
	if lang == i18n.EN {
		return en
	}
	return id
}

// body renders the mounted page. Pages without a view-model get fixed text.
func body(app shell.Context, v shell.View, cursor int, now time.Time) string {
	lang := app.Lang
	if app.Loading {
		return pick(lang, "Memuat...", "Loading...")
	}
	switch x := v.(type) {
	case *viewmodel.Home:
		return render.Home(x.Current(), lang)
	case *viewmodel.About:
		return render.About(x.Current(), lang)
	case *viewmodel.Projects:
		return render.Projects(x.Current(), lang) + "\n\n" + pick(lang, "[ ]: ganti kategori", "[ ]: change category")
	case *viewmodel.Certificates:
		return render.Certificates(x.Current(), lang)
	case *viewmodel.Blog:
		return blogText(x.Current(), cursor, lang)
	case *viewmodel.Guestbook:
		return pick(lang, "enter: tulis pesan", "enter: write a message") + "\n\n" + render.Guestbook(x.Current(), now, lang)
	case *viewmodel.Contact:
		return contactText(x.Current(), lang)
	case shell.AdminView:
		return adminText(x.Current(), cursor)
	}
	return staticText(app.Page, lang)
}

func blogText(v viewmodel.BlogView, cursor int, lang i18n.Lang) string {
	if v.Loading || v.Selected != nil || len(v.Articles) == 0 {
		out := render.Blog(v, lang)
		if v.Selected != nil {
			out += "\n\n" + pick(lang, "esc: kembali", "esc: back")
		}
		return out
	}
	lines := make([]string, 0, len(v.Articles))
	for i, a := range v.Articles {
		mark := "  "
		if i == cursor {
			mark = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s [%s]", mark, a.Title, a.Category))
	}
	return strings.Join(lines, "\n")
}

func contactText(v viewmodel.ContactView, lang i18n.Lang) string {
	out := pick(lang, "enter: kirim pesan", "enter: send a message")
	switch {
	case v.Status == viewmodel.ContactSending:
		out += "\n\n" + pick(lang, "Mengirim...", "Sending...")
	case v.Status == viewmodel.ContactSuccess:
		out += "\n\n" + pick(lang, "Pesan terkirim!", "Message sent!")
	case v.Error != "":
		out += "\n\n" + v.Error
	}
	return out
}

func adminText(v admin.View, cursor int) string {
	var b strings.Builder
	tabs := make([]string, 0, len(admin.Tabs()))
	for _, t := range admin.Tabs() {
		if t == v.Tab {
			tabs = append(tabs, "["+string(t)+"]")
			continue
		}
		tabs = append(tabs, string(t))
	}
	b.WriteString(strings.Join(tabs, " "))
	if v.Notice != "" {
		b.WriteString("\n\n" + v.Notice)
	}
	if v.Error != "" {
		b.WriteString("\n\n" + v.Error)
	}
	if v.Loading {
		b.WriteString("\n\nMemuat...")
		return b.String()
	}
	if v.Tab == admin.TabSettings {
		if s := v.Settings; s != nil {
			fmt.Fprintf(&b, "\n\nHero (id): %s\nHero (en): %s\nPhoto: %s\nCV: %s\nEdu: %s (%s)",
				strings.ReplaceAll(s.HeroTextID, "\n", " / "),
				strings.ReplaceAll(s.HeroTextEN, "\n", " / "),
				s.PhotoURL, s.CVLink, s.EduName, s.EduYear)
		}
		return b.String()
	}
	if len(v.Items) == 0 {
		b.WriteString("\n\nBelum ada data.")
		return b.String()
	}
	for i, it := range v.Items {
		mark := "  "
		if i == cursor {
			mark = "> "
		}
		label := it.Label
		if it.Answered {
			label += " ✓"
		}
		b.WriteString("\n" + mark + label)
	}
	b.WriteString("\n\nd: hapus")
	if v.Tab == admin.TabGuestbook {
		b.WriteString(" • R: balas")
	}
	return b.String()
}

func staticText(p nav.Page, lang i18n.Lang) string {
	switch p {
	case nav.Services:
		return pick(lang,
			"Layanan\n\n• Pembuatan website dan aplikasi web\n• Aplikasi mobile\n• Analisis dan visualisasi data",
			"Services\n\n• Websites and web applications\n• Mobile apps\n• Data analysis and visualization")
	case nav.Privacy:
		return pick(lang,
			"Kebijakan Privasi\n\nSitus ini menyimpan nama dan pesan yang Anda kirim lewat buku tamu dan formulir kontak, serta jumlah kunjungan tanpa data pribadi.",
			"Privacy Policy\n\nThis site stores the name and message you send through the guestbook and contact form, and counts visits without personal data.")
	case nav.Login:
		return "Admin Login\n\nenter: email & password • g: Google"
	case nav.NotFound:
		return pick(lang, "404\n\nHalaman tidak ditemukan.", "404\n\nPage not found.")
	}
	return ""
}
