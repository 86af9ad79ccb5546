// Package content holds the site's collections and the typed records read from them.
package content

import (
	"time"

	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

const (
	Projects        = "projects_data"
	Certificates    = "certificates_data"
	Skills          = "skills"
	Experiences     = "experiences"
	Testimonials    = "testimonials"
	Articles        = "articles_data"
	GuestbookMsgs   = "guestbook_messages"
	ContactMessages = "contact_messages"
	Config          = "config"
)

var (
	HeroDoc    = store.Doc(Config, "hero_text")
	ProfileDoc = store.Doc(Config, "profile_data")
)

const (
	CategoryAll  = "All"
	CategoryWeb  = "Web Developer"
	CategoryApps = "Apps Developer"
	CategoryData = "Data Analyst"
)

// Categories lists the project filter options in display order.
var Categories = []string{CategoryAll, CategoryWeb, CategoryApps, CategoryData}

// Newest is the default listing: a collection ordered by createdAt, newest first.
func Newest(collection string) store.Query {
	return store.Collection(collection).OrderBy("createdAt", store.Desc)
}

type Project struct {
	ID          string
	Title       string
	Category    string
	ImageURL    string
	Tech        []string
	Link        string
	Description i18n.Text
	IsFeatured  bool
	CreatedAt   time.Time
}

func ProjectFrom(d store.Document) Project {
	return Project{
		ID:          d.ID,
		Title:       d.String("title"),
		Category:    d.String("category"),
		ImageURL:    d.String("imageUrl"),
		Tech:        d.Strings("tech"),
		Link:        d.String("link"),
		Description: i18n.FromValue(d.Value("description")),
		IsFeatured:  d.Bool("isFeatured"),
		CreatedAt:   d.Time("createdAt"),
	}
}

type Certificate struct {
	ID          string
	Title       string
	Issuer      string
	Date        string
	ImageURL    string
	Link        string
	Description i18n.Text
	CreatedAt   time.Time
}

// CertificateFrom reads a certificate; link wins over credentialLink when both are set.
func CertificateFrom(d store.Document) Certificate {
	link := d.String("link")
	if link == "" {
		link = d.String("credentialLink")
	}
	return Certificate{
		ID:          d.ID,
		Title:       d.String("title"),
		Issuer:      d.String("issuer"),
		Date:        d.String("date"),
		ImageURL:    d.String("imageUrl"),
		Link:        link,
		Description: i18n.FromValue(d.Value("description")),
		CreatedAt:   d.Time("createdAt"),
	}
}

type Skill struct {
	ID        string
	Name      string
	Icon      string
	Color     string
	CreatedAt time.Time
}

func SkillFrom(d store.Document) Skill {
	return Skill{
		ID:        d.ID,
		Name:      d.String("name"),
		Icon:      d.String("icon"),
		Color:     d.String("color"),
		CreatedAt: d.Time("createdAt"),
	}
}

type Experience struct {
	ID        string
	Role      string
	Company   string
	Year      string
	Location  string
	Desc      i18n.Text
	CreatedAt time.Time
}

func ExperienceFrom(d store.Document) Experience {
	return Experience{
		ID:        d.ID,
		Role:      d.String("role"),
		Company:   d.String("company"),
		Year:      d.String("year"),
		Location:  d.String("location"),
		Desc:      i18n.FromValue(d.Value("desc")),
		CreatedAt: d.Time("createdAt"),
	}
}

type Testimonial struct {
	ID        string
	Name      string
	Role      string
	Color     string
	Text      i18n.Text
	CreatedAt time.Time
}

func TestimonialFrom(d store.Document) Testimonial {
	return Testimonial{
		ID:        d.ID,
		Name:      d.String("name"),
		Role:      d.String("role"),
		Color:     d.String("color"),
		Text:      i18n.FromValue(d.Value("text")),
		CreatedAt: d.Time("createdAt"),
	}
}

// Article content is operator-authored HTML and is rendered unescaped.
type Article struct {
	ID        string
	Title     string
	Category  string
	ImageURL  string
	Content   i18n.Text
	CreatedAt time.Time
}

func ArticleFrom(d store.Document) Article {
	return Article{
		ID:        d.ID,
		Title:     d.String("title"),
		Category:  d.String("category"),
		ImageURL:  d.String("imageUrl"),
		Content:   i18n.FromValue(d.Value("content")),
		CreatedAt: d.Time("createdAt"),
	}
}

type GuestbookMessage struct {
	ID        string
	Name      string
	Text      string
	UID       string
	Lang      string
	Reply     string
	ReplyDate time.Time
	CreatedAt time.Time
}

func (m GuestbookMessage) Answered() bool { return m.Reply != "" }

func GuestbookMessageFrom(d store.Document) GuestbookMessage {
	return GuestbookMessage{
		ID:        d.ID,
		Name:      d.String("name"),
		Text:      d.String("text"),
		UID:       d.String("uid"),
		Lang:      d.String("lang"),
		Reply:     d.String("reply"),
		ReplyDate: d.Time("replyDate"),
		CreatedAt: d.Time("createdAt"),
	}
}

type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

func ContactMessageFrom(d store.Document) ContactMessage {
	return ContactMessage{
		ID:        d.ID,
		Name:      d.String("name"),
		Email:     d.String("email"),
		Message:   d.String("message"),
		Read:      d.Bool("read"),
		CreatedAt: d.Time("createdAt"),
	}
}

// HeroConfig drives the rotating hero text. Older documents store texts as a single list.
type HeroConfig struct {
	TextsID     []string
	TextsEN     []string
	Description i18n.Text
}

func HeroConfigFrom(d store.Document) HeroConfig {
	h := HeroConfig{Description: i18n.FromValue(d.Value("description"))}
	switch texts := d.Value("texts").(type) {
	case []any:
		h.TextsID = d.Strings("texts")
	case map[string]any:
		sub := store.Document{Data: texts}
		h.TextsID = sub.Strings("id")
		h.TextsEN = sub.Strings("en")
	}
	return h
}

// Texts returns the lines for lang, falling back to the id lines.
func (h HeroConfig) Texts(lang i18n.Lang) []string {
	if lang == i18n.EN && len(h.TextsEN) > 0 {
		return h.TextsEN
	}
	return h.TextsID
}

type ProfileConfig struct {
	PhotoURL string
	CVLink   string
	EduName  string
	EduYear  string
	Bio      i18n.Text
	EduDesc  i18n.Text
}

func ProfileConfigFrom(d store.Document) ProfileConfig {
	return ProfileConfig{
		PhotoURL: d.String("photoUrl"),
		CVLink:   d.String("cvLink"),
		EduName:  d.String("eduName"),
		EduYear:  d.String("eduYear"),
		Bio:      i18n.FromValue(d.Value("bio")),
		EduDesc:  i18n.FromValue(d.Value("eduDesc")),
	}
}

// Decode maps every document of a snapshot through from.
func Decode[T any](snap store.Snapshot, from func(store.Document) T) []T {
	out := make([]T, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		out = append(out, from(d))
	}
	return out
}
