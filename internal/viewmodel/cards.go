package viewmodel

import (
	"time"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
)

type ProjectCard struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	ImageURL    string         `json:"imageUrl"`
	Tech        []content.Icon `json:"tech"`
	Link        string         `json:"link"`
	Description string         `json:"description"`
	IsFeatured  bool           `json:"isFeatured"`
}

func projectCard(p content.Project, lang i18n.Lang) ProjectCard {
	icons := make([]content.Icon, 0, len(p.Tech))
	for _, t := range p.Tech {
		icons = append(icons, content.TechIcon(t))
	}
	return ProjectCard{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Tech:        icons,
		Link:        p.Link,
		Description: p.Description.Resolve(lang),
		IsFeatured:  p.IsFeatured,
	}
}

func projectCards(ps []content.Project, lang i18n.Lang) []ProjectCard {
	out := make([]ProjectCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, projectCard(p, lang))
	}
	return out
}

type CertificateCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

type SkillChip struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type ExperienceItem struct {
	Role     string `json:"role"`
	Company  string `json:"company"`
	Year     string `json:"year"`
	Location string `json:"location"`
	Desc     string `json:"desc"`
}

type TestimonialItem struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Color string `json:"color"`
	Text  string `json:"text"`
}

type Profile struct {
	PhotoURL string `json:"photoUrl"`
	CVLink   string `json:"cvLink"`
	EduName  string `json:"eduName"`
	EduYear  string `json:"eduYear"`
	Bio      string `json:"bio"`
	EduDesc  string `json:"eduDesc"`
}

// ArticleCard content is trusted HTML.
type ArticleCard struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"imageUrl"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type GuestbookEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Lang      string    `json:"lang"`
	Reply     string    `json:"reply,omitempty"`
	ReplyDate time.Time `json:"replyDate"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e GuestbookEntry) Answered() bool { return e.Reply != "" }
