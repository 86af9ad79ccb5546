package admin

import (
	"strings"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

// Form is one editable record type. Document never carries createdAt.
type Form interface {
	Tab() Tab
	Validate() error
	Document() map[string]any
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func required(field, value, msg string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: msg}
	}
	return nil
}

type ProjectForm struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	ImageURL   string `json:"imageUrl"`
	Tech       string `json:"tech"` // comma separated
	Link       string `json:"link"`
	DescID     string `json:"desc_id"`
	DescEN     string `json:"desc_en"`
	IsFeatured bool   `json:"isFeatured"`
}

func (*ProjectForm) Tab() Tab { return TabProjects }

func (f *ProjectForm) Validate() error { return required("title", f.Title, "title is required") }

func (f *ProjectForm) Document() map[string]any {
	return map[string]any{
		"title":       f.Title,
		"category":    f.Category,
		"imageUrl":    f.ImageURL,
		"tech":        splitTech(f.Tech),
		"link":        f.Link,
		"description": i18n.Bilingual(f.DescID, f.DescEN),
		"isFeatured":  f.IsFeatured,
	}
}

func splitTech(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func projectForm(d store.Document) Form {
	p := content.ProjectFrom(d)
	id, en := i18n.Split(d.Value("description"))
	return &ProjectForm{
		Title:      p.Title,
		Category:   p.Category,
		ImageURL:   p.ImageURL,
		Tech:       strings.Join(p.Tech, ", "),
		Link:       p.Link,
		DescID:     id,
		DescEN:     en,
		IsFeatured: p.IsFeatured,
	}
}

type CertificateForm struct {
	Title    string `json:"title"`
	Issuer   string `json:"issuer"`
	Date     string `json:"date"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
	DescID   string `json:"desc_id"`
	DescEN   string `json:"desc_en"`
}

func (*CertificateForm) Tab() Tab { return TabCertificates }

func (f *CertificateForm) Validate() error { return required("title", f.Title, "title is required") }

// Document writes the link under both names so older readers keep working.
func (f *CertificateForm) Document() map[string]any {
	return map[string]any{
		"title":          f.Title,
		"issuer":         f.Issuer,
		"date":           f.Date,
		"imageUrl":       f.ImageURL,
		"link":           f.Link,
		"credentialLink": f.Link,
		"description":    i18n.Bilingual(f.DescID, f.DescEN),
	}
}

func certificateForm(d store.Document) Form {
	c := content.CertificateFrom(d)
	id, en := i18n.Split(d.Value("description"))
	return &CertificateForm{
		Title:    c.Title,
		Issuer:   c.Issuer,
		Date:     c.Date,
		ImageURL: c.ImageURL,
		Link:     c.Link,
		DescID:   id,
		DescEN:   en,
	}
}

type SkillForm struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (*SkillForm) Tab() Tab { return TabSkills }

func (f *SkillForm) Validate() error { return required("name", f.Name, "skill name is required") }

func (f *SkillForm) Document() map[string]any {
	return map[string]any{"name": f.Name, "icon": f.Icon, "color": f.Color}
}

func skillForm(d store.Document) Form {
	s := content.SkillFrom(d)
	return &SkillForm{Name: s.Name, Icon: s.Icon, Color: s.Color}
}

type ExperienceForm struct {
	Role     string `json:"role"`
	Company  string `json:"company"`
	Year     string `json:"year"`
	Location string `json:"location"`
	DescID   string `json:"desc_id"`
	DescEN   string `json:"desc_en"`
}

func (*ExperienceForm) Tab() Tab { return TabExperience }

func (f *ExperienceForm) Validate() error {
	if err := required("role", f.Role, "role and company are required"); err != nil {
		return err
	}
	return required("company", f.Company, "role and company are required")
}

func (f *ExperienceForm) Document() map[string]any {
	return map[string]any{
		"role":     f.Role,
		"company":  f.Company,
		"year":     f.Year,
		"location": f.Location,
		"desc":     i18n.Bilingual(f.DescID, f.DescEN),
	}
}

func experienceForm(d store.Document) Form {
	e := content.ExperienceFrom(d)
	id, en := i18n.Split(d.Value("desc"))
	return &ExperienceForm{Role: e.Role, Company: e.Company, Year: e.Year, Location: e.Location, DescID: id, DescEN: en}
}

type TestimonialForm struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Color  string `json:"color"`
	TextID string `json:"text_id"`
	TextEN string `json:"text_en"`
}

func (*TestimonialForm) Tab() Tab { return TabTestimonials }

func (f *TestimonialForm) Validate() error { return required("name", f.Name, "name is required") }

func (f *TestimonialForm) Document() map[string]any {
	return map[string]any{
		"name":  f.Name,
		"role":  f.Role,
		"color": f.Color,
		"text":  i18n.Bilingual(f.TextID, f.TextEN),
	}
}

func testimonialForm(d store.Document) Form {
	t := content.TestimonialFrom(d)
	id, en := i18n.Split(d.Value("text"))
	return &TestimonialForm{Name: t.Name, Role: t.Role, Color: t.Color, TextID: id, TextEN: en}
}

type ArticleForm struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	ImageURL  string `json:"imageUrl"`
	ContentID string `json:"content_id"`
	ContentEN string `json:"content_en"`
}

func (*ArticleForm) Tab() Tab { return TabBlog }

func (f *ArticleForm) Validate() error { return required("title", f.Title, "article title is required") }

func (f *ArticleForm) Document() map[string]any {
	return map[string]any{
		"title":    f.Title,
		"imageUrl": f.ImageURL,
		"category": f.Category,
		"content":  i18n.Bilingual(f.ContentID, f.ContentEN),
	}
}

func articleForm(d store.Document) Form {
	a := content.ArticleFrom(d)
	id, en := i18n.Split(d.Value("content"))
	return &ArticleForm{Title: a.Title, Category: a.Category, ImageURL: a.ImageURL, ContentID: id, ContentEN: en}
}
