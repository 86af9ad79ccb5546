// Package admin is the content editor behind the dashboard. Each tab edits one
// collection through a typed form; the settings tab edits the two config documents.
package admin

import (
	"fmt"

	"portfolio/internal/content"
	"portfolio/internal/store"
)

type Tab string

const (
	TabProjects     Tab = "projects"
	TabCertificates Tab = "certificates"
	TabSkills       Tab = "skills"
	TabExperience   Tab = "experience"
	TabTestimonials Tab = "testimonials"
	TabBlog         Tab = "blog"
	TabGuestbook    Tab = "guestbook"
	TabSettings     Tab = "settings"
)

// Tabs lists every tab in dashboard order.
func Tabs() []Tab {
	return []Tab{TabProjects, TabCertificates, TabSkills, TabExperience, TabTestimonials, TabBlog, TabGuestbook, TabSettings}
}

// Definition binds a tab to its collection and form. Guestbook has no form: it is
// answered, not authored. Settings has neither.
type Definition struct {
	Collection string
	Blank      func() Form
	FromDoc    func(store.Document) Form
	// Label is the field shown in lists.
	Label string
}

var definitions = map[Tab]Definition{
	TabProjects: {
		Collection: content.Projects,
		Blank:      func() Form { return &ProjectForm{} },
		FromDoc:    projectForm,
		Label:      "title",
	},
	TabCertificates: {
		Collection: content.Certificates,
		Blank:      func() Form { return &CertificateForm{} },
		FromDoc:    certificateForm,
		Label:      "title",
	},
	TabSkills: {
		Collection: content.Skills,
		Blank:      func() Form { return &SkillForm{} },
		FromDoc:    skillForm,
		Label:      "name",
	},
	TabExperience: {
		Collection: content.Experiences,
		Blank:      func() Form { return &ExperienceForm{} },
		FromDoc:    experienceForm,
		Label:      "role",
	},
	TabTestimonials: {
		Collection: content.Testimonials,
		Blank:      func() Form { return &TestimonialForm{} },
		FromDoc:    testimonialForm,
		Label:      "name",
	},
	TabBlog: {
		Collection: content.Articles,
		Blank:      func() Form { return &ArticleForm{} },
		FromDoc:    articleForm,
		Label:      "title",
	},
	TabGuestbook: {
		Collection: content.GuestbookMsgs,
		Label:      "name",
	},
	TabSettings: {},
}

func Lookup(tab Tab) (Definition, error) {
	d, ok := definitions[tab]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	return d, nil
}

// ParseTab accepts a tab name as used in URLs.
func ParseTab(s string) (Tab, error) {
	t := Tab(s)
	if _, err := Lookup(t); err != nil {
		return "", err
	}
	return t, nil
}

// NewForm returns an empty form for tab, for decoding request bodies.
func NewForm(tab Tab) (Form, error) {
	d, err := Lookup(tab)
	if err != nil {
		return nil, err
	}
	if d.Blank == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, tab)
	}
	return d.Blank(), nil
}
