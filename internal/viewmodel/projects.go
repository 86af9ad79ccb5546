package viewmodel

import (
	"context"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

type ProjectsView struct {
	Loading    bool          `json:"loading"`
	Category   string        `json:"category"`
	Categories []string      `json:"categories"`
	Projects   []ProjectCard `json:"projects"`
}

// Projects lists projects of one category, filtered in the store.
type Projects struct {
	base[ProjectsView]

	category string
	projects []content.Project
	unsub    func()
}

// CategoryQuery returns the listing for category; All means no filter.
func CategoryQuery(category string) store.Query {
	q := content.Newest(content.Projects)
	if category != "" && category != content.CategoryAll {
		q = q.Where("category", category)
	}
	return q
}

func NewProjects(ctx context.Context, l store.Listener, lang i18n.Lang, category string) *Projects {
	p := &Projects{category: normalizeCategory(category)}
	p.init(ctx, l, lang, p.view)
	p.setup(p.subscribe)
	return p
}

func normalizeCategory(c string) string {
	for _, known := range content.Categories {
		if c == known {
			return c
		}
	}
	return content.CategoryAll
}

func (p *Projects) subscribe() {
	if p.unsub != nil {
		p.unsub()
	}
	p.projects = nil
	p.unsub = p.watch("projects", CategoryQuery(p.category), func(s store.Snapshot) {
		p.projects = content.Decode(s, content.ProjectFrom)
	})
}

// SetCategory switches the filter and shows a fresh loading state.
func (p *Projects) SetCategory(category string) {
	category = normalizeCategory(category)
	p.scope.Call(func() {
		if category == p.category {
			return
		}
		p.category = category
		p.subscribe()
		p.publish()
	})
}

func (p *Projects) view() ProjectsView {
	return ProjectsView{
		Loading:    p.loading(),
		Category:   p.category,
		Categories: append([]string(nil), content.Categories...),
		Projects:   projectCards(p.projects, p.lang),
	}
}
