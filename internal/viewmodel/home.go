package viewmodel

import (
	"context"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

const featuredLimit = 3

type Counts struct {
	Web           int `json:"web"`
	Apps          int `json:"apps"`
	Data          int `json:"data"`
	TotalProjects int `json:"totalProjects"`
	Certificates  int `json:"certificates"`
}

type HomeView struct {
	Loading         bool          `json:"loading"`
	HeroTexts       []string      `json:"heroTexts"`
	HeroDescription string        `json:"heroDescription"`
	Featured        []ProjectCard `json:"featured"`
	Counts          Counts        `json:"counts"`
	Skills          []SkillChip   `json:"skills"`
}

// Home combines the hero config, featured projects, project and certificate counts and
// the skills marquee.
type Home struct {
	base[HomeView]

	hero     content.HeroConfig
	featured []content.Project
	counts   Counts
	skills   []content.Skill
	unHero   func()
}

// FeaturedQuery is filtered in the store, so it needs the isFeatured/createdAt index.
func FeaturedQuery() store.Query {
	return content.Newest(content.Projects).Where("isFeatured", true).Take(featuredLimit)
}

func NewHome(ctx context.Context, l store.Listener, lang i18n.Lang) *Home {
	h := &Home{}
	h.init(ctx, l, lang, h.view)
	h.relang = h.watchHero
	h.setup(func() {
		h.watchHero()
		h.watch("featured", FeaturedQuery(), func(s store.Snapshot) {
			h.featured = content.Decode(s, content.ProjectFrom)
		})
		h.watch("projects", store.Collection(content.Projects), func(s store.Snapshot) {
			c := Counts{Certificates: h.counts.Certificates, TotalProjects: s.Size()}
			for _, p := range content.Decode(s, content.ProjectFrom) {
				switch p.Category {
				case content.CategoryWeb:
					c.Web++
				case content.CategoryApps:
					c.Apps++
				case content.CategoryData:
					c.Data++
				}
			}
			h.counts = c
		})
		h.watch("certificates", store.Collection(content.Certificates), func(s store.Snapshot) {
			h.counts.Certificates = s.Size()
		})
		h.watch("skills", content.Newest(content.Skills), func(s store.Snapshot) {
			h.skills = content.Decode(s, content.SkillFrom)
		})
	})
	return h
}

// watchHero (re)subscribes the hero document. A resubscribe keeps the loading state, and
// a hero that has not delivered yet stays pending on the new subscription.
func (h *Home) watchHero() {
	_, pending := h.pending["hero"]
	if h.unHero != nil {
		h.unHero()
	}
	if h.unHero == nil || pending {
		h.unHero = h.watch("hero", content.HeroDoc, h.applyHero)
		return
	}
	h.unHero = h.scope.Subscribe(h.l, content.HeroDoc, func(s store.Snapshot) {
		h.applyHero(s)
		h.publish()
	}, nil)
}

func (h *Home) applyHero(s store.Snapshot) {
	if d, ok := s.First(); ok {
		h.hero = content.HeroConfigFrom(d)
	}
}

func (h *Home) view() HomeView {
	skills := make([]SkillChip, 0, len(h.skills))
	for _, s := range h.skills {
		skills = append(skills, SkillChip{Name: s.Name, Icon: s.Icon, Color: s.Color})
	}
	return HomeView{
		Loading:         h.loading(),
		HeroTexts:       append([]string(nil), h.hero.Texts(h.lang)...),
		HeroDescription: h.hero.Description.Resolve(h.lang),
		Featured:        projectCards(h.featured, h.lang),
		Counts:          h.counts,
		Skills:          skills,
	}
}
