package viewmodel

import (
	"context"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

type AboutView struct {
	Loading      bool              `json:"loading"`
	Profile      Profile           `json:"profile"`
	Experiences  []ExperienceItem  `json:"experiences"`
	Testimonials []TestimonialItem `json:"testimonials"`
}

type About struct {
	base[AboutView]

	profile      content.ProfileConfig
	experiences  []content.Experience
	testimonials []content.Testimonial
}

func NewAbout(ctx context.Context, l store.Listener, lang i18n.Lang) *About {
	a := &About{}
	a.init(ctx, l, lang, a.view)
	a.setup(func() {
		a.watch("profile", content.ProfileDoc, func(s store.Snapshot) {
			if d, ok := s.First(); ok {
				a.profile = content.ProfileConfigFrom(d)
			}
		})
		a.watch("experiences", content.Newest(content.Experiences), func(s store.Snapshot) {
			a.experiences = content.Decode(s, content.ExperienceFrom)
		})
		a.watch("testimonials", content.Newest(content.Testimonials), func(s store.Snapshot) {
			a.testimonials = content.Decode(s, content.TestimonialFrom)
		})
	})
	return a
}

func (a *About) view() AboutView {
	v := AboutView{
		Loading: a.loading(),
		Profile: Profile{
			PhotoURL: a.profile.PhotoURL,
			CVLink:   a.profile.CVLink,
			EduName:  a.profile.EduName,
			EduYear:  a.profile.EduYear,
			Bio:      a.profile.Bio.Resolve(a.lang),
			EduDesc:  a.profile.EduDesc.Resolve(a.lang),
		},
		Experiences:  make([]ExperienceItem, 0, len(a.experiences)),
		Testimonials: make([]TestimonialItem, 0, len(a.testimonials)),
	}
	for _, e := range a.experiences {
		v.Experiences = append(v.Experiences, ExperienceItem{
			Role:     e.Role,
			Company:  e.Company,
			Year:     e.Year,
			Location: e.Location,
			Desc:     e.Desc.Resolve(a.lang),
		})
	}
	for _, t := range a.testimonials {
		v.Testimonials = append(v.Testimonials, TestimonialItem{
			Name:  t.Name,
			Role:  t.Role,
			Color: t.Color,
			Text:  t.Text.Resolve(a.lang),
		})
	}
	return v
}
