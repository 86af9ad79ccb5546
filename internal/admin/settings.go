package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

// SiteSettings is the settings tab form. Hero texts are multi-line, one entry per line.
type SiteSettings struct {
	HeroTextID string `json:"heroText_id"`
	HeroTextEN string `json:"heroText_en"`
	HeroDescID string `json:"heroDesc_id"`
	HeroDescEN string `json:"heroDesc_en"`
	PhotoURL   string `json:"photoUrl"`
	CVLink     string `json:"cvLink"`
	EduName    string `json:"eduName"`
	EduYear    string `json:"eduYear"`
	BioID      string `json:"bio_id"`
	BioEN      string `json:"bio_en"`
	EduDescID  string `json:"eduDesc_id"`
	EduDescEN  string `json:"eduDesc_en"`
}

// PartialSaveError reports that the hero document was saved but the profile was not.
// Nothing is rolled back.
type PartialSaveError struct {
	Saved  store.DocRef
	Failed store.DocRef
	Err    error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("saved %s but not %s: %v", e.Saved.Key(), e.Failed.Key(), e.Err)
}

func (e *PartialSaveError) Unwrap() error { return e.Err }

// SplitLines keeps the non-blank lines of raw.
func SplitLines(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func (s SiteSettings) hero() map[string]any {
	id := SplitLines(s.HeroTextID)
	en := SplitLines(s.HeroTextEN)
	if len(en) == 0 {
		en = id
	}
	return map[string]any{
		"texts":       map[string]any{"id": toAny(id), "en": toAny(en)},
		"description": i18n.Bilingual(s.HeroDescID, s.HeroDescEN),
	}
}

func (s SiteSettings) profile() map[string]any {
	return map[string]any{
		"photoUrl": s.PhotoURL,
		"cvLink":   s.CVLink,
		"eduName":  s.EduName,
		"eduYear":  s.EduYear,
		"bio":      i18n.Bilingual(s.BioID, s.BioEN),
		"eduDesc":  i18n.Bilingual(s.EduDescID, s.EduDescEN),
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// SaveSiteSettings merges the hero and profile documents, in that order, as two
// independent writes.
func (e *Editor) SaveSiteSettings(ctx context.Context, s SiteSettings) error {
	if err := e.st.Set(ctx, content.HeroDoc, s.hero(), true); err != nil {
		return fmt.Errorf("save hero: %w", err)
	}
	if err := e.st.Set(ctx, content.ProfileDoc, s.profile(), true); err != nil {
		return &PartialSaveError{Saved: content.HeroDoc, Failed: content.ProfileDoc, Err: err}
	}
	return nil
}

// LoadSiteSettings prefills the settings form. Missing documents leave their fields empty.
func (e *Editor) LoadSiteSettings(ctx context.Context) (SiteSettings, error) {
	var s SiteSettings
	hero, err := e.st.Get(ctx, content.HeroDoc)
	switch {
	case err == nil:
		s.fillHero(hero)
	case !errors.Is(err, store.ErrNotFound):
		return s, err
	}
	profile, err := e.st.Get(ctx, content.ProfileDoc)
	switch {
	case err == nil:
		s.fillProfile(profile)
	case !errors.Is(err, store.ErrNotFound):
		return s, err
	}
	return s, nil
}

func (s *SiteSettings) fillHero(d store.Document) {
	h := content.HeroConfigFrom(d)
	s.HeroTextID = strings.Join(h.TextsID, "\n")
	s.HeroTextEN = strings.Join(h.TextsEN, "\n")
	s.HeroDescID, s.HeroDescEN = i18n.Split(d.Value("description"))
}

func (s *SiteSettings) fillProfile(d store.Document) {
	p := content.ProfileConfigFrom(d)
	s.PhotoURL, s.CVLink, s.EduName, s.EduYear = p.PhotoURL, p.CVLink, p.EduName, p.EduYear
	s.BioID, s.BioEN = i18n.Split(d.Value("bio"))
	s.EduDescID, s.EduDescEN = i18n.Split(d.Value("eduDesc"))
}
