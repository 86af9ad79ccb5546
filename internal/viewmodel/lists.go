package viewmodel

import (
	"context"

	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/store"
)

type CertificatesView struct {
	Loading      bool              `json:"loading"`
	Certificates []CertificateCard `json:"certificates"`
}

type Certificates struct {
	base[CertificatesView]
	certs []content.Certificate
}

func NewCertificates(ctx context.Context, l store.Listener, lang i18n.Lang) *Certificates {
	c := &Certificates{}
	c.init(ctx, l, lang, c.view)
	c.setup(func() {
		c.watch("certificates", content.Newest(content.Certificates), func(s store.Snapshot) {
			c.certs = content.Decode(s, content.CertificateFrom)
		})
	})
	return c
}

func (c *Certificates) view() CertificatesView {
	v := CertificatesView{Loading: c.loading(), Certificates: make([]CertificateCard, 0, len(c.certs))}
	for _, cert := range c.certs {
		v.Certificates = append(v.Certificates, CertificateCard{
			ID:          cert.ID,
			Title:       cert.Title,
			Issuer:      cert.Issuer,
			Date:        cert.Date,
			ImageURL:    cert.ImageURL,
			Link:        cert.Link,
			Description: cert.Description.Resolve(c.lang),
		})
	}
	return v
}

type BlogView struct {
	Loading  bool          `json:"loading"`
	Articles []ArticleCard `json:"articles"`
	Selected *ArticleCard  `json:"selected,omitempty"`
}

// Blog lists articles and tracks the one being read.
type Blog struct {
	base[BlogView]
	articles []content.Article
	selected string
}

func NewBlog(ctx context.Context, l store.Listener, lang i18n.Lang) *Blog {
	b := &Blog{}
	b.init(ctx, l, lang, b.view)
	b.setup(func() {
		b.watch("articles", content.Newest(content.Articles), func(s store.Snapshot) {
			b.articles = content.Decode(s, content.ArticleFrom)
		})
	})
	return b
}

// Select opens an article by id; an empty id goes back to the list.
func (b *Blog) Select(id string) {
	b.scope.Call(func() {
		b.selected = id
		b.publish()
	})
}

func (b *Blog) view() BlogView {
	v := BlogView{Loading: b.loading(), Articles: make([]ArticleCard, 0, len(b.articles))}
	for _, a := range b.articles {
		card := ArticleCard{
			ID:        a.ID,
			Title:     a.Title,
			Category:  a.Category,
			ImageURL:  a.ImageURL,
			Content:   a.Content.Resolve(b.lang),
			CreatedAt: a.CreatedAt,
		}
		v.Articles = append(v.Articles, card)
		if a.ID == b.selected {
			selected := card
			v.Selected = &selected
		}
	}
	return v
}
