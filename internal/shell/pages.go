package shell

import (
	"context"

	"portfolio/internal/admin"
	"portfolio/internal/i18n"
	"portfolio/internal/nav"
	"portfolio/internal/store"
	"portfolio/internal/viewmodel"
)

// AdminView adapts the admin controller to a page. The dashboard is not translated.
type AdminView struct {
	*admin.Controller
}

func (AdminView) SetLang(i18n.Lang) {}

// Pages binds every data-backed page to its view-model over st. uid reports the current
// identity for guestbook posts. Static pages (services, privacy, login, not found) mount
// nothing.
func Pages(st store.Store, uid func() string) map[nav.Page]Mount {
	return map[nav.Page]Mount{
		nav.Home: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewHome(ctx, st, app.Lang), nil
		},
		nav.About: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewAbout(ctx, st, app.Lang), nil
		},
		nav.Projects: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewProjects(ctx, st, app.Lang, ""), nil
		},
		nav.Certificates: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewCertificates(ctx, st, app.Lang), nil
		},
		nav.Blog: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewBlog(ctx, st, app.Lang), nil
		},
		nav.Guestbook: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewGuestbook(ctx, st, app.Lang, uid), nil
		},
		nav.Contact: func(ctx context.Context, app Context) (View, error) {
			return viewmodel.NewContact(ctx, st, app.Lang), nil
		},
		nav.Admin: func(ctx context.Context, _ Context) (View, error) {
			return AdminView{admin.NewController(ctx, st)}, nil
		},
	}
}
