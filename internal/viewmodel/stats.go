package viewmodel

import (
	"context"

	"portfolio/internal/i18n"
	"portfolio/internal/stats"
	"portfolio/internal/store"
)

type APIStatus string

const (
	StatusChecking APIStatus = "Checking"
	StatusOnline   APIStatus = "Online"
	StatusDown     APIStatus = "Down"
)

type StatsView struct {
	Loading  bool      `json:"loading"`
	Visitors int64     `json:"visitors"`
	Online   int       `json:"online"`
	API      APIStatus `json:"api"`
}

// Stats follows the visitor counter and the online list. The counter subscription
// doubles as the API health indicator.
type Stats struct {
	base[StatsView]
	visitors int64
	online   int
	api      APIStatus
}

func NewStats(ctx context.Context, l store.Listener, tr *stats.Tracker) *Stats {
	s := &Stats{online: 1, api: StatusChecking}
	s.init(ctx, l, i18n.ID, s.view)
	s.setup(func() {
		s.pending["visitors"] = struct{}{}
		s.scope.Subscribe(l, tr.VisitorDoc(), func(snap store.Snapshot) {
			if d, ok := snap.First(); ok {
				s.visitors = d.Int("count")
			}
			s.api = StatusOnline
			s.settle("visitors")
		}, func(error) {
			s.api = StatusDown
			s.settle("visitors")
		})
		s.watch("online", store.Collection(tr.OnlineCollection()), func(snap store.Snapshot) {
			s.online = snap.Size()
		})
	})
	return s
}

func (s *Stats) view() StatsView {
	return StatsView{Loading: s.loading(), Visitors: s.visitors, Online: s.online, API: s.api}
}
