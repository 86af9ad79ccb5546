// Package viewmodel composes live subscriptions into the values each page renders.
//
// Every aggregator owns a live.Scope. All of its state is touched only on the scope's
// event loop; views handed to OnChange and returned by Current are immutable copies.
// Loading stays true until every part has delivered its first snapshot or error.
package viewmodel

import (
	"context"
	"slices"
	"sync"

	"portfolio/internal/i18n"
	"portfolio/internal/live"
	"portfolio/internal/store"
)

type base[V any] struct {
	scope   *live.Scope
	l       store.Listener
	lang    i18n.Lang
	pending map[string]struct{}
	render  func() V
	relang  func()

	mu      sync.Mutex
	current V
	subs    []func(V)
}

func (b *base[V]) init(ctx context.Context, l store.Listener, lang i18n.Lang, render func() V) {
	b.scope = live.NewScope(ctx)
	b.l = l
	b.lang = lang
	b.pending = make(map[string]struct{})
	b.render = render
}

// setup runs fn on the loop and publishes the first view.
func (b *base[V]) setup(fn func()) {
	b.scope.Call(func() {
		fn()
		b.publish()
	})
}

// watch subscribes one part. A failed part settles with an empty snapshot.
func (b *base[V]) watch(part string, target store.Target, apply func(store.Snapshot)) (unsubscribe func()) {
	b.pending[part] = struct{}{}
	return b.scope.Subscribe(b.l, target,
		func(snap store.Snapshot) {
			apply(snap)
			b.settle(part)
		},
		func(error) {
			apply(store.Snapshot{})
			b.settle(part)
		},
	)
}

func (b *base[V]) settle(part string) {
	delete(b.pending, part)
	b.publish()
}

func (b *base[V]) loading() bool { return len(b.pending) > 0 }

func (b *base[V]) publish() {
	v := b.render()
	b.mu.Lock()
	b.current = v
	subs := slices.Clone(b.subs)
	b.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

// Current returns the latest view.
func (b *base[V]) Current() V {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// OnChange registers fn for every view published from now on. fn runs on the event loop.
func (b *base[V]) OnChange(fn func(V)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// SetLang switches the language. Only language-dependent parts resubscribe.
func (b *base[V]) SetLang(lang i18n.Lang) {
	b.scope.Call(func() {
		if lang == b.lang {
			return
		}
		b.lang = lang
		if b.relang != nil {
			b.relang()
		}
		b.publish()
	})
}

// Close releases every subscription; no view is published afterwards.
func (b *base[V]) Close() { b.scope.Close() }

// Done is closed once the aggregator has fully stopped.
func (b *base[V]) Done() <-chan struct{} { return b.scope.Done() }
