// Package live binds store listeners to the code that renders their results.
//
// A subscription delivers full snapshots, never diffs, until it is cancelled or fails.
// A Scope groups the subscriptions and background tasks of one owner (a page, a tab)
// and runs all of their callbacks on a single event loop.
package live

import (
	"context"
	"errors"
	"sync"

	"portfolio/internal/store"
)

// Subscribe listens to target and calls onSnapshot for every snapshot, starting with the
// current state. The first Listen or Next failure is passed to onError and ends the
// subscription. The returned function cancels it and may be called any number of times.
// Callbacks run on the subscription's goroutine and stop once unsubscribe returns.
func Subscribe(ctx context.Context, l store.Listener, target store.Target, onSnapshot func(store.Snapshot), onError func(error)) (unsubscribe func()) {
	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once

	go func() {
		defer cancel()
		it, err := l.Listen(ctx, target)
		if err != nil {
			if ctx.Err() == nil && onError != nil {
				onError(err)
			}
			return
		}
		defer it.Stop()

		for {
			snap, err := it.Next(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if !errors.Is(err, store.ErrStopped) && onError != nil {
					onError(err)
				}
				return
			}
			onSnapshot(snap)
		}
	}()

	return func() { once.Do(cancel) }
}
