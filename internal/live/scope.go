package live

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"portfolio/internal/store"
)

// Scope owns subscriptions and tasks. Everything started through it is released by Close,
// and no callback of it runs after Close.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	done   chan struct{}

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	s := &Scope{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
	go s.loop()
	return s
}

func (s *Scope) Context() context.Context { return s.ctx }

// Done is closed once the event loop has exited.
func (s *Scope) Done() <-chan struct{} { return s.done }

func (s *Scope) Closed() bool { return s.closed.Load() }

// Close cancels every subscription and task and drops queued callbacks.
// It does not wait for the loop; use Done for that.
func (s *Scope) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// Post queues fn on the event loop. It reports false when the scope is closed.
func (s *Scope) Post(fn func()) bool {
	if s.closed.Load() {
		return false
	}
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the event loop and waits for it. It reports false if the scope closed first.
func (s *Scope) Call(fn func()) bool {
	ran := make(chan struct{})
	if !s.Post(func() { fn(); close(ran) }) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-s.done:
		return false
	}
}

// Subscribe is live.Subscribe with callbacks delivered on the scope's loop.
func (s *Scope) Subscribe(l store.Listener, target store.Target, onSnapshot func(store.Snapshot), onError func(error)) (unsubscribe func()) {
	var active atomic.Bool
	active.Store(true)
	stop := Subscribe(s.ctx, l, target,
		func(snap store.Snapshot) {
			s.Post(func() {
				if active.Load() {
					onSnapshot(snap)
				}
			})
		},
		func(err error) {
			log.WithField("target", target.Key()).WithError(err).Warn("subscription failed")
			s.Post(func() {
				if active.Load() && onError != nil {
					onError(err)
				}
			})
		},
	)
	return func() {
		active.Store(false)
		stop()
	}
}

func (s *Scope) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()
		for _, fn := range batch {
			if s.closed.Load() {
				return
			}
			fn()
		}
	}
}

// Go runs task in the background and hands its result to apply on the scope's loop.
// apply is never called once the scope is closed.
func Go[T any](s *Scope, task func(ctx context.Context) (T, error), apply func(T, error)) {
	go func() {
		v, err := task(s.ctx)
		s.Post(func() { apply(v, err) })
	}()
}
