package store

import "sync"

type listener struct {
	collection string
	notify     chan struct{}
	stopped    chan struct{}
	once       sync.Once
}

// feed wakes listeners of a collection after each committed write. Wake-ups coalesce:
// a listener that has not consumed the previous one gets a single pending signal, so it
// always re-reads the latest state instead of replaying intermediate ones.
type feed struct {
	mu        sync.Mutex
	listeners map[string]map[*listener]struct{}
}

func newFeed() *feed {
	return &feed{listeners: make(map[string]map[*listener]struct{})}
}

func (f *feed) add(collection string) *listener {
	l := &listener{
		collection: collection,
		notify:     make(chan struct{}, 1),
		stopped:    make(chan struct{}),
	}
	f.mu.Lock()
	set, ok := f.listeners[collection]
	if !ok {
		set = make(map[*listener]struct{})
		f.listeners[collection] = set
	}
	set[l] = struct{}{}
	f.mu.Unlock()
	return l
}

func (f *feed) remove(l *listener) {
	l.once.Do(func() {
		close(l.stopped)
		f.mu.Lock()
		if set, ok := f.listeners[l.collection]; ok {
			delete(set, l)
			if len(set) == 0 {
				delete(f.listeners, l.collection)
			}
		}
		f.mu.Unlock()
	})
}

func (f *feed) publish(collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for l := range f.listeners[collection] {
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
}

func (f *feed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, set := range f.listeners {
		n += len(set)
	}
	return n
}

func (f *feed) closeAll() {
	f.mu.Lock()
	var all []*listener
	for _, set := range f.listeners {
		for l := range set {
			all = append(all, l)
		}
	}
	f.mu.Unlock()
	for _, l := range all {
		f.remove(l)
	}
}
