package relays

import (
	"github.com/sasha-s/go-deadlock"
)

// seenCache remembers recently handled event ids so the same event arriving from several relays is handled once.
type seenCache struct {
	ids   map[string]struct{}
	order []string
	size  int
	mu    *deadlock.Mutex
}

func newSeenCache(size int) *seenCache {
	return &seenCache{
		ids:  make(map[string]struct{}, size),
		size: size,
		mu:   &deadlock.Mutex{},
	}
}

// add returns false if id was already present.
func (c *seenCache) add(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	c.order = append(c.order, id)
	if len(c.order) > c.size {
		delete(c.ids, c.order[0])
		c.order = c.order[1:]
	}
	return true
}

// wakeSignal broadcasts system wake-ups: C is closed and replaced on every fire.
type wakeSignal struct {
	c  chan struct{}
	mu *deadlock.Mutex
}

func newWakeSignal() *wakeSignal {
	return &wakeSignal{c: make(chan struct{}), mu: &deadlock.Mutex{}}
}

// C returns a channel that is closed on the next wake-up.
func (w *wakeSignal) C() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c
}

func (w *wakeSignal) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	close(w.c)
	w.c = make(chan struct{})
}
