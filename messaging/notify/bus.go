// Package notify is an in-process publish/subscribe bus. Subscribers receive on a typed channel
// per event kind, optionally narrowed by a filter.
package notify

import (
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
	"nostrpfp/engine/library"
)

type Kind int

const (
	ProfileUpdated Kind = iota
	ContactsUpdated
)

func (k Kind) String() string {
	switch k {
	case ProfileUpdated:
		return "profile_updated"
	case ContactsUpdated:
		return "contacts_updated"
	}
	return "unknown"
}

// Notification is what travels over the bus. Object holds the kind specific payload.
type Notification struct {
	Kind   Kind
	Object any
}

// ProfileUpdate is the Object of a ProfileUpdated notification. Timestamp is the created_at of the
// kind 0 event the profile came from.
type ProfileUpdate struct {
	Pubkey    library.Account
	Profile   library.Profile
	Timestamp int64
}

type Filter func(Notification) bool

type Bus struct {
	mu   *deadlock.RWMutex
	subs map[Kind]map[string]*Subscription
}

func New() *Bus {
	return &Bus{
		mu:   &deadlock.RWMutex{},
		subs: make(map[Kind]map[string]*Subscription),
	}
}

// Subscription delivers notifications of one kind until Close is called.
type Subscription struct {
	ID     string
	Kind   Kind
	C      <-chan Notification
	c      chan Notification
	filter Filter
	done   chan struct{}
	once   *deadlock.Mutex
	closed bool
	bus    *Bus
}

// Subscribe registers for notifications of kind. A nil filter accepts everything.
func (b *Bus) Subscribe(kind Kind, filter Filter) *Subscription {
	c := make(chan Notification, 16)
	s := &Subscription{
		ID:     uuid.NewString(),
		Kind:   kind,
		C:      c,
		c:      c,
		filter: filter,
		done:   make(chan struct{}),
		once:   &deadlock.Mutex{},
		bus:    b,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[kind] == nil {
		b.subs[kind] = make(map[string]*Subscription)
	}
	b.subs[kind][s.ID] = s
	return s
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Lock()
	if s.closed {
		s.once.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.once.Unlock()
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subs[s.Kind], s.ID)
}

// Publish delivers n to every matching subscriber. It blocks while a subscriber's buffer is full,
// unless that subscriber is closed meanwhile.
func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	var targets []*Subscription
	for _, s := range b.subs[n.Kind] {
		if s.filter == nil || s.filter(n) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()
	for _, s := range targets {
		select {
		case s.c <- n:
		case <-s.done:
		}
	}
}

// PublishProfile is shorthand for a ProfileUpdated notification.
func (b *Bus) PublishProfile(pubkey library.Account, profile library.TimestampedProfile) {
	b.Publish(Notification{Kind: ProfileUpdated, Object: ProfileUpdate{Pubkey: pubkey, Profile: profile.Profile, Timestamp: profile.Timestamp}})
}

// ForPubkey matches ProfileUpdated notifications about pubkey.
func ForPubkey(pubkey library.Account) Filter {
	return func(n Notification) bool {
		update, ok := n.Object.(ProfileUpdate)
		return ok && update.Pubkey == pubkey
	}
}

// Subscribers returns the number of live subscriptions for kind.
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}
