package contacts

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"nostrpfp/engine/library"
	"nostrpfp/messaging/notify"
)

type followList struct {
	follows   []library.Account
	createdAt int64
}

// Contacts is the viewer's social graph: who they follow, and who those accounts follow.
type Contacts struct {
	ourPubkey       library.Account
	lists           map[library.Account]followList
	friends         map[library.Account]struct{}
	friendOfFriends map[library.Account]struct{}
	mutex           *deadlock.RWMutex
	bus             *notify.Bus
}

// New returns the social graph for ourPubkey. A ContactsUpdated notification carrying the
// list author is published on bus whenever the graph changes.
func New(ourPubkey library.Account, bus *notify.Bus) *Contacts {
	return &Contacts{
		ourPubkey:       ourPubkey,
		lists:           make(map[library.Account]followList),
		friends:         make(map[library.Account]struct{}),
		friendOfFriends: make(map[library.Account]struct{}),
		mutex:           &deadlock.RWMutex{},
		bus:             bus,
	}
}

func (c *Contacts) OurPubkey() library.Account {
	return c.ourPubkey
}

// IsFriend reports whether the viewer follows pubkey.
func (c *Contacts) IsFriend(pubkey library.Account) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.friends[pubkey]
	return ok
}

func (c *Contacts) IsFriendOfFriend(pubkey library.Account) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.friendOfFriends[pubkey]
	return ok
}

// IsInFriendosphere reports whether pubkey is within two hops of the viewer.
func (c *Contacts) IsInFriendosphere(pubkey library.Account) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if _, ok := c.friends[pubkey]; ok {
		return true
	}
	_, ok := c.friendOfFriends[pubkey]
	return ok
}

// Friends returns the accounts the viewer follows, sorted.
func (c *Contacts) Friends() []library.Account {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	f := maps.Keys(c.friends)
	slices.Sort(f)
	return f
}

// Friendosphere returns friends and friends of friends, sorted and without duplicates.
func (c *Contacts) Friendosphere() []library.Account {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	all := make(map[library.Account]struct{}, len(c.friends)+len(c.friendOfFriends))
	for pk := range c.friends {
		all[pk] = struct{}{}
	}
	for pk := range c.friendOfFriends {
		all[pk] = struct{}{}
	}
	f := maps.Keys(all)
	slices.Sort(f)
	return f
}

// SetFollows replaces author's follow list if createdAt is newer than the one held.
func (c *Contacts) SetFollows(author library.Account, follows []library.Account, createdAt int64) bool {
	c.mutex.Lock()
	if existing, ok := c.lists[author]; ok && existing.createdAt >= createdAt {
		c.mutex.Unlock()
		return false
	}
	c.lists[author] = followList{follows: slices.Clone(follows), createdAt: createdAt}
	c.rebuild()
	c.mutex.Unlock()
	if c.bus != nil {
		c.bus.Publish(notify.Notification{Kind: notify.ContactsUpdated, Object: author})
	}
	return true
}

// HandleEvent ingests a signed kind 3 contact list.
func (c *Contacts) HandleEvent(event nostr.Event) error {
	if event.Kind != 3 {
		return fmt.Errorf("event %s is kind %d, not a contact list", event.ID, event.Kind)
	}
	if ok, _ := event.CheckSignature(); !ok {
		return fmt.Errorf("event %s has an invalid signature", event.ID)
	}
	if !c.SetFollows(event.PubKey, library.GetAllPubkeys(event), int64(event.CreatedAt)) {
		return fmt.Errorf("event %s did not cause a state change", event.ID)
	}
	return nil
}

// rebuild recomputes both sets from the stored lists. Callers hold the write lock.
func (c *Contacts) rebuild() {
	friends := make(map[library.Account]struct{})
	for _, pk := range c.lists[c.ourPubkey].follows {
		friends[pk] = struct{}{}
	}
	fof := make(map[library.Account]struct{})
	for friend := range friends {
		for _, pk := range c.lists[friend].follows {
			fof[pk] = struct{}{}
		}
	}
	c.friends = friends
	c.friendOfFriends = fof
}
