package profiles

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
	"nostrpfp/messaging/notify"
)

type Mapped map[library.Account]library.TimestampedProfile

// Mirror is a shared store that the Directory writes through to and can warm itself from.
type Mirror interface {
	Store(ctx context.Context, account library.Account, profile library.TimestampedProfile) error
	Load(ctx context.Context, account library.Account) (library.TimestampedProfile, bool, error)
}

// Directory holds the newest known profile for each account.
type Directory struct {
	data   Mapped
	mutex  *deadlock.RWMutex
	bus    *notify.Bus
	mirror Mirror
	// publish is held from acceptance until the update is on the bus, so updates for an
	// account are published in timestamp order.
	publish *deadlock.Mutex
}

// NewDirectory returns an empty Directory. Accepted updates are published on bus when it is not nil.
func NewDirectory(bus *notify.Bus) *Directory {
	return &Directory{
		data:    make(Mapped),
		mutex:   &deadlock.RWMutex{},
		bus:     bus,
		publish: &deadlock.Mutex{},
	}
}

func (d *Directory) SetMirror(m Mirror) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.mirror = m
}

// Add stores profile unless the directory already has one for account that is at least as new.
func (d *Directory) Add(account library.Account, profile library.TimestampedProfile) bool {
	d.publish.Lock()
	defer d.publish.Unlock()
	d.mutex.Lock()
	ok := d.upsert(account, profile)
	mirror := d.mirror
	d.mutex.Unlock()
	if !ok {
		return false
	}
	if mirror != nil {
		go func() {
			if err := mirror.Store(context.Background(), account, profile); err != nil {
				actors.LogCLI(fmt.Sprintf("could not mirror profile for %s: %s", account, err), 2)
			}
		}()
	}
	if d.bus != nil {
		d.bus.PublishProfile(account, profile)
	}
	return true
}

func (d *Directory) upsert(account library.Account, profile library.TimestampedProfile) bool {
	if existing, ok := d.data[account]; ok && existing.Timestamp >= profile.Timestamp {
		return false
	}
	d.data[account] = profile
	return true
}

// Lookup returns the newest profile for account.
func (d *Directory) Lookup(account library.Account) (library.Profile, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	p, ok := d.data[account]
	return p.Profile, ok
}

func (d *Directory) LookupWithTimestamp(account library.Account) (library.TimestampedProfile, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	p, ok := d.data[account]
	return p, ok
}

func (d *Directory) GetMap() Mapped {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	m := make(Mapped, len(d.data))
	for account, p := range d.data {
		m[account] = p
	}
	return m
}

// HandleEvent ingests a signed kind 0 event.
func (d *Directory) HandleEvent(event nostr.Event) error {
	if event.Kind != 0 {
		return fmt.Errorf("event %s is kind %d, not a profile", event.ID, event.Kind)
	}
	if ok, _ := event.CheckSignature(); !ok {
		return fmt.Errorf("event %s has an invalid signature", event.ID)
	}
	var profile library.Profile
	if err := json.Unmarshal([]byte(event.Content), &profile); err != nil {
		return fmt.Errorf("event %s has invalid profile content: %w", event.ID, err)
	}
	if !d.Add(event.PubKey, library.TimestampedProfile{Profile: profile, Timestamp: int64(event.CreatedAt)}) {
		return fmt.Errorf("event %s did not cause a state change", event.ID)
	}
	return nil
}

// Warm loads accounts from the mirror, keeping whichever copy is newer.
func (d *Directory) Warm(ctx context.Context, accounts ...library.Account) error {
	d.mutex.RLock()
	mirror := d.mirror
	d.mutex.RUnlock()
	if mirror == nil {
		return nil
	}
	for _, account := range accounts {
		p, ok, err := mirror.Load(ctx, account)
		if err != nil {
			return fmt.Errorf("load %s: %w", account, err)
		}
		if !ok {
			continue
		}
		d.publish.Lock()
		d.mutex.Lock()
		changed := d.upsert(account, p)
		d.mutex.Unlock()
		if changed && d.bus != nil {
			d.bus.PublishProfile(account, p)
		}
		d.publish.Unlock()
	}
	return nil
}

// PersistToDisk writes the directory to the profiles flat file.
func (d *Directory) PersistToDisk() error {
	b, err := json.MarshalIndent(d.GetMap(), "", " ")
	if err != nil {
		return err
	}
	return actors.Write("profiles", "current", b)
}

// RestoreFromDisk merges the profiles flat file into the directory. A missing file is not an error.
func (d *Directory) RestoreFromDisk() error {
	f, ok := actors.Open("profiles", "current")
	if !ok {
		return nil
	}
	defer f.Close()
	var m Mapped
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return fmt.Errorf("decode profiles: %w", err)
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	for account, p := range m {
		d.upsert(account, p)
	}
	return nil
}
