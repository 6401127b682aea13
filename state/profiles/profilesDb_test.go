package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"github.com/spf13/viper"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
	"nostrpfp/messaging/notify"
)

const alice = "ca48854ac6555fed8e439ebb4fa2d928410e0eef13fa41164ec45aaaa132d846"

func profileAt(picture string, ts int64) library.TimestampedProfile {
	return library.TimestampedProfile{Profile: library.Profile{Picture: picture}, Timestamp: ts}
}

func TestAddKeepsNewest(t *testing.T) {
	d := NewDirectory(nil)
	if !d.Add(alice, profileAt("https://example.com/1.png", 10)) {
		t.Fatal("expected first add to be accepted")
	}
	if d.Add(alice, profileAt("https://example.com/old.png", 5)) {
		t.Fatal("expected older profile to be rejected")
	}
	if d.Add(alice, profileAt("https://example.com/same.png", 10)) {
		t.Fatal("expected equal timestamp to be rejected")
	}
	if !d.Add(alice, profileAt("https://example.com/2.png", 11)) {
		t.Fatal("expected newer profile to be accepted")
	}
	p, ok := d.Lookup(alice)
	if !ok || p.Picture != "https://example.com/2.png" {
		t.Fatalf("unexpected lookup %+v %v", p, ok)
	}
	if len(d.GetMap()) != 1 {
		t.Fatalf("expected one profile, got %d", len(d.GetMap()))
	}
}

func TestAddPublishesUpdates(t *testing.T) {
	bus := notify.New()
	sub := bus.Subscribe(notify.ProfileUpdated, notify.ForPubkey(alice))
	defer sub.Close()
	d := NewDirectory(bus)
	d.Add(alice, profileAt("https://example.com/1.png", 1))
	d.Add(alice, profileAt("https://example.com/stale.png", 0))

	select {
	case n := <-sub.C:
		update := n.Object.(notify.ProfileUpdate)
		if update.Profile.Picture != "https://example.com/1.png" {
			t.Fatalf("unexpected update %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	select {
	case n := <-sub.C:
		t.Fatalf("rejected update was published: %+v", n)
	default:
	}
}

func TestConcurrentAddsPublishInOrder(t *testing.T) {
	bus := notify.New()
	sub := bus.Subscribe(notify.ProfileUpdated, notify.ForPubkey(alice))
	defer sub.Close()
	d := NewDirectory(bus)

	const n = 50
	published := make(chan int64, n)
	go func() {
		for {
			select {
			case msg := <-sub.C:
				published <- msg.Object.(notify.ProfileUpdate).Timestamp
			case <-sub.Done():
				return
			}
		}
	}()
	wg := &deadlock.WaitGroup{}
	for i := n; i > 0; i-- {
		wg.Add(1)
		go func(ts int64) {
			defer wg.Done()
			d.Add(alice, profileAt("https://example.com/p.png", ts))
		}(int64(i))
	}
	wg.Wait()

	var last int64
	for {
		select {
		case ts := <-published:
			if ts <= last {
				t.Fatalf("update %d published after %d", ts, last)
			}
			last = ts
		case <-time.After(200 * time.Millisecond):
			if p, _ := d.LookupWithTimestamp(alice); last != p.Timestamp {
				t.Fatalf("last published %d, directory holds %d", last, p.Timestamp)
			}
			return
		}
	}
}

func signedProfile(t *testing.T, sk string, content string, createdAt int64) nostr.Event {
	t.Helper()
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		t.Fatalf("pubkey: %v", err)
	}
	e := nostr.Event{
		PubKey:    pk,
		CreatedAt: nostr.Timestamp(createdAt),
		Kind:      0,
		Tags:      nostr.Tags{},
		Content:   content,
	}
	if err := e.Sign(sk); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return e
}

func TestHandleEvent(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	d := NewDirectory(nil)
	e := signedProfile(t, sk, `{"name":"satoshi","picture":"https://example.com/s.png","lud16":"s@example.com"}`, 100)
	if err := d.HandleEvent(e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	p, ok := d.Lookup(e.PubKey)
	if !ok || p.Name != "satoshi" || p.Picture != "https://example.com/s.png" || p.Lud16 != "s@example.com" {
		t.Fatalf("unexpected profile %+v", p)
	}

	tests := []struct {
		name  string
		event nostr.Event
	}{
		{"older", signedProfile(t, sk, `{"name":"old"}`, 99)},
		{"bad json", signedProfile(t, sk, `not json`, 200)},
		{"wrong kind", func() nostr.Event { e := signedProfile(t, sk, `{}`, 300); e.Kind = 1; return e }()},
		{"bad signature", func() nostr.Event { e := signedProfile(t, sk, `{}`, 400); e.Content = `{"name":"forged"}`; return e }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.HandleEvent(tt.event); err == nil {
				t.Fatal("expected error")
			}
			if p, _ := d.Lookup(e.PubKey); p.Name != "satoshi" {
				t.Fatalf("profile changed to %+v", p)
			}
		})
	}
}

type memoryMirror struct {
	mu   deadlock.Mutex
	data map[library.Account]library.TimestampedProfile
	put  chan library.Account
}

func (m *memoryMirror) Store(_ context.Context, account library.Account, p library.TimestampedProfile) error {
	m.mu.Lock()
	m.data[account] = p
	m.mu.Unlock()
	m.put <- account
	return nil
}

func (m *memoryMirror) Load(_ context.Context, account library.Account) (library.TimestampedProfile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[account]
	return p, ok, nil
}

func TestMirrorWriteThroughAndWarm(t *testing.T) {
	m := &memoryMirror{data: make(map[library.Account]library.TimestampedProfile), put: make(chan library.Account, 1)}
	first := NewDirectory(nil)
	first.SetMirror(m)
	first.Add(alice, profileAt("https://example.com/shared.png", 7))
	select {
	case <-m.put:
	case <-time.After(time.Second):
		t.Fatal("profile was not mirrored")
	}

	second := NewDirectory(nil)
	second.SetMirror(m)
	if err := second.Warm(context.Background(), alice, "unknown"); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	p, ok := second.Lookup(alice)
	if !ok || p.Picture != "https://example.com/shared.png" {
		t.Fatalf("unexpected warmed profile %+v %v", p, ok)
	}
}

func TestPersistAndRestore(t *testing.T) {
	conf := viper.New()
	actors.SetDefaults(conf)
	conf.Set("rootDir", t.TempDir()+"/")
	actors.SetConfig(conf)

	d := NewDirectory(nil)
	d.Add(alice, profileAt("https://example.com/disk.png", 3))
	if err := d.PersistToDisk(); err != nil {
		t.Fatalf("PersistToDisk: %v", err)
	}
	restored := NewDirectory(nil)
	if err := restored.RestoreFromDisk(); err != nil {
		t.Fatalf("RestoreFromDisk: %v", err)
	}
	p, ok := restored.LookupWithTimestamp(alice)
	if !ok || p.Profile.Picture != "https://example.com/disk.png" || p.Timestamp != 3 {
		t.Fatalf("unexpected restored profile %+v %v", p, ok)
	}
}

func TestMakePreviewProfiles(t *testing.T) {
	d := MakePreviewProfiles(alice)
	p, ok := d.Lookup(alice)
	if !ok || p.Name != "jb55" || p.Picture != "http://cdn.jb55.com/img/red-me.jpg" {
		t.Fatalf("unexpected preview profile %+v", p)
	}
}

func TestProfileKey(t *testing.T) {
	if got := ProfileKey(alice); got != "pfp:profile:"+alice {
		t.Fatalf("unexpected key %q", got)
	}
}
