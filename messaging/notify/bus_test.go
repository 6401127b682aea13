package notify

import (
	"testing"
	"time"

	"nostrpfp/engine/library"
)

const (
	alice = "ca48854ac6555fed8e439ebb4fa2d928410e0eef13fa41164ec45aaaa132d846"
	bob   = "32e1827635450ebb3c5a7d12c1f8e7b2b514439ac10a67eef3d9fd9c5c68e245"
)

func receive(t *testing.T, s *Subscription) Notification {
	t.Helper()
	select {
	case n := <-s.C:
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
	return Notification{}
}

func TestSubscribeFiltersByPubkey(t *testing.T) {
	b := New()
	s := b.Subscribe(ProfileUpdated, ForPubkey(alice))
	defer s.Close()

	b.PublishProfile(bob, library.TimestampedProfile{Profile: library.Profile{Picture: "https://example.com/bob.png"}})
	b.PublishProfile(alice, library.TimestampedProfile{Profile: library.Profile{Picture: "https://example.com/alice.png"}, Timestamp: 7})

	n := receive(t, s)
	update, ok := n.Object.(ProfileUpdate)
	if !ok {
		t.Fatalf("unexpected object %T", n.Object)
	}
	if update.Pubkey != alice || update.Profile.Picture != "https://example.com/alice.png" || update.Timestamp != 7 {
		t.Fatalf("unexpected update %+v", update)
	}
	select {
	case n := <-s.C:
		t.Fatalf("unexpected extra notification %+v", n)
	default:
	}
}

func TestSubscribeIsKeyedByKind(t *testing.T) {
	b := New()
	s := b.Subscribe(ContactsUpdated, nil)
	defer s.Close()
	b.PublishProfile(alice, library.TimestampedProfile{})
	b.Publish(Notification{Kind: ContactsUpdated, Object: alice})
	n := receive(t, s)
	if n.Kind != ContactsUpdated || n.Object != alice {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestCloseUnregistersAndUnblocksPublish(t *testing.T) {
	b := New()
	s := b.Subscribe(ProfileUpdated, nil)
	if b.Subscribers(ProfileUpdated) != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers(ProfileUpdated))
	}
	// fill the buffer so the next publish blocks
	for i := 0; i < cap(s.c); i++ {
		b.PublishProfile(alice, library.TimestampedProfile{})
	}
	published := make(chan struct{})
	go func() {
		b.PublishProfile(alice, library.TimestampedProfile{})
		close(published)
	}()
	s.Close()
	s.Close()
	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish stayed blocked after close")
	}
	if b.Subscribers(ProfileUpdated) != 0 {
		t.Fatalf("expected no subscribers, got %d", b.Subscribers(ProfileUpdated))
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("expected done to be closed")
	}
}
