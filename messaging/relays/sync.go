package relays

import (
	"context"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
	"nostrpfp/engine/metrics"
	"nostrpfp/state/contacts"
	"nostrpfp/state/profiles"
)

// EventHandler routes relay events into the profile directory and the social graph.
type EventHandler struct {
	Profiles *profiles.Directory
	Contacts *contacts.Contacts
	Metrics  *metrics.Metrics
}

func (h *EventHandler) Handle(event nostr.Event) error {
	var err error
	switch event.Kind {
	case 0:
		err = h.Profiles.HandleEvent(event)
	case 3:
		err = h.Contacts.HandleEvent(event)
	default:
		err = fmt.Errorf("event %s has unhandled kind %d", event.ID, event.Kind)
	}
	if h.Metrics != nil {
		outcome := "accepted"
		if err != nil {
			outcome = "rejected"
		}
		h.Metrics.ProfileEvents.WithLabelValues(fmt.Sprint(event.Kind), outcome).Inc()
	}
	return err
}

// Sync fills the social graph and directory from relays: the viewer's contact list, then their
// friends' lists, then the profiles of everyone in the friendosphere.
func (h *EventHandler) Sync(ctx context.Context, urls []string, timeout time.Duration) error {
	our := h.Contacts.OurPubkey()
	h.handleAll(FetchLatest(ctx, urls, nostr.Filter{Kinds: []int{3}, Authors: []string{our}}, timeout))
	for _, batch := range chunks(h.Contacts.Friends(), maxAuthors) {
		h.handleAll(FetchLatest(ctx, urls, nostr.Filter{Kinds: []int{3}, Authors: batch}, timeout))
	}
	accounts := append(h.Contacts.Friendosphere(), our)
	if err := h.Profiles.Warm(ctx, accounts...); err != nil {
		actors.LogCLI(fmt.Sprintf("could not warm profiles from mirror: %s", err), 2)
	}
	for _, batch := range chunks(accounts, maxAuthors) {
		h.handleAll(FetchLatest(ctx, urls, nostr.Filter{Kinds: []int{0}, Authors: batch}, timeout))
	}
	return ctx.Err()
}

func (h *EventHandler) handleAll(events map[library.Account]nostr.Event) {
	for _, event := range events {
		if err := h.Handle(event); err != nil {
			actors.LogCLI(err.Error(), 3)
		}
	}
}
