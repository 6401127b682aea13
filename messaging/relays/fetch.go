package relays

import (
	"context"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
)

// maxAuthors keeps filters under the author limits most relays enforce.
const maxAuthors = 500

// FetchLatest asks every relay for events matching filter and returns the newest event per author.
// Relays that cannot be reached are skipped. Each relay is given timeout to reach end of stored events.
func FetchLatest(ctx context.Context, urls []string, filter nostr.Filter, timeout time.Duration) map[library.Account]nostr.Event {
	var events []nostr.Event
	eventsMu := &deadlock.Mutex{}
	wait := &deadlock.WaitGroup{}
	for _, url := range urls {
		wait.Add(1)
		go func(url string) {
			defer wait.Done()
			received := fetchFromRelay(ctx, url, filter, timeout)
			eventsMu.Lock()
			events = append(events, received...)
			eventsMu.Unlock()
		}(url)
	}
	wait.Wait()
	return newestByAuthor(events)
}

func fetchFromRelay(ctx context.Context, url string, filter nostr.Filter, timeout time.Duration) (events []nostr.Event) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	relay, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		actors.LogCLI(fmt.Sprintf("could not connect to relay %s: %s", url, err), 3)
		return nil
	}
	defer relay.Close()
	sub, err := relay.Subscribe(ctx, nostr.Filters{filter})
	if err != nil {
		actors.LogCLI(fmt.Sprintf("could not subscribe on relay %s: %s", url, err), 2)
		return nil
	}
	defer sub.Unsub()
	for {
		select {
		case ev := <-sub.Events:
			if ev == nil {
				return
			}
			events = append(events, *ev)
		case <-sub.EndOfStoredEvents:
			return
		case <-ctx.Done():
			return
		}
	}
}

// newestByAuthor keeps the event with the highest created_at for each pubkey. Ties go to the lowest id
// so the result does not depend on relay ordering.
func newestByAuthor(events []nostr.Event) map[library.Account]nostr.Event {
	m := make(map[library.Account]nostr.Event)
	for _, event := range events {
		existing, ok := m[event.PubKey]
		if !ok || event.CreatedAt > existing.CreatedAt || (event.CreatedAt == existing.CreatedAt && event.ID < existing.ID) {
			m[event.PubKey] = event
		}
	}
	return m
}

// FetchLatestProfile returns the newest kind 0 event for account.
func FetchLatestProfile(ctx context.Context, urls []string, account library.Account, timeout time.Duration) (nostr.Event, bool) {
	sane := library.ValidateSaneExecutionTime()
	defer sane()
	events := FetchLatest(ctx, urls, nostr.Filter{Kinds: []int{0}, Authors: []string{account}}, timeout)
	e, ok := events[account]
	if !ok {
		actors.LogCLI(fmt.Sprintf("could not find profile for account %s", account), 3)
	}
	return e, ok
}

// chunks splits accounts into slices of at most size.
func chunks(accounts []library.Account, size int) (out [][]library.Account) {
	for len(accounts) > size {
		out = append(out, accounts[:size])
		accounts = accounts[size:]
	}
	if len(accounts) > 0 {
		out = append(out, accounts)
	}
	return
}
