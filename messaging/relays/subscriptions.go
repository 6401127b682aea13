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

// Follower keeps live kind 0 and kind 3 subscriptions open for a set of accounts and feeds
// every new event to its handler.
type Follower struct {
	urls    []string
	handler func(nostr.Event) error
	seen    *seenCache
	wake    *wakeSignal
	unwatch func()
	end     chan struct{}
	wait    *deadlock.WaitGroup
	lock    *deadlock.Mutex
}

func NewFollower(urls []string, handler func(nostr.Event) error) *Follower {
	return &Follower{
		urls:    urls,
		handler: handler,
		seen:    newSeenCache(10000),
		wake:    newWakeSignal(),
		end:     make(chan struct{}),
		wait:    &deadlock.WaitGroup{},
		lock:    &deadlock.Mutex{},
	}
}

// Follow replaces the current subscriptions with ones covering accounts.
func (f *Follower) Follow(accounts []library.Account) {
	f.lock.Lock()
	defer f.lock.Unlock()
	close(f.end)
	f.wait.Wait()
	f.end = make(chan struct{})
	if len(accounts) == 0 {
		if f.unwatch != nil {
			f.unwatch()
			f.unwatch = nil
		}
		return
	}
	if f.unwatch == nil {
		f.unwatch = sleeper(f.wake.fire)
	}
	since := nostr.Timestamp(time.Now().Unix())
	var filters nostr.Filters
	for _, batch := range chunks(accounts, maxAuthors) {
		filters = append(filters, nostr.Filter{Kinds: []int{0, 3}, Authors: batch, Since: &since})
	}
	for _, url := range f.urls {
		f.wait.Add(1)
		go f.run(url, filters, f.end)
	}
}

// Stop closes every subscription.
func (f *Follower) Stop() {
	f.Follow(nil)
}

func (f *Follower) run(url string, filters nostr.Filters, end chan struct{}) {
	defer f.wait.Done()
	for {
		restart := f.subscribe(url, filters, end)
		if !restart {
			return
		}
		select {
		case <-end:
			return
		case <-actors.GetTerminateChan():
			return
		case <-time.After(10 * time.Second):
			actors.LogCLI("Reconnecting to "+url, 4)
		}
	}
}

// subscribe runs one subscription until it fails (true, retry) or is told to stop (false).
func (f *Follower) subscribe(url string, filters nostr.Filters, end chan struct{}) bool {
	woke := f.wake.C()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		actors.LogCLI(fmt.Sprintf("could not connect to relay %s: %s", url, err), 3)
		return true
	}
	defer relay.Close()
	sub, err := relay.Subscribe(ctx, filters)
	if err != nil {
		actors.LogCLI(err.Error(), 2)
		return true
	}
	defer sub.Unsub()
	actors.LogCLI("Following profiles on "+url, 4)
	for {
		select {
		case ev := <-sub.Events:
			if ev == nil {
				actors.LogCLI("Terminating connection to relay "+url, 3)
				return true
			}
			sane := library.ValidateSaneExecutionTime()
			if f.seen.add(ev.ID) {
				if err := f.handler(*ev); err != nil {
					actors.LogCLI(err.Error(), 3)
				}
			}
			sane()
		case <-woke:
			// connections rarely survive a system sleep
			actors.LogCLI("system sleep detected, reconnecting to "+url, 2)
			return true
		case <-end:
			return false
		case <-actors.GetTerminateChan():
			return false
		}
	}
}
