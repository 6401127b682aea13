package library

import (
	"github.com/nbd-wtf/go-nostr"
)

func GetFirstTag(e nostr.Event, startsWith string) (string, bool) {
	for _, tag := range e.Tags {
		if tag.StartsWith([]string{startsWith}) && len(tag) > 1 {
			return tag.Value(), true
		}
	}
	return "", false
}

// GetAllPubkeys returns the well formed pubkeys from the event's p tags, in tag order and without duplicates.
func GetAllPubkeys(e nostr.Event) (r []Account) {
	seen := make(map[Account]struct{})
	for _, tag := range e.Tags {
		if len(tag) < 2 || tag[0] != "p" {
			continue
		}
		if !IsPubkey(tag[1]) {
			continue
		}
		if _, ok := seen[tag[1]]; ok {
			continue
		}
		seen[tag[1]] = struct{}{}
		r = append(r, tag[1])
	}
	return
}
