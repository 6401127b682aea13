// Package pfp decides which profile picture to show for an account and how to draw it.
package pfp

import (
	"net/url"

	"nostrpfp/engine/library"
)

// ProfileLookup is the profile directory.
type ProfileLookup interface {
	Lookup(pubkey library.Account) (library.Profile, bool)
}

// SocialGraph answers relationship questions relative to the viewer.
type SocialGraph interface {
	OurPubkey() library.Account
	IsFriend(pubkey library.Account) bool
	IsInFriendosphere(pubkey library.Account) bool
}

// Source records where a resolved URL came from.
type Source string

const (
	SourceCached      Source = "cached"
	SourceDirectory   Source = "directory"
	SourcePlaceholder Source = "placeholder"
)

type Resolution struct {
	URL    *url.URL
	Source Source
}

// ShowRealPicture reports whether policy lets the viewer load pubkey's own picture.
func ShowRealPicture(pubkey library.Account, contacts SocialGraph, policy RemoteImagePolicy) bool {
	if contacts == nil {
		return policy == Everyone
	}
	switch {
	case pubkey == contacts.OurPubkey():
		return true
	case policy == Everyone:
		return true
	case policy == FriendsOnly:
		return contacts.IsFriend(pubkey)
	case policy == FriendsOfFriends:
		return contacts.IsInFriendosphere(pubkey)
	}
	return false
}

// ProfileURL returns the picture to display for pubkey. picture is a cached override and may be empty.
// The result is always an absolute URL, and it is placeholder(pubkey) whenever policy hides pubkey.
func ProfileURL(picture string, pubkey library.Account, profiles ProfileLookup, contacts SocialGraph, policy RemoteImagePolicy, placeholder PlaceholderFunc) Resolution {
	if placeholder == nil {
		placeholder = Robohash
	}
	fallback := Resolution{URL: placeholder(pubkey), Source: SourcePlaceholder}
	if !ShowRealPicture(pubkey, contacts, policy) {
		return fallback
	}
	candidate, source := picture, SourceCached
	if len(candidate) == 0 && profiles != nil {
		if p, ok := profiles.Lookup(pubkey); ok {
			candidate, source = p.Picture, SourceDirectory
		}
	}
	if len(candidate) == 0 {
		return fallback
	}
	u, err := url.Parse(candidate)
	if err != nil || !isAbsolute(u) {
		return fallback
	}
	return Resolution{URL: u, Source: source}
}

func isAbsolute(u *url.URL) bool {
	return len(u.Scheme) > 0 && len(u.Host) > 0
}

// Resolver binds ProfileURL to the app's directory, social graph and settings.
// The policy is read from Settings on every call so changes apply on the next render.
type Resolver struct {
	Profiles    ProfileLookup
	Contacts    SocialGraph
	Settings    SettingsProvider
	Placeholder PlaceholderFunc
}

func (r *Resolver) Policy() RemoteImagePolicy {
	return PolicyFromSettings(r.Settings)
}

func (r *Resolver) Resolve(pubkey library.Account, picture string) Resolution {
	return ProfileURL(picture, pubkey, r.Profiles, r.Contacts, r.Policy(), r.placeholder())
}

// Fallback is the placeholder URL for pubkey, handed to the image loader for failed downloads.
func (r *Resolver) Fallback(pubkey library.Account) *url.URL {
	return r.placeholder()(pubkey)
}

func (r *Resolver) placeholder() PlaceholderFunc {
	if r.Placeholder == nil {
		return Robohash
	}
	return r.Placeholder
}
