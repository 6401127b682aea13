package pfp

import (
	"net/url"

	"nostrpfp/engine/library"
)

const RobohashBase = "https://robohash.org/"

// PlaceholderFunc returns the generated fallback avatar for an account. It must always return a valid absolute URL.
type PlaceholderFunc func(pubkey library.Account) *url.URL

// Robohash is the default PlaceholderFunc.
func Robohash(pubkey library.Account) *url.URL {
	return RobohashAt(RobohashBase)(pubkey)
}

// RobohashAt returns a PlaceholderFunc serving from base. An unusable base falls back to RobohashBase.
func RobohashAt(base string) PlaceholderFunc {
	b, err := url.Parse(base)
	if err != nil || !isAbsolute(b) {
		b, _ = url.Parse(RobohashBase)
	}
	return func(pubkey library.Account) *url.URL {
		return b.JoinPath(pubkey)
	}
}
