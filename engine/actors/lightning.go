package actors

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/fiatjaf/go-lnurl"
	"nostrpfp/engine/library"
)

// PayEndpoint returns the LNURL-pay URL advertised by a profile. lud16 is preferred over lud06.
func PayEndpoint(profile library.Profile) (string, bool) {
	if len(profile.Lud16) > 0 {
		if url, err := lud16ToUrl(profile.Lud16); err == nil {
			return url, true
		}
	}
	if len(profile.Lud06) > 0 {
		decoded, err := lnurl.LNURLDecode(profile.Lud06)
		if err == nil {
			return decoded, true
		}
		LogCLI(fmt.Sprintf("invalid lud06 %q: %s", profile.Lud06, err), 3)
	}
	return "", false
}

// Lud16ToLud06 encodes a lightning address as a bech32 lnurl.
func Lud16ToLud06(lud16 string) (string, bool) {
	url, err := lud16ToUrl(lud16)
	if err != nil {
		LogCLI(err, 3)
		return "", false
	}
	encoded, err := lnurl.Encode(url)
	if err != nil {
		LogCLI(err, 3)
		return "", false
	}
	return encoded, true
}

func lud16ToUrl(address string) (string, error) {
	addr, err := mail.ParseAddress(address)
	if err != nil {
		return "", fmt.Errorf("invalid lightning address %q: %w", address, err)
	}
	split := strings.Split(addr.Address, "@")
	if len(split) != 2 || len(split[0]) == 0 || len(split[1]) == 0 {
		return "", fmt.Errorf("invalid lightning address %q", address)
	}
	return "https://" + split[1] + "/.well-known/lnurlp/" + split[0], nil
}
