package library

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr/nip19"
)

// IsPubkey reports whether s is a 64 character lowercase hex string.
func IsPubkey(s string) bool {
	if len(s) != 64 || strings.ToLower(s) != s {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// NormalizePubkey accepts a hex pubkey or an npub and returns the hex form.
func NormalizePubkey(s string) (Account, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "nostr:")
	if IsPubkey(strings.ToLower(s)) {
		return strings.ToLower(s), nil
	}
	prefix, value, err := nip19.Decode(s)
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", s, err)
	}
	if prefix == "npub" {
		if pk, ok := value.(string); ok && IsPubkey(pk) {
			return pk, nil
		}
	}
	return "", fmt.Errorf("%q is not a public key", s)
}
