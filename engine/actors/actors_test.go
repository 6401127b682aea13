package actors

import (
	"io"
	"testing"

	"github.com/spf13/viper"
	"nostrpfp/engine/library"
)

func useTempConfig(t *testing.T) {
	t.Helper()
	conf := viper.New()
	SetDefaults(conf)
	conf.Set("rootDir", t.TempDir()+"/")
	conf.Set("logLevel", 1)
	SetConfig(conf)
}

func TestPayEndpointFromLud16(t *testing.T) {
	useTempConfig(t)
	url, ok := PayEndpoint(library.Profile{Lud16: "jb55@sendsats.lol"})
	if !ok {
		t.Fatal("expected endpoint")
	}
	if url != "https://sendsats.lol/.well-known/lnurlp/jb55" {
		t.Fatalf("unexpected endpoint %q", url)
	}
}

func TestPayEndpointFromLud06(t *testing.T) {
	useTempConfig(t)
	lud06, ok := Lud16ToLud06("jb55@sendsats.lol")
	if !ok {
		t.Fatal("expected lud06 encoding")
	}
	url, ok := PayEndpoint(library.Profile{Lud06: lud06})
	if !ok {
		t.Fatal("expected endpoint")
	}
	if url != "https://sendsats.lol/.well-known/lnurlp/jb55" {
		t.Fatalf("unexpected endpoint %q", url)
	}
}

func TestPayEndpointInvalid(t *testing.T) {
	useTempConfig(t)
	for _, p := range []library.Profile{{}, {Lud16: "not an address"}, {Lud06: "lnurl1garbage"}} {
		if url, ok := PayEndpoint(p); ok {
			t.Fatalf("expected no endpoint for %+v, got %q", p, url)
		}
	}
}

func TestFlatFileRoundTrip(t *testing.T) {
	useTempConfig(t)
	if _, ok := Open("profiles", "current"); ok {
		t.Fatal("expected no file before first write")
	}
	if err := Write("profiles", "current", []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write("profiles", "current", []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	f, ok := Open("profiles", "current")
	if !ok {
		t.Fatal("expected file after write")
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("expected latest contents, got %q", b)
	}
}

func TestMyPubkeyPrefersConfiguredKey(t *testing.T) {
	useTempConfig(t)
	pk := "ca48854ac6555fed8e439ebb4fa2d928410e0eef13fa41164ec45aaaa132d846"
	MakeOrGetConfig().Set("pubkey", pk)
	if got := MyPubkey(); got != pk {
		t.Fatalf("MyPubkey = %q, want %q", got, pk)
	}
}

func TestGetPubKey(t *testing.T) {
	// secret key 1 maps to the secp256k1 generator point
	sk := "0000000000000000000000000000000000000000000000000000000000000001"
	pk, err := getPubKey(sk)
	if err != nil {
		t.Fatalf("getPubKey: %v", err)
	}
	if pk != "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" {
		t.Fatalf("unexpected pubkey %s", pk)
	}
}

func TestDefaultPolicySetting(t *testing.T) {
	useTempConfig(t)
	if got := MakeOrGetConfig().GetString(RemoteImagePolicyKey); got != "friendsOfFriends" {
		t.Fatalf("default policy = %q", got)
	}
}
