package library

type Wallet struct {
	PrivateKey string
	SeedWords  string
	Account    Account
}

// Account is a hex encoded nostr public key.
type Account = string

type Sha256 = string

// Profile is the content of a kind 0 event.
type Profile struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Banner      string `json:"banner,omitempty"`
	Website     string `json:"website,omitempty"`
	Lud06       string `json:"lud06,omitempty"`
	Lud16       string `json:"lud16,omitempty"`
	Nip05       string `json:"nip05,omitempty"`
}

// TimestampedProfile is a Profile together with the created_at of the event it came from.
type TimestampedProfile struct {
	Profile   Profile `json:"profile"`
	Timestamp int64   `json:"timestamp"`
}
