package profiles

import "nostrpfp/engine/library"

// MakePreviewProfiles returns a directory holding the jb55 sample profile under pubkey.
func MakePreviewProfiles(pubkey library.Account) *Directory {
	d := NewDirectory(nil)
	d.Add(pubkey, library.TimestampedProfile{
		Profile: library.Profile{
			Name:        "jb55",
			DisplayName: "William Casarin",
			About:       "It's me",
			Picture:     "http://cdn.jb55.com/img/red-me.jpg",
			Website:     "https://jb55.com",
			Nip05:       "jb55.com",
		},
		Timestamp: 0,
	})
	return d
}
