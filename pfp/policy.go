package pfp

import "nostrpfp/engine/actors"

// RemoteImagePolicy decides whose real profile pictures are loaded.
type RemoteImagePolicy string

const (
	// Nobody shows real pictures only for the viewer's own account.
	Nobody           RemoteImagePolicy = "nobody"
	FriendsOnly      RemoteImagePolicy = "friendsOnly"
	FriendsOfFriends RemoteImagePolicy = "friendsOfFriends"
	Everyone         RemoteImagePolicy = "everyone"
)

const DefaultPolicy = FriendsOfFriends

var Policies = []RemoteImagePolicy{Nobody, FriendsOnly, FriendsOfFriends, Everyone}

// SettingsProvider reads persisted settings. *viper.Viper satisfies it.
type SettingsProvider interface {
	GetString(key string) string
}

// ParsePolicy returns the policy named by raw, or DefaultPolicy when raw is empty or unknown.
func ParsePolicy(raw string) RemoteImagePolicy {
	for _, p := range Policies {
		if string(p) == raw {
			return p
		}
	}
	return DefaultPolicy
}

// PolicyFromSettings reads the remote_image_policy key.
func PolicyFromSettings(settings SettingsProvider) RemoteImagePolicy {
	if settings == nil {
		return DefaultPolicy
	}
	return ParsePolicy(settings.GetString(actors.RemoteImagePolicyKey))
}

// Next cycles through Policies, wrapping around.
func (p RemoteImagePolicy) Next() RemoteImagePolicy {
	for i, candidate := range Policies {
		if candidate == p {
			return Policies[(i+1)%len(Policies)]
		}
	}
	return DefaultPolicy
}
