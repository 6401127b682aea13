package main

import (
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
	"nostrpfp/messaging/notify"
	"nostrpfp/state/contacts"
	"nostrpfp/state/profiles"
)

// loadState builds the profile directory and social graph. In preview mode the directory only
// holds the sample profile and is never restored from disk or mirrored.
func loadState(conf *viper.Viper, bus *notify.Bus, our library.Account, watch []library.Account, preview bool) (*profiles.Directory, *contacts.Contacts) {
	if preview {
		if len(watch) > 0 {
			our = watch[0]
		}
		return profiles.MakePreviewProfiles(our), contacts.New(our, bus)
	}
	directory := profiles.NewDirectory(bus)
	if err := directory.RestoreFromDisk(); err != nil {
		actors.LogCLI(err, 1)
	}
	if addr := conf.GetString("redisAddr"); len(addr) > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		directory.SetMirror(profiles.NewRedisMirror(rdb, conf.GetDuration("redisTTL")))
	}
	return directory, contacts.New(our, bus)
}

// saveState writes the directory to disk unless it is preview state.
func saveState(directory *profiles.Directory, preview bool) {
	if preview {
		return
	}
	if err := directory.PersistToDisk(); err != nil {
		actors.LogCLI(err, 1)
	}
}
