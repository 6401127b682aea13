package actors

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sasha-s/go-deadlock"
	"github.com/spf13/viper"
	"nostrpfp/engine/library"
)

// RemoteImagePolicyKey is the settings key holding the avatar visibility policy.
const RemoteImagePolicyKey = "remote_image_policy"

// InitConfig sets up our Viper config object
func InitConfig(config *viper.Viper) {
	// a missing .env is the normal case
	_ = godotenv.Load()
	homeDir, err := os.UserHomeDir()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	config.SetEnvPrefix("pfp")
	config.AutomaticEnv()
	config.SetDefault("rootDir", homeDir+"/nostrpfp/")
	config.SetConfigType("yaml")
	config.SetConfigFile(config.GetString("rootDir") + "config.yaml")
	err = config.ReadInConfig()
	if err != nil {
		library.LogCLI(err.Error(), 4)
	}
	SetDefaults(config)
	// Create our working directory and config file if not exist
	initRootDir(config)
	touch(config.GetString("rootDir") + "config.yaml")
	err = config.WriteConfig()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
}

// SetDefaults applies every default without touching the filesystem.
func SetDefaults(config *viper.Viper) {
	config.SetDefault("flatFileDir", "data/")
	config.SetDefault("logLevel", 4)
	// empty means use (or create) the wallet in rootDir
	config.SetDefault("pubkey", "")
	config.SetDefault(RemoteImagePolicyKey, "friendsOfFriends")
	config.SetDefault("robohashBase", "https://robohash.org/")
	config.SetDefault("relays", []string{"wss://relay.damus.io", "wss://nos.lol", "wss://nostr.688.org"})
	config.SetDefault("fetchTimeout", 6*time.Second)
	config.SetDefault("httpAddr", "")
	config.SetDefault("redisAddr", "")
	config.SetDefault("redisTTL", 24*time.Hour)
}

func initRootDir(conf *viper.Viper) {
	_, err := os.Stat(conf.GetString("rootDir"))
	if os.IsNotExist(err) {
		err = os.MkdirAll(conf.GetString("rootDir"), 0755)
		if err != nil {
			library.LogCLI(err, 0)
		}
	}
}

func touch(name string) {
	f, err := os.OpenFile(name, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		library.LogCLI(err, 1)
		return
	}
	f.Close()
}

var conf *viper.Viper
var confMu = &deadlock.Mutex{}

func MakeOrGetConfig() *viper.Viper {
	confMu.Lock()
	defer confMu.Unlock()
	if conf == nil {
		conf = viper.New()
		SetDefaults(conf)
	}
	return conf
}

func SetConfig(config *viper.Viper) {
	confMu.Lock()
	defer confMu.Unlock()
	conf = config
}
