package actors

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr/nip06"
	"github.com/sasha-s/go-deadlock"
	"nostrpfp/engine/library"
)

var currentWallet library.Wallet
var currentWalletMutex = &deadlock.Mutex{}

// MyPubkey is the viewer's own account. A configured pubkey (hex or npub) wins over the wallet.
func MyPubkey() library.Account {
	if configured := MakeOrGetConfig().GetString("pubkey"); len(configured) > 0 {
		pk, err := library.NormalizePubkey(configured)
		if err == nil {
			return pk
		}
		LogCLI(fmt.Sprintf("ignoring configured pubkey: %s", err), 2)
	}
	return MyWallet().Account
}

// MyWallet returns the current Wallet or creates a new one if there isn't one already
func MyWallet() library.Wallet {
	currentWalletMutex.Lock()
	defer currentWalletMutex.Unlock()
	if len(currentWallet.PrivateKey) == 0 {
		//try to restore wallet from disk
		if w, ok := getWalletFromDisk(); ok {
			currentWallet = w
		} else {
			LogCLI("Generating a new wallet, write down the seed words if you want to keep it", 4)
			currentWallet = makeNewWallet()
			fmt.Printf("\n\n~NEW WALLET~\nPublic Key: %s\nSeed Words: %s\n\n", currentWallet.Account, currentWallet.SeedWords)
			if err := persistCurrentWallet(); err != nil {
				LogCLI(err.Error(), 1)
			}
		}
	}
	return currentWallet
}

func makeNewWallet() library.Wallet {
	seedWords, err := nip06.GenerateSeedWords()
	if err != nil {
		LogCLI(err.Error(), 0)
	}
	seed := nip06.SeedFromWords(seedWords)
	sk, err := nip06.PrivateKeyFromSeed(seed)
	if err != nil {
		LogCLI(err.Error(), 0)
	}
	pk, err := getPubKey(sk)
	if err != nil {
		LogCLI(err.Error(), 0)
	}
	return library.Wallet{
		PrivateKey: sk,
		SeedWords:  seedWords,
		Account:    pk,
	}
}

func getPubKey(privateKey string) (library.Account, error) {
	keyb, err := hex.DecodeString(privateKey)
	if err != nil {
		return "", fmt.Errorf("decoding key from hex: %w", err)
	}
	_, pubkey := btcec.PrivKeyFromBytes(keyb)
	return hex.EncodeToString(schnorr.SerializePubKey(pubkey)), nil
}

func walletFile() string {
	return MakeOrGetConfig().GetString("rootDir") + "wallet.dat"
}

func persistCurrentWallet() error {
	b, err := json.Marshal(currentWallet)
	if err != nil {
		return err
	}
	return os.WriteFile(walletFile(), b, 0600)
}

func getWalletFromDisk() (w library.Wallet, ok bool) {
	file, err := os.ReadFile(walletFile())
	if err != nil {
		LogCLI(fmt.Sprintf("Error getting wallet file: %s", err.Error()), 3)
		return library.Wallet{}, false
	}
	err = json.Unmarshal(file, &w)
	if err != nil {
		LogCLI(fmt.Sprintf("Error parsing wallet file: %s", err.Error()), 3)
		return library.Wallet{}, false
	}
	return w, true
}
