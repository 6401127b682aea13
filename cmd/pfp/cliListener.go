package main

import (
	"fmt"

	"github.com/eiannone/keyboard"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"nostrpfp/engine/actors"
	"nostrpfp/pfp"
	"nostrpfp/state/contacts"
	"nostrpfp/state/profiles"
)

// cliListener listens for keypresses and executes commands.
func cliListener(interrupt chan struct{}, resolver *pfp.Resolver, directory *profiles.Directory, social *contacts.Contacts, pics []*pfp.ProfilePic) {
	fmt.Println("VIEW CURRENT STATE:\np: cycle remote image policy\nr: re-render watched pictures\ni: profile directory\nf: friends\nc: config\nq: to quit")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			actors.LogCLI(err, 1)
			return
		}
		str := string(r)
		switch str {
		default:
			if k == keyboard.KeyEnter {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to any command.")
		case "q":
			close(interrupt)
			return
		case "p":
			next := resolver.Policy().Next()
			actors.MakeOrGetConfig().Set(actors.RemoteImagePolicyKey, string(next))
			if err := actors.MakeOrGetConfig().WriteConfig(); err != nil {
				actors.LogCLI(err, 2)
			}
			fmt.Printf("remote image policy: %s\n", next)
			renderAll(pics)
		case "r":
			renderAll(pics)
		case "i":
			m := directory.GetMap()
			accounts := maps.Keys(m)
			slices.Sort(accounts)
			for _, account := range accounts {
				fmt.Printf("ACCOUNT: %s (%d)\n%#v\n", account, m[account].Timestamp, m[account].Profile)
			}
		case "f":
			fmt.Printf("OUR PUBKEY: %s\n", social.OurPubkey())
			for _, friend := range social.Friends() {
				fmt.Println(friend)
			}
			fmt.Printf("%d accounts in friendosphere\n", len(social.Friendosphere()))
		case "c":
			fmt.Println("CURRENT CONFIG")
			for k, v := range actors.MakeOrGetConfig().AllSettings() {
				fmt.Printf("\nKey: %s; Value: %v\n", k, v)
			}
		}
	}
}

func renderAll(pics []*pfp.ProfilePic) {
	for _, pic := range pics {
		printRendering(pic.Render())
	}
}
