package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
	"nostrpfp/engine/metrics"
	"nostrpfp/messaging/httpapi"
	"nostrpfp/messaging/notify"
	"nostrpfp/messaging/relays"
	"nostrpfp/pfp"
)

func main() {
	interactive := flag.Bool("i", false, "listen for single key commands")
	preview := flag.Bool("preview", false, "use the jb55 preview profile instead of syncing from relays")
	highlight := flag.String("highlight", "none", "ring style: none, main or reply")
	flag.Parse()

	// Various aspect of this application require global and local settings. To keep things
	// clean and tidy we put these settings in a Viper configuration.
	conf := viper.New()
	actors.InitConfig(conf)
	actors.SetConfig(conf)
	actors.SetTerminateChan(make(chan struct{}))

	var watch []library.Account
	for _, arg := range flag.Args() {
		pk, err := library.NormalizePubkey(arg)
		if err != nil {
			library.LogCLI(err, 2)
			continue
		}
		watch = append(watch, pk)
	}

	bus := notify.New()
	our := actors.MyPubkey()
	directory, social := loadState(conf, bus, our, watch, *preview)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	resolver := &pfp.Resolver{
		Profiles:    directory,
		Contacts:    social,
		Settings:    conf,
		Placeholder: pfp.RobohashAt(conf.GetString("robohashBase")),
	}

	var pics []*pfp.ProfilePic
	for _, pk := range watch {
		pic := pfp.NewProfilePic(resolver, bus, pk, pfp.PFPSize, pfp.ParseHighlight(*highlight), "", func(r pfp.Rendering) {
			m.Renders.Inc()
			printRendering(r)
		})
		printRendering(pic.Render())
		pics = append(pics, pic)
	}

	var follower *relays.Follower
	if !*preview {
		handler := &relays.EventHandler{Profiles: directory, Contacts: social, Metrics: m}
		follower = relays.NewFollower(conf.GetStringSlice("relays"), handler.Handle)
		actors.GetWaitGroup().Add(1)
		go func() {
			defer actors.GetWaitGroup().Done()
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				<-actors.GetTerminateChan()
				cancel()
			}()
			if err := handler.Sync(ctx, conf.GetStringSlice("relays"), conf.GetDuration("fetchTimeout")); err != nil {
				actors.LogCLI(err, 3)
				return
			}
			accounts := social.Friendosphere()
			accounts = append(accounts, watch...)
			follower.Follow(append(accounts, our))
		}()
	}

	var server *http.Server
	if addr := conf.GetString("httpAddr"); len(addr) > 0 {
		server = &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(resolver, directory, m), reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			actors.LogCLI("Serving profile pictures on "+addr, 4)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				actors.LogCLI(err, 1)
			}
		}()
	}

	interrupt := make(chan struct{})
	if *interactive {
		go cliListener(interrupt, resolver, directory, social, pics)
	}
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-interrupt:
	case <-sigs:
	}

	for _, pic := range pics {
		pic.Close()
	}
	if follower != nil {
		follower.Stop()
	}
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		server.Shutdown(ctx)
		cancel()
	}
	actors.Shutdown()
	saveState(directory, *preview)
}

func printRendering(r pfp.Rendering) {
	fmt.Printf("\n%s\n  url: %s (%s)\n  fallback: %s\n  placeholder: %s ring: %s/%v\n",
		r.Pubkey, r.URL, r.Source, r.FallbackURL, pfp.HexString(r.PlaceholderColor), pfp.HexString(r.RingColor), r.RingWidth)
}
