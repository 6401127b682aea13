package actors

import (
	"github.com/sasha-s/go-deadlock"
	"nostrpfp/engine/library"
)

var terminateChan = make(chan struct{})
var terminateOnce = &deadlock.Mutex{}
var terminated bool
var waitGroup = &deadlock.WaitGroup{}

func SetTerminateChan(term chan struct{}) {
	terminateOnce.Lock()
	defer terminateOnce.Unlock()
	terminateChan = term
	terminated = false
}

func GetTerminateChan() chan struct{} {
	terminateOnce.Lock()
	defer terminateOnce.Unlock()
	return terminateChan
}

// GetWaitGroup is used by long running goroutines so that Shutdown can wait for them.
func GetWaitGroup() *deadlock.WaitGroup {
	return waitGroup
}

// Shutdown closes the terminate channel (once) and waits for everything registered on the WaitGroup.
func Shutdown() {
	terminateOnce.Lock()
	if !terminated {
		terminated = true
		close(terminateChan)
	}
	terminateOnce.Unlock()
	waitGroup.Wait()
	LogCLI("nostrpfp has shut down", 4)
}

// LogCLI logs through library.LogCLI, dropping anything more verbose than the configured logLevel.
func LogCLI(message interface{}, level int) {
	if level > MakeOrGetConfig().GetInt("logLevel") {
		return
	}
	library.LogCLI(message, level)
}
