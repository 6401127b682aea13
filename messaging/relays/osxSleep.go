//go:build darwin

package relays

import (
	"sync"

	"github.com/prashantgupta24/mac-sleep-notifier/notifier"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
)

var (
	notifierOnce sync.Once
	wakeMu       = &deadlock.Mutex{}
	wakeNext     int
	wakeTargets  = make(map[int]func())
)

// sleeper calls onWake every time the system wakes until the returned func is called.
// The system notifier is started once per process and shared by every caller.
func sleeper(onWake func()) func() {
	notifierOnce.Do(func() {
		activities := notifier.GetInstance().Start()
		go func() {
			for activity := range activities {
				if activity.Type != notifier.Awake {
					continue
				}
				wakeMu.Lock()
				targets := maps.Values(wakeTargets)
				wakeMu.Unlock()
				for _, fn := range targets {
					fn()
				}
			}
		}()
	})
	wakeMu.Lock()
	id := wakeNext
	wakeNext++
	wakeTargets[id] = onWake
	wakeMu.Unlock()
	return func() {
		wakeMu.Lock()
		delete(wakeTargets, id)
		wakeMu.Unlock()
	}
}
