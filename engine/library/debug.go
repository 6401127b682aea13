package library

import (
	"github.com/sasha-s/go-deadlock"
)

// ValidateSaneExecutionTime returns a func that must be called before go-deadlock's timeout
// elapses, otherwise the stuck goroutine is reported.
func ValidateSaneExecutionTime() func() {
	mu := deadlock.Mutex{}
	mu.Lock()
	go func() {
		mu.Lock()
		mu.Unlock()
	}()
	return func() {
		mu.Unlock()
	}
}
