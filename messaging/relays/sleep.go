//go:build !darwin

package relays

// sleeper never fires outside darwin.
func sleeper(onWake func()) func() {
	return func() {}
}
