// Package notify emits best-effort audible and desktop notifications at
// phase transitions. Failures are swallowed so a missing notification
// facility never affects the timer itself.
package notify

import "github.com/gen2brain/beeep"

// Tone parameters for the transition cue.
const (
	toneFreq     = 800.0 // Hz
	toneDuration = 1000  // milliseconds
)

// Dispatcher sends a tone and a desktop notification over two
// independent channels. Either channel can be disabled.
type Dispatcher struct {
	Sound   bool
	Desktop bool
}

// New returns a dispatcher with both channels enabled.
func New() *Dispatcher {
	return &Dispatcher{Sound: true, Desktop: true}
}

// Notify dispatches both cues and returns immediately. Delivery runs in
// a background goroutine; errors from either channel are discarded.
func (d *Dispatcher) Notify(title, body string) {
	sound, desktop := d.Sound, d.Desktop
	if !sound && !desktop {
		return
	}
	go func() {
		if sound {
			beeep.Beep(toneFreq, toneDuration)
		}
		if desktop {
			beeep.Notify(title, body, "")
		}
	}()
}
