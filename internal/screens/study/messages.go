package study

import sess "github.com/abhisek/smartstudy/internal/study"

// loadedMsg hands a started machine to the screen. err reports a failed
// auto-advance save; the machine is usable either way.
type loadedMsg struct {
	machine *sess.Machine
	err     error
}

// tickMsg is the one-second countdown tick for a timer generation.
type tickMsg struct {
	gen uint64
}
