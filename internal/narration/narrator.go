// Package narration reads step instructions aloud.
package narration

import "sync"

// Narrator speaks text. Speak interrupts whatever is being said; a disabled
// narrator stays silent.
type Narrator interface {
	Speak(text string)
	Cancel()
	SetEnabled(on bool)
	Enabled() bool
}

// Nop is a silent narrator that still tracks the enabled flag, for runs
// without audio output and for tests.
type Nop struct {
	mu      sync.Mutex
	enabled bool
	spoken  []string
}

func (n *Nop) Speak(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.enabled {
		n.spoken = append(n.spoken, text)
	}
}

func (n *Nop) Cancel() {}

func (n *Nop) SetEnabled(on bool) {
	n.mu.Lock()
	n.enabled = on
	n.mu.Unlock()
}

func (n *Nop) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Spoken returns what would have been said while enabled.
func (n *Nop) Spoken() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.spoken...)
}
