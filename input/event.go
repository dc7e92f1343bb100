// Package input defines the event types the embedding window layer feeds
// into the UI thread: key strokes, character input and mouse clicks, each
// stamped with the modifier keys held at the time. A Queue decouples the
// producing thread from the UI thread that delivers them.
package input

import "strings"

// Mod is a bitset of modifier keys.
type Mod uint8

const (
	Shift Mod = 1 << iota
	Ctrl
	Alt
	Super
)

// Has reports whether every modifier in m is held.
func (m Mod) Has(mods Mod) bool {
	return m&mods == mods
}

func (m Mod) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.Has(Shift) {
		parts = append(parts, "shift")
	}
	if m.Has(Ctrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(Alt) {
		parts = append(parts, "alt")
	}
	if m.Has(Super) {
		parts = append(parts, "super")
	}
	return strings.Join(parts, "+")
}

// Key identifies a non-printable key. Printable keys travel as CharInput.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeySpace
)

// Action distinguishes press, release and key-repeat.
type Action uint8

const (
	Press Action = iota
	Release
	Repeat
)

// Button identifies a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is the closed set of input events. Only the types in this package
// implement it.
type Event interface {
	// Mods returns the modifier keys held when the event was produced.
	Mods() Mod

	event()
}

// KeyStroke is a press, release or repeat of a non-printable key.
type KeyStroke struct {
	Key       Key
	Action    Action
	Modifiers Mod
}

// CharInput is a printable character, after keymap translation.
type CharInput struct {
	Char      rune
	Modifiers Mod
}

// MouseClick is a button press or release at a window position.
type MouseClick struct {
	Button    Button
	Action    Action
	X, Y      float64
	Modifiers Mod
}

func (e KeyStroke) Mods() Mod  { return e.Modifiers }
func (e CharInput) Mods() Mod  { return e.Modifiers }
func (e MouseClick) Mods() Mod { return e.Modifiers }

func (KeyStroke) event()  {}
func (CharInput) event()  {}
func (MouseClick) event() {}
