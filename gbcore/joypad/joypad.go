// Package joypad models the Game Boy's P1 input register. Grounded on the
// teacher's jeebie/memory/joypad.go, moved out of the bus package into its
// own component (spec.md 6 "set_key_state(player, key)") and repointed to
// gbcore's bit helpers.
package joypad

import "github.com/pixelpocket/gbcore/bit"

// Key is one of the eight Game Boy inputs.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad tracks button/d-pad state and the P1 select line, raising the
// joypad interrupt when a press takes the selected line's four bits from
// some high to all low.
type Joypad struct {
	buttons uint8
	dpad    uint8
	line    uint8

	RequestInterrupt func()
}

// New returns a Joypad with no keys pressed.
func New() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// Read returns the current P1 value for whichever line is selected.
func (j *Joypad) Read() uint8 {
	switch j.line {
	case 0x10:
		return 0xC0 | j.line | j.dpad
	case 0x20:
		return 0xC0 | j.line | j.buttons
	default:
		return 0xC0 | j.line | 0x0F
	}
}

// Write selects which line (buttons/d-pad) subsequent reads report.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

// Press clears the bit for the given key (active low) and requests the
// joypad interrupt when this press leaves every bit of the selected line
// low where at least one was high before.
func (j *Joypad) Press(key Key) {
	before := j.Read()
	switch key {
	case Right:
		j.dpad = bit.Reset(0, j.dpad)
	case Left:
		j.dpad = bit.Reset(1, j.dpad)
	case Up:
		j.dpad = bit.Reset(2, j.dpad)
	case Down:
		j.dpad = bit.Reset(3, j.dpad)
	case A:
		j.buttons = bit.Reset(0, j.buttons)
	case B:
		j.buttons = bit.Reset(1, j.buttons)
	case Select:
		j.buttons = bit.Reset(2, j.buttons)
	case Start:
		j.buttons = bit.Reset(3, j.buttons)
	}
	if after := j.Read(); before&0x0F != 0 && after&0x0F == 0 && j.RequestInterrupt != nil {
		j.RequestInterrupt()
	}
}

// Release sets the bit for the given key back to its unpressed (high) state.
func (j *Joypad) Release(key Key) {
	switch key {
	case Right:
		j.dpad = bit.Set(0, j.dpad)
	case Left:
		j.dpad = bit.Set(1, j.dpad)
	case Up:
		j.dpad = bit.Set(2, j.dpad)
	case Down:
		j.dpad = bit.Set(3, j.dpad)
	case A:
		j.buttons = bit.Set(0, j.buttons)
	case B:
		j.buttons = bit.Set(1, j.buttons)
	case Select:
		j.buttons = bit.Set(2, j.buttons)
	case Start:
		j.buttons = bit.Set(3, j.buttons)
	}
}
