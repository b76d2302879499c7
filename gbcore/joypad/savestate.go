package joypad

import (
	"bytes"
	"encoding/gob"
)

type snapshot struct {
	Buttons, Dpad, Line uint8
}

// SaveState returns a gob-encoded snapshot of the held-key state. Save
// states capture the guest-visible button state, not physical host input.
func (j *Joypad) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{Buttons: j.buttons, Dpad: j.dpad, Line: j.line})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (j *Joypad) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	j.buttons, j.dpad, j.line = s.Buttons, s.Dpad, s.Line
	return nil
}
