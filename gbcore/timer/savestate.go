package timer

import (
	"bytes"
	"encoding/gob"
)

// snapshot mirrors Timer's persistent fields for save-state serialization
// (spec.md 6 "timing" section). Host callbacks are rewired by the owning
// Machine on load, not carried in the blob.
type snapshot struct {
	DivCounter   uint16
	TIMA, TMA    uint8
	TAC          uint8
	State        reloadState
	ReloadCycles int
	LastBit      bool
	DoubleSpeed  bool
}

// SaveState returns a gob-encoded snapshot of the timer's state.
func (t *Timer) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{
		DivCounter:   t.divCounter,
		TIMA:         t.tima,
		TMA:          t.tma,
		TAC:          t.tac,
		State:        t.state,
		ReloadCycles: t.reloadCycles,
		LastBit:      t.lastBit,
		DoubleSpeed:  t.doubleSpeed,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (t *Timer) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	t.divCounter = s.DivCounter
	t.tima = s.TIMA
	t.tma = s.TMA
	t.tac = s.TAC
	t.state = s.State
	t.reloadCycles = s.ReloadCycles
	t.lastBit = s.LastBit
	t.doubleSpeed = s.DoubleSpeed
	return nil
}
