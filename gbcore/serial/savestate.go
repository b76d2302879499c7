package serial

import (
	"bytes"
	"encoding/gob"
)

type snapshot struct {
	SB, SC       uint8
	Active       bool
	BitsShifted  int
	CycleCounter int
	DoubleSpeed  bool
}

// SaveState returns a gob-encoded snapshot of the shift register's state.
func (s *Serial) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{
		SB:           s.sb,
		SC:           s.sc,
		Active:       s.active,
		BitsShifted:  s.bitsShifted,
		CycleCounter: s.cycleCounter,
		DoubleSpeed:  s.doubleSpeed,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (s *Serial) LoadState(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	s.sb = snap.SB
	s.sc = snap.SC
	s.active = snap.Active
	s.bitsShifted = snap.BitsShifted
	s.cycleCounter = snap.CycleCounter
	s.doubleSpeed = snap.DoubleSpeed
	return nil
}
