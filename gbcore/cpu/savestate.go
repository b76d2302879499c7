package cpu

import (
	"bytes"
	"encoding/gob"
)

// snapshot mirrors CPU's persistent fields for save-state serialization
// (spec.md 6 "core" section).
type snapshot struct {
	A, B, C, D, E, H, L uint8
	F                   uint8
	SP, PC              uint16

	CurrentOpcode uint16

	InterruptsEnabled bool
	EIPending         bool
	Halted            bool
	HaltBug           bool
	Stopped           bool

	Cycles uint64
}

// SaveState returns a gob-encoded snapshot of the CPU's registers and
// interrupt-dispatch state.
func (c *CPU) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{
		A: c.a, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l, F: c.f,
		SP: c.sp, PC: c.pc,
		CurrentOpcode:     c.currentOpcode,
		InterruptsEnabled: c.interruptsEnabled,
		EIPending:         c.eiPending,
		Halted:            c.halted,
		HaltBug:           c.haltBug,
		Stopped:           c.stopped,
		Cycles:            c.cycles,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (c *CPU) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	c.a, c.b, c.c, c.d, c.e, c.h, c.l, c.f = s.A, s.B, s.C, s.D, s.E, s.H, s.L, s.F
	c.sp, c.pc = s.SP, s.PC
	c.currentOpcode = s.CurrentOpcode
	c.interruptsEnabled = s.InterruptsEnabled
	c.eiPending = s.EIPending
	c.halted = s.Halted
	c.haltBug = s.HaltBug
	c.stopped = s.Stopped
	c.cycles = s.Cycles
	c.cyclesThisStep = 0
	return nil
}
