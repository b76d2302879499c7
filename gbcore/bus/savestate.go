package bus

import (
	"bytes"
	"encoding/gob"
)

// snapshot mirrors Bus's own address-space state: WRAM, HRAM, IE/IF, the
// boot-ROM gate, CGB WRAM banking, and the KEY1 double-speed latch
// (spec.md 6 "core"/"hram" sections). Sub-components serialize themselves
// separately and are aggregated by the owning Machine's save-state envelope.
type snapshot struct {
	WRAM     [8][0x1000]byte
	WRAMBank uint8
	HRAM     [0x80]byte

	IFReg, IEReg uint8

	BootDisabled bool

	Key1        uint8
	DoubleSpeed bool

	IRLED bool
}

// SaveState returns a gob-encoded snapshot of the bus's own state: WRAM,
// HRAM, IE/IF, boot-ROM gating, and CGB speed-switch latches. It does not
// include sub-components (timer, joypad, serial, PPU, APU, DMA/HDMA,
// cartridge); those are saved/loaded independently via their own
// SaveState/LoadState and wired together by the Machine.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{
		WRAM: b.wram, WRAMBank: b.wramBank, HRAM: b.hram,
		IFReg: b.ifReg, IEReg: b.ieReg,
		BootDisabled: b.bootDisabled,
		Key1:         b.key1, DoubleSpeed: b.doubleSpeed,
		IRLED: b.irLED,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (b *Bus) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	b.wram, b.wramBank, b.hram = s.WRAM, s.WRAMBank, s.HRAM
	b.ifReg, b.ieReg = s.IFReg, s.IEReg
	b.bootDisabled = s.BootDisabled
	b.key1, b.doubleSpeed = s.Key1, s.DoubleSpeed
	b.irLED = s.IRLED
	return nil
}
