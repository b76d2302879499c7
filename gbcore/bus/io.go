package bus

import (
	"github.com/pixelpocket/gbcore/addr"
	"github.com/pixelpocket/gbcore/video"
)

// effectiveWRAMBank resolves the bank mapped at 0xD000-0xDFFF: SVBK bank 0
// requests bank 1 (spec.md's CGB SVBK note), and DMG always reads/writes
// bank 1 regardless of any stray write.
func (b *Bus) effectiveWRAMBank() uint8 {
	if !b.model.IsCGB() {
		return 1
	}
	bank := b.wramBank & 0x07
	if bank == 0 {
		bank = 1
	}
	return bank
}

// readIOSpace covers the last 4 KiB slot: OAM (0xFE00-0xFE9F), the unusable
// gap (0xFEA0-0xFEFF), I/O registers (0xFF00-0xFF7F), HRAM (0xFF80-0xFFFE)
// and IE (0xFFFF).
func (b *Bus) readIOSpace(address uint16) uint8 {
	switch {
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		b.maybeTriggerOAMBug(address)
		return b.ppu.ReadOAM(address)
	case address >= 0xFEA0 && address <= 0xFEFF:
		return b.readUnusable()
	case address == addr.IF:
		return b.ifReg | 0xE0
	case address == addr.IE:
		return b.ieReg
	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram[address-0xFF80]
	default:
		return b.readRegister(address)
	}
}

func (b *Bus) writeIOSpace(address uint16, value uint8) {
	switch {
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		b.maybeTriggerOAMBug(address)
		b.ppu.WriteOAM(address, value)
	case address >= 0xFEA0 && address <= 0xFEFF:
		// unusable, hardware drops the write
	case address == addr.IF:
		b.ifReg = value & 0x1F
	case address == addr.IE:
		b.ieReg = value
	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	default:
		b.writeRegister(address, value)
	}
}

// maybeTriggerOAMBug reproduces the DMG OAM bug on any OAM access issued
// while the PPU is in mode 2 (spec.md 4.1, GlitchOAMRow doc comment).
func (b *Bus) maybeTriggerOAMBug(address uint16) {
	if b.model.IsCGB() || b.ppu.Mode() != video.ModeOAM {
		return
	}
	row := int(address-addr.OAMStart) / 8
	b.ppu.GlitchOAMRow(row)
}

// readUnusable implements the read side of 0xFEA0-0xFEFF: 0x00 on DMG; on
// CGB, 0xFF while the PPU is in mode 2 or 3 and 0x00 in modes 0 and 1. The
// CGB value does not depend on the address read.
func (b *Bus) readUnusable() uint8 {
	if !b.model.IsCGB() {
		return 0x00
	}
	mode := b.ppu.Mode()
	if mode == video.ModeOAM || mode == video.ModeDraw {
		return 0xFF
	}
	high := uint8(0x00)
	low := uint8(0x00)
	return high<<4 | (low & 0xF)
}

func (b *Bus) readRegister(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return b.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return b.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return b.timer.Read(address)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return b.apu.ReadRegister(address)
	case address == addr.DMA:
		return b.oamDMA.SourceRegister()
	case address >= addr.LCDC && address <= addr.WX:
		return b.ppu.ReadRegister(address)
	case b.model.IsCGB() && address == addr.KEY1:
		return b.key1 | 0x7E
	case b.model.IsCGB() && address == addr.VBK:
		return b.ppu.ReadRegister(address)
	case b.model.IsCGB() && address == addr.HDMA5:
		return b.hdma.ReadHDMA5()
	case b.model.IsCGB() && (address == addr.BCPS || address == addr.BCPD || address == addr.OCPS || address == addr.OCPD || address == addr.OPRI):
		return b.ppu.ReadRegister(address)
	case b.model.IsCGB() && address == addr.SVBK:
		return b.wramBank | 0xF8
	case b.model.IsCGB() && address == addr.RP:
		return b.readInfrared()
	default:
		b.log.Debug("read from unmapped I/O register", "addr", address)
		return 0xFF
	}
}

func (b *Bus) writeRegister(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		b.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		b.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		b.timer.Write(address, value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		b.apu.WriteRegister(address, value)
	case address == addr.DMA:
		b.oamDMA.Start(value)
	case address >= addr.LCDC && address <= addr.WX:
		b.ppu.WriteRegister(address, value)
	case address == addr.BANK:
		b.bootDisabled = true
	case b.model.IsCGB() && address == addr.KEY1:
		b.key1 = (b.key1 & 0x80) | (value & 0x01)
	case b.model.IsCGB() && address == addr.VBK:
		b.ppu.WriteRegister(address, value)
	case b.model.IsCGB() && address == addr.HDMA1:
		b.hdma.SetSourceHigh(value)
	case b.model.IsCGB() && address == addr.HDMA2:
		b.hdma.SetSourceLow(value)
	case b.model.IsCGB() && address == addr.HDMA3:
		b.hdma.SetDestHigh(value)
	case b.model.IsCGB() && address == addr.HDMA4:
		b.hdma.SetDestLow(value)
	case b.model.IsCGB() && address == addr.HDMA5:
		b.hdma.WriteHDMA5(value)
	case b.model.IsCGB() && (address == addr.BCPS || address == addr.BCPD || address == addr.OCPS || address == addr.OCPD || address == addr.OPRI):
		b.ppu.WriteRegister(address, value)
	case b.model.IsCGB() && address == addr.SVBK:
		b.wramBank = value & 0x07
	case b.model.IsCGB() && address == addr.RP:
		b.writeInfrared(value)
	}
}

// ToggleSpeed performs the CGB STOP-triggered double-speed switch; the CPU
// calls this when executing STOP, and the returned bool tells it whether a
// switch actually occurred (KEY1 bit 0 must have been armed by a prior
// write) so it knows whether to charge STOP's 0x20000-cycle quiescent
// period or just enter the ordinary button-wake STOP state.
func (b *Bus) ToggleSpeed() bool {
	if b.key1&0x01 == 0 {
		return false
	}
	b.doubleSpeed = !b.doubleSpeed
	b.key1 = (b.key1 &^ 0x01)
	if b.doubleSpeed {
		b.key1 |= 0x80
	} else {
		b.key1 &^= 0x80
	}
	b.timer.SetDoubleSpeed(b.doubleSpeed)
	b.serial.SetDoubleSpeed(b.doubleSpeed)
	return true
}

// readInfrared/writeInfrared implement the RP register's LED/read-data bits
// (spec.md 6 "infrared(state)" host callback); InfraredState is invoked for
// the current photodiode reading, defaulting to "no signal" when unset.
func (b *Bus) readInfrared() uint8 {
	v := uint8(0x3C)
	if b.InfraredState == nil || !b.InfraredState() {
		v |= 0x02
	}
	return v
}

func (b *Bus) writeInfrared(value uint8) {
	b.irLED = value&0x01 != 0
	if b.InfraredLED != nil {
		b.InfraredLED(b.irLED)
	}
}
