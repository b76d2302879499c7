// Package cartridge models the Game Boy cartridge: the immutable ROM image,
// battery-backed SRAM, and the memory bank controller (MBC) chip that
// remaps both. Grounded on the teacher's jeebie/memory/mbc.go for the basic
// MBC1/2/3/5 banking math, extended per spec.md 4.2 with HuC1/HuC3/Camera/
// MBC7, RTC latch/tick, and the packed-latch/refresh-mappings design from
// spec.md 9 ("MBC polymorphism").
package cartridge

import (
	"log/slog"
)

// Cartridge is a tagged variant over the supported MBC chips. Every variant
// shares the same triple of operations (HandleControlWrite, refreshMappings,
// TickRTC); the active variant is selected by Kind and all MBC-specific
// state lives in the same struct so mappings can always be recomputed from
// scratch (spec.md 9: "the refresh step recomputes {rom0_bank, romx_bank,
// ram_bank} from scratch to avoid staleness across save/load").
type Cartridge struct {
	Header Header

	rom     []byte // padded to a power-of-two size
	romMask int     // rom bank count - 1, after padding

	sram        []byte
	sramEnabled bool

	// packed control latches, meaning depends on Header.Kind
	bankLow  uint8 // MBC1/2/3/5 rom bank low bits
	bankHigh uint8 // MBC1 bank-high / RAM bank select
	mode     uint8 // MBC1 mode select (0=ROM banking, 1=RAM banking)
	romBank9 uint16 // MBC5 9-bit rom bank
	ramBank  uint8  // MBC3/5 ram bank or MBC5 rumble-bit-inclusive value

	// resolved mappings, recomputed by refreshMappings after every control
	// write and after load
	rom0Bank  int
	romXBank  int
	ramBankNo int

	rtc RTC

	// HuC3 hidden register surface (spec.md 4.2, 9: "partially
	// reverse-engineered... expose the register surface, log unknowns")
	huc3Reg     uint8
	huc3Command uint8
	huc3Value   uint8

	// Camera capture surface (spec.md 4.2): 54 control registers mapped into
	// SRAM space plus a 128x112 capture plane.
	cameraRegs    [0x36]byte
	cameraCapture [128 * 112]byte
	CameraSource  func(x, y int) byte

	rumbleState bool
	RumbleFunc  func(amplitude float64)

	log *slog.Logger
}

// New builds a Cartridge from a parsed Header and the padded ROM image.
// sram is pre-populated from a battery save when present, otherwise a
// zeroed buffer of Header.RAMSize bytes.
func New(h Header, rom []byte, sram []byte) *Cartridge {
	if sram == nil {
		sram = make([]byte, h.RAMSize)
	}
	c := &Cartridge{
		Header:   h,
		rom:      rom,
		romMask:  h.ROMBanks - 1,
		sram:     sram,
		bankLow:  1,
		romBank9: 1,
		log:      slog.Default(),
	}
	c.refreshMappings()
	return c
}

// ReadROM reads a byte through the current ROM0/ROMX bank mapping. addr is
// the full 16-bit CPU address (0x0000-0x7FFF).
func (c *Cartridge) ReadROM(address uint16) uint8 {
	var bankIndex int
	var offset int
	if address < 0x4000 {
		bankIndex = c.rom0Bank
		offset = int(address)
	} else {
		bankIndex = c.romXBank
		offset = int(address) - 0x4000
	}
	physAddr := bankIndex*0x4000 + offset
	if physAddr < 0 || physAddr >= len(c.rom) {
		return 0xFF
	}
	return c.rom[physAddr]
}

// HandleControlWrite decodes a write into 0x0000-0x7FFF, updating the
// packed latches for the active MBC kind, then recomputes mappings.
func (c *Cartridge) HandleControlWrite(address uint16, value uint8) {
	switch c.Header.Kind {
	case KindNone:
		// no control surface, ROM-only cartridges ignore writes
	case KindMBC1, KindMBC1Multicart:
		c.writeMBC1(address, value)
	case KindMBC2:
		c.writeMBC2(address, value)
	case KindMBC3:
		c.writeMBC3(address, value)
	case KindMBC5:
		c.writeMBC5(address, value)
	case KindMBC7:
		c.writeMBC7(address, value)
	case KindHuC1:
		c.writeHuC1(address, value)
	case KindHuC3:
		c.writeHuC3(address, value)
	case KindCamera:
		c.writeCamera(address, value)
	}
	c.refreshMappings()
}

// refreshMappings recomputes {rom0Bank, romXBank, ramBankNo} from scratch
// from the packed latches. Always masked by rom_size-1 (spec.md 4.2 "Data
// Model" invariant), never stale across save/load.
func (c *Cartridge) refreshMappings() {
	switch c.Header.Kind {
	case KindMBC1, KindMBC1Multicart:
		c.refreshMBC1()
	case KindMBC2:
		low := c.bankLow & 0x0F
		if low == 0 {
			low = 1
		}
		c.rom0Bank = 0
		c.romXBank = int(low) & c.romMask
		c.ramBankNo = 0
	case KindMBC3:
		low := c.bankLow & 0x7F
		if low == 0 {
			low = 1
		}
		c.rom0Bank = 0
		c.romXBank = int(low) & c.romMask
		c.ramBankNo = int(c.ramBank)
	case KindMBC5:
		c.rom0Bank = 0
		c.romXBank = int(c.romBank9) & c.romMask
		c.ramBankNo = int(c.ramBank & 0x0F)
	case KindMBC7:
		c.rom0Bank = 0
		c.romXBank = int(c.bankLow) & c.romMask
		c.ramBankNo = 0
	case KindHuC1, KindHuC3:
		low := c.bankLow & 0x3F
		if low == 0 {
			low = 1
		}
		c.rom0Bank = 0
		c.romXBank = int(low) & c.romMask
		c.ramBankNo = int(c.ramBank & 0x03)
	case KindCamera:
		low := c.bankLow & 0x3F
		if low == 0 {
			low = 1
		}
		c.rom0Bank = 0
		c.romXBank = int(low) & c.romMask
		c.ramBankNo = int(c.ramBank)
	default:
		c.rom0Bank = 0
		c.romXBank = 1 & c.romMask
	}
}

// sramWindowOffset returns the byte offset of addr (0xA000-0xBFFF) within
// the currently mapped SRAM bank.
func (c *Cartridge) sramWindowOffset(address uint16) int {
	bankSize := 0x2000
	off := c.ramBankNo*bankSize + int(address-0xA000)
	return off
}

// ReadSRAM reads the 0xA000-0xBFFF window, dispatching to RTC/HuC3/camera
// pseudo-banks where the active MBC maps them there.
func (c *Cartridge) ReadSRAM(address uint16) uint8 {
	switch c.Header.Kind {
	case KindMBC3:
		if c.ramBankNo >= 0x08 && c.ramBankNo <= 0x0C {
			return c.rtc.ReadLatched(c.ramBankNo)
		}
	case KindHuC3:
		return c.readHuC3SRAM(address)
	case KindCamera:
		if c.ramBankNo == 0 && address >= 0xA000 && address < 0xA000+uint16(len(c.cameraRegs)) {
			return c.readCameraRegister(address - 0xA000)
		}
	}

	if !c.sramEnabled {
		return 0xFF
	}
	off := c.sramWindowOffset(address)
	if off < 0 || off >= len(c.sram) {
		return 0xFF
	}
	return c.sram[off]
}

// WriteSRAM writes the 0xA000-0xBFFF window. Writes while disabled are
// discarded (spec.md 4.2 "Failure modes").
func (c *Cartridge) WriteSRAM(address uint16, value uint8) {
	switch c.Header.Kind {
	case KindMBC3:
		if c.ramBankNo >= 0x08 && c.ramBankNo <= 0x0C {
			// RTC registers are read-only through this window; the DS1994
			// style chip only accepts writes through the latch protocol.
			return
		}
	case KindHuC3:
		c.writeHuC3SRAM(address, value)
		return
	case KindCamera:
		if c.ramBankNo == 0 && address >= 0xA000 && address < 0xA000+uint16(len(c.cameraRegs)) {
			c.writeCameraRegister(address-0xA000, value)
			return
		}
	}

	if !c.sramEnabled {
		c.log.Debug("sram write while disabled, discarded", "addr", address)
		return
	}
	off := c.sramWindowOffset(address)
	if off < 0 || off >= len(c.sram) {
		return
	}
	c.sram[off] = value
}

// Battery reports whether this cartridge's SRAM/RTC should be persisted.
func (c *Cartridge) Battery() bool { return c.Header.HasBattery }

// SRAM exposes the raw backing buffer, for battery-save serialization and
// GetDirectAccess(CartRAM).
func (c *Cartridge) SRAM() []byte { return c.sram }

// ROM exposes the raw backing buffer for GetDirectAccess(ROM).
func (c *Cartridge) ROM() []byte { return c.rom }

// RTC exposes the real-time-clock state for battery-tail serialization.
func (c *Cartridge) RTCState() *RTC { return &c.rtc }
