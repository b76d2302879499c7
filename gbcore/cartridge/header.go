package cartridge

import (
	"strings"
	"unicode"
)

// Header field offsets within the cartridge ROM, per the Game Boy boot
// sequence's header checksum pass at 0x0100-0x014F.
const (
	titleAddress            = 0x134
	titleLength             = 16
	manufacturerCodeAddress = 0x13F
	cgbFlagAddress          = 0x143
	newLicenseCodeAddress   = 0x144
	sgbFlagAddress          = 0x146
	cartridgeTypeAddress    = 0x147
	romSizeAddress          = 0x148
	ramSizeAddress          = 0x149
	destinationCodeAddress  = 0x14A
	oldLicenseCodeAddress   = 0x14B
	versionNumberAddress    = 0x14C
	headerChecksumAddress   = 0x14D
	globalChecksumAddress   = 0x14E
)

// Kind tags the MBC chip (or absence thereof) a cartridge header selects.
// One variant per physical chip, matching spec.md 4.2/9's "sum type, not an
// inheritance tree" guidance.
type Kind int

const (
	KindNone Kind = iota
	KindMBC1
	KindMBC1Multicart
	KindMBC2
	KindMBC3
	KindMBC5
	KindMBC7
	KindHuC1
	KindHuC3
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ROM-only"
	case KindMBC1:
		return "MBC1"
	case KindMBC1Multicart:
		return "MBC1M"
	case KindMBC2:
		return "MBC2"
	case KindMBC3:
		return "MBC3"
	case KindMBC5:
		return "MBC5"
	case KindMBC7:
		return "MBC7"
	case KindHuC1:
		return "HuC1"
	case KindHuC3:
		return "HuC3"
	case KindCamera:
		return "Camera"
	default:
		return "unknown"
	}
}

// Header is the parsed cartridge metadata used to construct an MBC and its
// backing SRAM/RTC.
type Header struct {
	Title       string
	Kind        Kind
	HasBattery  bool
	HasRTC      bool
	HasRumble   bool
	HasCamera   bool
	HasIR       bool
	CGBFlag     byte
	ROMBanks    int // number of 16KiB ROM banks
	RAMSize     int // SRAM size in bytes
	HeaderCksum byte
	GlobalCksum uint16
}

// cartridgeTypeTable maps the byte at 0x147 to the chip(s) it selects. Built
// from original_source/Core/hardware.h's cartridge-type enumeration.
type typeEntry struct {
	kind                       Kind
	battery, rtc, rumble       bool
}

var cartridgeTypeTable = map[byte]typeEntry{
	0x00: {KindNone, false, false, false},
	0x01: {KindMBC1, false, false, false},
	0x02: {KindMBC1, false, false, false},
	0x03: {KindMBC1, true, false, false},
	0x05: {KindMBC2, false, false, false},
	0x06: {KindMBC2, true, false, false},
	0x08: {KindNone, false, false, false},
	0x09: {KindNone, true, false, false},
	0x0B: {KindMBC1Multicart, false, false, false}, // MMM01, treated as multicart-ish
	0x0F: {KindMBC3, true, true, false},
	0x10: {KindMBC3, true, true, false},
	0x11: {KindMBC3, false, false, false},
	0x12: {KindMBC3, false, false, false},
	0x13: {KindMBC3, true, false, false},
	0x19: {KindMBC5, false, false, false},
	0x1A: {KindMBC5, true, false, false},
	0x1B: {KindMBC5, true, false, false},
	0x1C: {KindMBC5, false, false, true},
	0x1D: {KindMBC5, false, false, true},
	0x1E: {KindMBC5, true, false, true},
	0x20: {KindMBC7, true, false, false},
	0xFC: {KindCamera, false, false, false},
	0xFE: {KindHuC3, false, false, false},
	0xFF: {KindHuC1, true, false, false},
}

// ParseHeader reads the cartridge header out of the raw ROM image. Unmapped
// MBC tags load as KindNone (ROM-only) after logging, per spec.md 4.2
// "Failure modes".
func ParseHeader(rom []byte, log func(msg string, args ...any)) Header {
	h := Header{}
	if len(rom) < 0x150 {
		if log != nil {
			log("cartridge header truncated, treating as ROM-only", "len", len(rom))
		}
		h.Kind = KindNone
		h.ROMBanks = 2
		return h
	}

	h.Title = cleanTitle(rom[titleAddress : titleAddress+titleLength])
	h.CGBFlag = rom[cgbFlagAddress]
	h.HeaderCksum = rom[headerChecksumAddress]
	h.GlobalCksum = uint16(rom[globalChecksumAddress])<<8 | uint16(rom[globalChecksumAddress+1])

	entry, ok := cartridgeTypeTable[rom[cartridgeTypeAddress]]
	if !ok {
		if log != nil {
			log("unmapped cartridge type, loading as ROM-only", "type", rom[cartridgeTypeAddress])
		}
		entry = typeEntry{KindNone, false, false, false}
	}
	h.Kind = entry.kind
	h.HasBattery = entry.battery
	h.HasRTC = entry.rtc
	h.HasRumble = entry.rumble
	h.HasCamera = entry.kind == KindCamera
	h.HasIR = entry.kind == KindHuC3

	h.ROMBanks = romBanksFromHeader(rom[romSizeAddress])
	h.RAMSize = ramSizeFromHeader(rom[ramSizeAddress], entry.kind)

	return h
}

func romBanksFromHeader(code byte) int {
	if code <= 0x08 {
		return 2 << code
	}
	// 0x52/0x53/0x54 (1.1MiB/1.2MiB/1.5MiB) appear in some unlicensed
	// dumps; approximate with the next power-of-two bank count.
	switch code {
	case 0x52, 0x53, 0x54:
		return 128 // 72/80/96 banks round up to 128
	}
	return 2
}

func ramSizeFromHeader(code byte, kind Kind) int {
	if kind == KindMBC2 {
		return 512 // built-in 4-bit x 512 nibbles
	}
	switch code {
	case 0x00:
		return 0
	case 0x01:
		return 2 * 1024
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			continue
		case unicode.IsPrint(r):
			runes = append(runes, r)
		}
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
