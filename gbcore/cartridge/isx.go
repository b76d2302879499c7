package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedISX is the sentinel bad-input error for a truncated or
// unrecognised ISX stream (spec.md 7 "bad input").
var ErrMalformedISX = errors.New("cartridge: malformed ISX stream")

const isxMagic = "ISX "

// isxRecordType tags the five record shapes the ISX format defines
// (spec.md 6 "Cartridge loader"): binary block, extended binary block,
// symbol, extended symbol, EOF.
type isxRecordType byte

const (
	isxBinaryBlock         isxRecordType = 0x01
	isxSymbolBlock         isxRecordType = 0x02
	isxExtendedBinaryBlock isxRecordType = 0x03
	isxExtendedSymbolBlock isxRecordType = 0x04
	isxEOF                 isxRecordType = 0x14
)

// LoadISX parses an ISX-format stream and deposits its binary blocks into a
// freshly allocated ROM image sized to cover every {bank, offset} the
// stream touches, padded to a power-of-two size with 0xFF per spec.md 6.
func LoadISX(data []byte) ([]byte, error) {
	if len(data) < 4+1+4 || string(data[:4]) != isxMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedISX)
	}

	pos := 4
	pos++ // version byte, ignored
	pos += 4 // four reserved header bytes, skipped
	if pos > len(data) {
		return nil, fmt.Errorf("%w: header truncated", ErrMalformedISX)
	}

	rom := make([]byte, 0x8000)
	for i := range rom {
		rom[i] = 0xFF
	}

	for pos < len(data) {
		recType := isxRecordType(data[pos])
		pos++
		switch recType {
		case isxEOF:
			return padROM(rom), nil
		case isxBinaryBlock, isxExtendedBinaryBlock:
			var bank uint16
			var offset uint16
			if recType == isxExtendedBinaryBlock {
				if pos+2 > len(data) {
					return nil, fmt.Errorf("%w: truncated extended bank", ErrMalformedISX)
				}
				bank = binary.LittleEndian.Uint16(data[pos:])
				pos += 2
			} else {
				if pos+1 > len(data) {
					return nil, fmt.Errorf("%w: truncated bank", ErrMalformedISX)
				}
				bank = uint16(data[pos])
				pos++
			}
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: truncated offset", ErrMalformedISX)
			}
			offset = binary.LittleEndian.Uint16(data[pos:])
			pos += 2
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: truncated length", ErrMalformedISX)
			}
			length := binary.LittleEndian.Uint16(data[pos:])
			pos += 2
			if pos+int(length) > len(data) {
				return nil, fmt.Errorf("%w: block overruns stream", ErrMalformedISX)
			}
			block := data[pos : pos+int(length)]
			pos += int(length)

			physOffset := physicalOffset(bank, offset)
			needed := physOffset + len(block)
			if needed > len(rom) {
				grown := make([]byte, nextPow2(needed))
				for i := range grown {
					grown[i] = 0xFF
				}
				copy(grown, rom)
				rom = grown
			}
			copy(rom[physOffset:], block)
		case isxSymbolBlock, isxExtendedSymbolBlock:
			// Symbol records only matter to an external debugger/disassembler,
			// out of scope for the core (spec.md 1). Skip the record body: a
			// 2-byte count, then per symbol a bank, a 2-byte offset and a
			// length-prefixed name.
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: truncated symbol count", ErrMalformedISX)
			}
			count := int(binary.LittleEndian.Uint16(data[pos:]))
			pos += 2
			for i := 0; i < count; i++ {
				if recType == isxExtendedSymbolBlock {
					pos += 2 // bank
				} else {
					pos += 1
				}
				pos += 2 // offset
				if pos >= len(data) {
					return nil, fmt.Errorf("%w: truncated symbol name", ErrMalformedISX)
				}
				nameLen := int(data[pos])
				pos++
				pos += nameLen
				if pos > len(data) {
					return nil, fmt.Errorf("%w: symbol name overruns stream", ErrMalformedISX)
				}
			}
		default:
			return nil, fmt.Errorf("%w: unknown record type 0x%02X", ErrMalformedISX, recType)
		}
	}

	return padROM(rom), nil
}

// physicalOffset maps an ISX {bank, offset} pair onto a flat ROM image:
// bank 0 is the fixed 0x0000-0x3FFF region, every other bank is 0x4000
// bytes starting at bank*0x4000.
func physicalOffset(bank uint16, offset uint16) int {
	if bank == 0 {
		return int(offset)
	}
	return int(bank)*0x4000 + (int(offset) - 0x4000)
}

func padROM(rom []byte) []byte {
	size := nextPow2(len(rom))
	if size == len(rom) {
		return rom
	}
	padded := make([]byte, size)
	copy(padded, rom)
	for i := len(rom); i < size; i++ {
		padded[i] = 0xFF
	}
	return padded
}

func nextPow2(n int) int {
	size := 0x8000
	for size < n {
		size <<= 1
	}
	return size
}
