package cartridge

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func isxHeader() []byte {
	var buf bytes.Buffer
	buf.WriteString(isxMagic)
	buf.WriteByte(0x00)          // version
	buf.Write(make([]byte, 4)) // reserved
	return buf.Bytes()
}

func TestLoadISXRejectsBadMagic(t *testing.T) {
	_, err := LoadISX([]byte("NOPE1234567890"))
	assert.ErrorIs(t, err, ErrMalformedISX)
}

func TestLoadISXBinaryBlockDepositsBytesAtBankOffset(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(isxHeader())
	buf.WriteByte(byte(isxBinaryBlock))
	buf.WriteByte(0x02)                  // bank 2
	buf.Write(u16(0x4000))               // offset
	buf.Write(u16(4))                    // length
	buf.Write([]byte{0x11, 0x22, 0x33, 0x44})
	buf.WriteByte(byte(isxEOF))

	rom, err := LoadISX(buf.Bytes())
	require.NoError(t, err)

	physOffset := physicalOffset(2, 0x4000)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, rom[physOffset:physOffset+4])
}

func TestLoadISXBankZeroIsFixedRegion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(isxHeader())
	buf.WriteByte(byte(isxBinaryBlock))
	buf.WriteByte(0x00)    // bank 0
	buf.Write(u16(0x0100)) // offset
	buf.Write(u16(2))
	buf.Write([]byte{0xAA, 0xBB})
	buf.WriteByte(byte(isxEOF))

	rom, err := LoadISX(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, rom[0x0100:0x0102])
}

func TestLoadISXGrowsROMForHighBanks(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(isxHeader())
	buf.WriteByte(byte(isxExtendedBinaryBlock))
	buf.Write(u16(10)) // bank 10, beyond the default 0x8000 allocation
	buf.Write(u16(0x4000))
	buf.Write(u16(1))
	buf.WriteByte(0x77)
	buf.WriteByte(byte(isxEOF))

	rom, err := LoadISX(buf.Bytes())
	require.NoError(t, err)

	physOffset := physicalOffset(10, 0x4000)
	require.Greater(t, len(rom), physOffset)
	assert.Equal(t, byte(0x77), rom[physOffset])
	assert.Equal(t, 0, len(rom)%0x8000, "padded to a multiple of one ROM bank")
}

func TestLoadISXSkipsSymbolBlocks(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(isxHeader())
	buf.WriteByte(byte(isxSymbolBlock))
	buf.Write(u16(1)) // one symbol
	buf.WriteByte(0x01) // bank (non-extended -> 1 byte)
	buf.Write(u16(0x4000))
	name := "label"
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.WriteByte(byte(isxBinaryBlock))
	buf.WriteByte(0x00)
	buf.Write(u16(0x0000))
	buf.Write(u16(1))
	buf.WriteByte(0x5A)
	buf.WriteByte(byte(isxEOF))

	rom, err := LoadISX(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, byte(0x5A), rom[0])
}

func TestLoadISXTruncatedBlockErrors(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(isxHeader())
	buf.WriteByte(byte(isxBinaryBlock))
	buf.WriteByte(0x00)
	buf.Write(u16(0x0000))
	buf.Write(u16(10)) // claims 10 bytes, stream ends early
	buf.WriteByte(0x01)

	_, err := LoadISX(buf.Bytes())
	assert.ErrorIs(t, err, ErrMalformedISX)
}

func TestLoadISXUnknownRecordTypeErrors(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(isxHeader())
	buf.WriteByte(0x7F)

	_, err := LoadISX(buf.Bytes())
	assert.ErrorIs(t, err, ErrMalformedISX)
}
