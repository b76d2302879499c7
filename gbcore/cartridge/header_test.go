package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeROM(cartType, romSizeCode, ramSizeCode byte, title string) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[titleAddress:], title)
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = romSizeCode
	rom[ramSizeAddress] = ramSizeCode
	return rom
}

func TestParseHeaderMBC5Rumble(t *testing.T) {
	rom := makeROM(0x1C, 0x02, 0x03, "ROCKETS")
	h := ParseHeader(rom, nil)
	assert.Equal(t, KindMBC5, h.Kind)
	assert.True(t, h.HasRumble)
	assert.False(t, h.HasBattery)
	assert.Equal(t, "ROCKETS", h.Title)
	assert.Equal(t, 8, h.ROMBanks) // code 0x02 -> 2<<2 = 8
	assert.Equal(t, 32*1024, h.RAMSize)
}

func TestParseHeaderMBC2BuiltinRAMIgnoresRAMSizeByte(t *testing.T) {
	rom := makeROM(0x06, 0x00, 0xFF, "POCKET")
	h := ParseHeader(rom, nil)
	assert.Equal(t, KindMBC2, h.Kind)
	assert.True(t, h.HasBattery)
	assert.Equal(t, 512, h.RAMSize)
}

func TestParseHeaderUnmappedTypeFallsBackToROMOnly(t *testing.T) {
	var logged bool
	rom := makeROM(0x99, 0x00, 0x00, "WEIRD")
	h := ParseHeader(rom, func(msg string, args ...any) { logged = true })
	assert.Equal(t, KindNone, h.Kind)
	assert.True(t, logged)
}

func TestParseHeaderTruncatedROMTreatedAsROMOnly(t *testing.T) {
	h := ParseHeader(make([]byte, 0x10), nil)
	assert.Equal(t, KindNone, h.Kind)
	assert.Equal(t, 2, h.ROMBanks)
}

func TestCleanTitleStripsPaddingAndControlBytes(t *testing.T) {
	raw := append([]byte("ZELDA"), make([]byte, 11)...)
	assert.Equal(t, "ZELDA", cleanTitle(raw))
	assert.Equal(t, "(Untitled)", cleanTitle(make([]byte, 16)))
}
