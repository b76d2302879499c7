package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func romOfBanks(n int) []byte {
	rom := make([]byte, n*0x4000)
	for b := 0; b < n; b++ {
		for i := 0; i < 0x4000; i++ {
			rom[b*0x4000+i] = byte(b)
		}
	}
	return rom
}

func TestMBC1BankSwitching(t *testing.T) {
	h := Header{Kind: KindMBC1, ROMBanks: 8, RAMSize: 0x2000}
	c := New(h, romOfBanks(8), nil)

	assert.Equal(t, byte(0), c.ReadROM(0x0000), "rom0 fixed at bank 0")

	c.HandleControlWrite(0x2000, 0x03)
	assert.Equal(t, byte(3), c.ReadROM(0x4000))

	c.HandleControlWrite(0x2000, 0x00) // zero-as-one
	assert.Equal(t, byte(1), c.ReadROM(0x4000))
}

// TestMBC1Mode1ShiftsROM0AndSRAMBank covers spec.md 8's large-ROM/multicart
// scenario: in RAM-banking mode the bank-high latch also shifts ROM0 and
// selects the SRAM bank.
func TestMBC1Mode1ShiftsROM0AndSRAMBank(t *testing.T) {
	h := Header{Kind: KindMBC1, ROMBanks: 128, RAMSize: 4 * 0x2000}
	c := New(h, romOfBanks(128), nil)

	c.HandleControlWrite(0x6000, 0x01) // mode 1
	c.HandleControlWrite(0x4000, 0x02) // bank-high = 2

	assert.Equal(t, byte(0x40), c.ReadROM(0x0000), "rom0 shifted by bank-high<<5")
	assert.Equal(t, byte(0x41), c.ReadROM(0x4000), "romX = bank-high<<5 | bank-low(1)")

	c.HandleControlWrite(0x0000, 0x0A) // enable sram
	c.WriteSRAM(0xA000, 0x55)
	assert.Equal(t, byte(0x55), c.ReadSRAM(0xA000))

	c.HandleControlWrite(0x6000, 0x00) // back to rom-banking mode
	assert.Equal(t, byte(0), c.ReadSRAM(0xA000), "sram bank 0 selected in mode 0")
}

func TestMBC1MulticartMasksBankLowToFourBits(t *testing.T) {
	h := Header{Kind: KindMBC1Multicart, ROMBanks: 64, RAMSize: 0}
	c := New(h, romOfBanks(64), nil)

	c.HandleControlWrite(0x6000, 0x01)
	c.HandleControlWrite(0x4000, 0x02)  // bank-high
	c.HandleControlWrite(0x2000, 0xFF) // masked to 0x0F

	assert.Equal(t, byte(0x20), c.ReadROM(0x0000), "rom0 = bank-high<<4")
	assert.Equal(t, byte(0x2F), c.ReadROM(0x4000), "romX = bank-high<<4 | (bank-low&0xF)")
}

func TestMBC2RAMIsFourBitAndBuiltIn(t *testing.T) {
	h := Header{Kind: KindMBC2, ROMBanks: 4, RAMSize: 512}
	c := New(h, romOfBanks(4), nil)

	c.HandleControlWrite(0x2100, 0x03)
	assert.Equal(t, byte(3), c.ReadROM(0x4000))

	c.HandleControlWrite(0x0000, 0x0A)
	c.WriteSRAM(0xA000, 0xF5)
	assert.Equal(t, byte(0xF5), c.ReadSRAM(0xA000))
}

func TestMBC3RAMBankSwitchAndDisable(t *testing.T) {
	h := Header{Kind: KindMBC3, ROMBanks: 4, RAMSize: 4 * 0x2000, HasBattery: true}
	c := New(h, romOfBanks(4), nil)

	c.HandleControlWrite(0x0000, 0x0A)
	c.HandleControlWrite(0x4000, 0x02) // ram bank 2
	c.WriteSRAM(0xA000, 0x77)
	c.HandleControlWrite(0x4000, 0x00)
	assert.NotEqual(t, byte(0x77), c.ReadSRAM(0xA000))

	c.HandleControlWrite(0x4000, 0x02)
	assert.Equal(t, byte(0x77), c.ReadSRAM(0xA000))

	c.HandleControlWrite(0x0000, 0x00) // disable
	assert.Equal(t, byte(0xFF), c.ReadSRAM(0xA000))
}

func TestMBC3RTCPseudoBankIsReadOnly(t *testing.T) {
	h := Header{Kind: KindMBC3, ROMBanks: 4, RAMSize: 0x2000}
	c := New(h, romOfBanks(4), nil)

	c.HandleControlWrite(0x0000, 0x0A)
	c.HandleControlWrite(0x4000, 0x08) // RTC seconds pseudo-bank
	c.WriteSRAM(0xA000, 0x42)           // dropped, RTC isn't writable here
	assert.NotEqual(t, byte(0x42), c.ReadSRAM(0xA000))
}

func TestMBC5NineBitROMBank(t *testing.T) {
	h := Header{Kind: KindMBC5, ROMBanks: 512, RAMSize: 0}
	c := New(h, romOfBanks(512), nil)

	c.HandleControlWrite(0x2000, 0xFF)
	c.HandleControlWrite(0x3000, 0x01) // bit 8 set -> bank 0x1FF

	assert.Equal(t, byte(0xFF), c.ReadROM(0x4000), "bank 0x1FF (511 truncated to a byte) selected")
}

func TestMBC5RumbleBitStripsFromRAMBank(t *testing.T) {
	h := Header{Kind: KindMBC5, ROMBanks: 2, RAMSize: 4 * 0x2000, HasRumble: true}
	c := New(h, romOfBanks(2), nil)

	var amps []float64
	c.RumbleFunc = func(a float64) { amps = append(amps, a) }

	c.HandleControlWrite(0x4000, 0x0B) // ram bank 3, rumble bit (0x08) set
	assert.Equal(t, []float64{1.0}, amps)

	c.HandleControlWrite(0x0000, 0x0A)
	c.WriteSRAM(0xA000, 0x12)
	assert.Equal(t, byte(0x12), c.ReadSRAM(0xA000), "ram bank resolves to 3, rumble bit stripped")

	c.HandleControlWrite(0x4000, 0x03) // rumble bit clear
	assert.Equal(t, []float64{1.0, 0.0}, amps)
}

func TestHuC1SRAMEnableAliasesIRLatch(t *testing.T) {
	h := Header{Kind: KindHuC1, ROMBanks: 4, RAMSize: 0x2000}
	c := New(h, romOfBanks(4), nil)

	c.HandleControlWrite(0x0000, 0x0E)
	assert.True(t, c.Header.HasIR)
	assert.False(t, c.sramEnabled)

	c.HandleControlWrite(0x0000, 0x0A)
	assert.False(t, c.Header.HasIR)
	assert.True(t, c.sramEnabled)
}

func TestRomOnlyCartridgeIgnoresControlWrites(t *testing.T) {
	h := Header{Kind: KindNone, ROMBanks: 2, RAMSize: 0}
	c := New(h, romOfBanks(2), nil)
	c.HandleControlWrite(0x2000, 0x05)
	assert.Equal(t, byte(1), c.ReadROM(0x4000), "romX stays fixed at bank 1, no MBC to switch it")
}
