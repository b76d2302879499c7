package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadBatteryRoundTripsPlainSRAM(t *testing.T) {
	h := Header{Kind: KindMBC1, ROMBanks: 2, RAMSize: 0x2000}
	c := New(h, romOfBanks(2), nil)
	c.HandleControlWrite(0x0000, 0x0A)
	c.WriteSRAM(0xA000, 0x99)

	saved := c.SaveBattery()
	assert.Len(t, saved, 0x2000, "no RTC tail when the header carries no clock")

	c2 := New(h, romOfBanks(2), nil)
	require.NoError(t, c2.LoadBattery(saved))
	c2.HandleControlWrite(0x0000, 0x0A)
	assert.Equal(t, byte(0x99), c2.ReadSRAM(0xA000))
}

func TestSaveLoadBatteryRoundTripsBGBRTCTail(t *testing.T) {
	h := Header{Kind: KindMBC3, ROMBanks: 2, RAMSize: 0x2000, HasRTC: true}
	c := New(h, romOfBanks(2), nil)
	c.RTCState().Tick(1000)
	c.RTCState().Tick(1000 + 3725) // 1h 2m 5s
	c.RTCState().Latch(1)

	saved := c.SaveBattery()
	assert.Len(t, saved, 0x2000+bgbTailSize)

	c2 := New(h, romOfBanks(2), nil)
	require.NoError(t, c2.LoadBattery(saved))
	assert.Equal(t, uint8(5), c2.RTCState().ReadLatched(0x08))
	assert.Equal(t, uint8(2), c2.RTCState().ReadLatched(0x09))
	assert.Equal(t, uint8(1), c2.RTCState().ReadLatched(0x0A))
}

func TestLoadBatteryAcceptsVBATail(t *testing.T) {
	h := Header{Kind: KindMBC3, ROMBanks: 2, RAMSize: 0x100, HasRTC: true}
	c := New(h, romOfBanks(2), nil)

	data := make([]byte, 0x100+vbaTailSize)
	data[0x100] = 42 // seconds, little-endian uint32 low byte

	require.NoError(t, c.LoadBattery(data))
	assert.Equal(t, uint8(42), c.RTCState().ReadLatched(0x08))
}

func TestLoadBatteryTruncatedDataStillRestoresPartialSRAM(t *testing.T) {
	h := Header{Kind: KindMBC1, ROMBanks: 2, RAMSize: 0x100}
	c := New(h, romOfBanks(2), nil)

	short := []byte{0xAA, 0xBB}
	require.NoError(t, c.LoadBattery(short))
	assert.Equal(t, byte(0xAA), c.SRAM()[0])
	assert.Equal(t, byte(0xBB), c.SRAM()[1])
	assert.Equal(t, byte(0), c.SRAM()[2])
}
