package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDMABus struct {
	mem [0x10000]byte
	oam [160]byte
}

func (f *fakeDMABus) ReadByte(address uint16) uint8    { return f.mem[address] }
func (f *fakeDMABus) WriteOAM(index uint8, value uint8) { f.oam[index] = value }

func TestOAMDMATransfersAllBytes(t *testing.T) {
	bus := &fakeDMABus{}
	for i := 0; i < 160; i++ {
		bus.mem[0xC000+i] = byte(i + 1)
	}
	o := New(bus)
	o.Start(0xC0)
	assert.True(t, o.Active())

	o.Tick(7 + 4) // warm-up, then the first byte's transfer window
	assert.Equal(t, uint8(1), bus.oam[0])

	o.Tick(4)
	assert.Equal(t, uint8(2), bus.oam[1])

	o.Tick(4 * 158) // remaining 158 bytes
	assert.False(t, o.Active())
	assert.Equal(t, uint8(160), bus.oam[159])
}

func TestOAMDMANoByteDuringWarmup(t *testing.T) {
	bus := &fakeDMABus{}
	bus.mem[0xC000] = 0xAA
	o := New(bus)
	o.Start(0xC0)
	o.Tick(6)
	assert.Equal(t, uint8(0), bus.oam[0], "no byte copied before warm-up elapses")
}

// TestOAMDMARestartDuringWarmup covers the second-arm restart latch: a
// Start() issued while one transfer is still warming up takes over once
// warm-up completes, rather than starting a second independent transfer.
func TestOAMDMARestartDuringWarmup(t *testing.T) {
	bus := &fakeDMABus{}
	bus.mem[0xC000] = 0xAA
	bus.mem[0xD000] = 0xBB
	o := New(bus)
	o.Start(0xC0)
	o.Tick(3)
	o.Start(0xD0)
	o.Tick(4) // completes the 7-cycle warm-up, latching the restart source
	o.Tick(4) // first byte's transfer window
	assert.Equal(t, uint8(0xBB), bus.oam[0])
}

// TestOAMDMAExxxGlitch covers the source-in-Exxx-range glitch: the first
// copied byte is the CPU's last fetched opcode byte instead of the real
// source byte.
func TestOAMDMAExxxGlitch(t *testing.T) {
	bus := &fakeDMABus{}
	bus.mem[0xE001] = 0x55
	o := New(bus)
	o.NoteOpcodeFetch(0x77)
	o.Start(0xE0)
	o.Tick(11)
	assert.Equal(t, uint8(0x77), bus.oam[0])

	o.Tick(4)
	assert.Equal(t, uint8(0x55), bus.oam[1], "second byte reads the real source")
}

func TestOAMDMASourceAddressAliasing(t *testing.T) {
	bus := &fakeDMABus{}
	o := New(bus)
	o.Start(0xC0)
	assert.Equal(t, uint16(0xC000), o.SourceAddress())
	o.Tick(7 + 4)
	assert.Equal(t, uint16(0xC001), o.SourceAddress())
}

type fakeHBus struct {
	mem  [0x10000]byte
	vram [0x2000]byte
}

func (f *fakeHBus) ReadByte(address uint16) uint8 { return f.mem[address] }
func (f *fakeHBus) WriteVRAM(address uint16, value uint8) {
	f.vram[address-0x8000] = value
}

func TestHDMAGeneralTransferRunsSynchronously(t *testing.T) {
	bus := &fakeHBus{}
	for i := 0; i < 32; i++ {
		bus.mem[0xC000+i] = byte(0x10 + i)
	}
	h := NewHDMA(bus)
	h.SetSourceHigh(0xC0)
	h.SetSourceLow(0x00)
	h.SetDestHigh(0x80)
	h.SetDestLow(0x00)

	h.WriteHDMA5(0x01) // general mode, (1+1)*16 = 32 bytes
	assert.False(t, h.Active(), "general transfers complete before WriteHDMA5 returns")
	assert.Equal(t, uint8(0xFF), h.ReadHDMA5())
	assert.Equal(t, byte(0x10), bus.vram[0])
	assert.Equal(t, byte(0x2F), bus.vram[31])
}

func TestHDMAHBlankTransfersOneBlockPerHBlank(t *testing.T) {
	bus := &fakeHBus{}
	for i := 0; i < 32; i++ {
		bus.mem[0xD000+i] = byte(0x40 + i)
	}
	h := NewHDMA(bus)
	h.SetSourceHigh(0xD0)
	h.SetSourceLow(0x00)
	h.SetDestHigh(0x90)
	h.SetDestLow(0x00)

	h.WriteHDMA5(0x81) // hblank mode, 2 blocks of 16 bytes
	assert.True(t, h.Active())
	assert.Equal(t, uint8(1), h.ReadHDMA5()&0x7F, "length field decrements only after a block copies")

	h.OnHBlankEnter()
	assert.Equal(t, byte(0x40), bus.vram[0x1000])
	assert.Equal(t, byte(0x4F), bus.vram[0x100F])
	assert.Equal(t, byte(0), bus.vram[0x1010], "second block not yet copied")
	assert.Equal(t, 32, h.BlockCyclesPending())
	assert.Equal(t, 0, h.BlockCyclesPending(), "clears on read")
	assert.True(t, h.Active())

	h.OnHBlankEnter()
	assert.Equal(t, byte(0x50), bus.vram[0x1010])
	assert.False(t, h.Active(), "last block completes the transfer")
}

func TestHDMAHBlankCancelledByClearingBit7(t *testing.T) {
	h := NewHDMA(&fakeHBus{})
	h.WriteHDMA5(0x80) // hblank mode, 1 block
	assert.True(t, h.Active())

	h.WriteHDMA5(0x00) // bit 7 clear while hblank-active: cancel
	assert.False(t, h.Active())
}

func TestHDMADisableForcedByLCDOff(t *testing.T) {
	h := NewHDMA(&fakeHBus{})
	h.WriteHDMA5(0x80)
	assert.True(t, h.Active())

	h.Disable()
	assert.False(t, h.Active())
}
