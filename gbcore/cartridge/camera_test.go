package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCameraRegisterZeroBusyBitOnly(t *testing.T) {
	h := Header{Kind: KindCamera, ROMBanks: 2, RAMSize: 0, HasCamera: true}
	c := New(h, romOfBanks(2), nil)
	c.HandleControlWrite(0x0000, 0x0A) // enable sram window

	c.cameraRegs[0] = 0xFE
	assert.Equal(t, uint8(0), c.ReadSRAM(0xA000), "only bit 0 of register 0 is exposed")

	c.cameraRegs[0] = 0xFF
	assert.Equal(t, uint8(1), c.ReadSRAM(0xA000))
}

func TestCameraWriteStartBitTriggersCaptureAndClearsBusy(t *testing.T) {
	h := Header{Kind: KindCamera, ROMBanks: 2, RAMSize: 0, HasCamera: true}
	c := New(h, romOfBanks(2), nil)
	c.HandleControlWrite(0x0000, 0x0A)

	var requested int
	c.CameraSource = func(x, y int) byte {
		requested++
		return byte((x + y) & 0xFF)
	}

	c.WriteSRAM(0xA000, 0x01) // start capture
	assert.Equal(t, cameraWidth*cameraHeight, requested)
	assert.Equal(t, uint8(0), c.ReadSRAM(0xA000), "busy bit clears once the synchronous capture completes")
	assert.Equal(t, byte(5), c.CaptureImage()[2*cameraWidth+3], "pixel (3,2) -> x+y=5")
}

func TestCameraRegisterWriteOutOfRangeIsNoOp(t *testing.T) {
	h := Header{Kind: KindCamera, ROMBanks: 2, RAMSize: 0, HasCamera: true}
	c := New(h, romOfBanks(2), nil)
	c.HandleControlWrite(0x0000, 0x0A)

	c.WriteSRAM(0xA000+uint16(cameraRegisterCount)+5, 0x42)
	assert.Equal(t, uint8(0xFF), c.ReadSRAM(0xA000+uint16(cameraRegisterCount)+5),
		"address beyond the register block falls through to plain SRAM, which is empty/disabled here")
}

func TestCameraCaptureNoOpWithoutSource(t *testing.T) {
	h := Header{Kind: KindCamera, ROMBanks: 2, RAMSize: 0, HasCamera: true}
	c := New(h, romOfBanks(2), nil)
	c.HandleControlWrite(0x0000, 0x0A)

	assert.NotPanics(t, func() {
		c.WriteSRAM(0xA000, 0x01)
	})
	assert.Equal(t, uint8(0), c.ReadSRAM(0xA000))
}
