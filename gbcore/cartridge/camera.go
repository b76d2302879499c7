package cartridge

// Pocket Camera support: 54 control registers mapped into the SRAM window
// starting at 0xA000, plus a 128x112 capture plane the host fills via
// CameraSource (spec.md 4.2, 6 "camera_get_pixel / camera_request_update").
const (
	cameraRegisterCount = 0x36
	cameraWidth         = 128
	cameraHeight        = 112
)

func (c *Cartridge) writeCamera(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x3F
		if bank == 0 {
			bank = 1
		}
		c.bankLow = bank
	}
}

func (c *Cartridge) readCameraRegister(index uint16) uint8 {
	if index == 0 {
		// register 0: bit 0 is the "capture in progress" busy flag.
		return c.cameraRegs[0] & 0x01
	}
	if int(index) >= len(c.cameraRegs) {
		return 0xFF
	}
	return c.cameraRegs[index]
}

func (c *Cartridge) writeCameraRegister(index uint16, value uint8) {
	if int(index) >= len(c.cameraRegs) {
		return
	}
	c.cameraRegs[index] = value
	if index == 0 && value&0x01 != 0 {
		c.captureFrame()
		// capture completes instantly in this model; the core has no
		// separate camera timing sub-scheduler per spec.md 1's scope.
		c.cameraRegs[0] &^= 0x01
	}
}

// captureFrame fills the internal capture plane from the host-provided
// pixel source, applying no processing (edge detection / dithering matrix
// support is left to the host per spec.md 1's external-collaborator scope).
func (c *Cartridge) captureFrame() {
	if c.CameraSource == nil {
		return
	}
	for y := 0; y < cameraHeight; y++ {
		for x := 0; x < cameraWidth; x++ {
			c.cameraCapture[y*cameraWidth+x] = c.CameraSource(x, y)
		}
	}
}

// CaptureImage exposes the last-captured frame, mapped by some titles
// through the SRAM window above the register block.
func (c *Cartridge) CaptureImage() []byte { return c.cameraCapture[:] }
