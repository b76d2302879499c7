package cartridge

// HuC3 support: the alarm clock and IR command protocol live behind the
// same 0xA000-0xBFFF SRAM window, selected by the top nibble of the value
// previously written there, per spec.md 4.2/9. The protocol is only
// partially reverse-engineered in the wild; unknown command bytes are
// logged and treated as no-ops, matching spec.md 9's explicit guidance.
const (
	huc3ModeRAM      = 0x00
	huc3ModeCommand  = 0x10
	huc3ModeIRReady  = 0x20
	huc3ModeIRStatus = 0x30
	huc3ModeUnknown1 = 0x40
	huc3ModeRTCGet   = 0x50
	huc3ModeRTCSet   = 0x60
	huc3ModeUnknown7 = 0x70
)

// writeHuC3 decodes HuC3's control writes: SRAM enable, a 6-bit ROM bank
// and a 2-bit RAM bank, the same latch layout refreshMappings reads for HuC1.
func (c *Cartridge) writeHuC3(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		c.bankLow = value & 0x3F
	case address <= 0x5FFF:
		c.ramBank = value & 0x03
	}
}

func (c *Cartridge) readHuC3SRAM(address uint16) uint8 {
	switch c.huc3Reg & 0xF0 {
	case huc3ModeCommand:
		return c.huc3Value
	case huc3ModeIRStatus:
		return 0x01 // no IR input pending
	case huc3ModeRTCGet:
		return c.huc3Value
	default:
		if !c.sramEnabled {
			return 0xFF
		}
		off := c.sramWindowOffset(address)
		if off < 0 || off >= len(c.sram) {
			return 0xFF
		}
		return c.sram[off]
	}
}

func (c *Cartridge) writeHuC3SRAM(address uint16, value uint8) {
	mode := value & 0xF0
	switch mode {
	case huc3ModeRAM:
		if !c.sramEnabled {
			return
		}
		off := c.sramWindowOffset(address)
		if off >= 0 && off < len(c.sram) {
			c.sram[off] = value
		}
	case huc3ModeCommand:
		c.huc3Command = value & 0x0F
		c.huc3Value = c.runHuC3Command(c.huc3Command)
	case huc3ModeRTCGet, huc3ModeRTCSet:
		c.huc3Value = value
	default:
		c.log.Debug("huc3: unhandled command byte, treated as no-op", "value", value)
	}
	c.huc3Reg = value
}

// runHuC3Command executes the tiny three-register command protocol. Known
// commands return a plausible status byte; everything else logs at Debug
// and returns 0x01 (idle) per spec.md 9.
func (c *Cartridge) runHuC3Command(cmd uint8) uint8 {
	switch cmd {
	case 0x0, 0x1:
		return 0x01
	default:
		c.log.Debug("huc3: unknown alarm/IR subcommand", "cmd", cmd)
		return 0x01
	}
}
