package cartridge

// writeMBC1 decodes the four MBC1 control regions (spec.md 4.2): RAM
// enable, bank-low (5 bits, zero-as-one), bank-high (2 bits), and mode.
// In mode 1 the bank-high bits additionally shift ROM0 and the SRAM bank
// (multicart and large-ROM titles rely on this).
func (c *Cartridge) writeMBC1(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x1F
		if c.Header.Kind == KindMBC1Multicart {
			bank &= 0x0F
		}
		if bank == 0 {
			bank = 1
		}
		c.bankLow = bank
	case address <= 0x5FFF:
		c.bankHigh = value & 0x03
	case address <= 0x7FFF:
		c.mode = value & 0x01
	}
}

func (c *Cartridge) refreshMBC1() {
	low := c.bankLow
	if low == 0 {
		low = 1
	}
	if c.Header.Kind == KindMBC1Multicart {
		romX := (int(c.bankHigh)<<4 | int(low&0x0F)) & c.romMask
		c.romXBank = romX
		if c.mode == 1 {
			c.rom0Bank = (int(c.bankHigh) << 4) & c.romMask
			c.ramBankNo = 0
		} else {
			c.rom0Bank = 0
			c.ramBankNo = 0
		}
		return
	}

	romX := (int(c.bankHigh)<<5 | int(low)) & c.romMask
	c.romXBank = romX
	if c.mode == 1 {
		c.rom0Bank = (int(c.bankHigh) << 5) & c.romMask
		c.ramBankNo = int(c.bankHigh)
	} else {
		c.rom0Bank = 0
		c.ramBankNo = 0
	}
}

// writeMBC2 decodes the MBC2 control surface: within the single combined
// 0x0000-0x3FFF region, the least-significant bit of the upper address byte
// selects RAM-enable vs ROM-bank writes. The built-in RAM is gated by the
// enable latch like any other SRAM; bytes are stored whole, the upper
// nibble is not forced.
func (c *Cartridge) writeMBC2(address uint16, value uint8) {
	if address > 0x3FFF {
		return
	}
	if address&0x100 == 0 {
		c.sramEnabled = value&0x0F == 0x0A
		return
	}
	bank := value & 0x0F
	if bank == 0 {
		bank = 1
	}
	c.bankLow = bank
}

// writeMBC3 adds the RTC pseudo-banks 0x08-0x0C mapped into the SRAM window and
// the RTC latch protocol: a 0->1 transition on 0x6000-0x7FFF latches live
// RTC into the readable copy (spec.md 4.2).
func (c *Cartridge) writeMBC3(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		c.bankLow = bank
	case address <= 0x5FFF:
		c.ramBank = value
	case address <= 0x7FFF:
		c.rtc.Latch(value)
	}
}

// writeMBC5 exposes nine ROM-bank bits (0x2000-0x2FFF low 8 bits, 0x3000-
// 0x3FFF bit 8) and places the rumble motor bit at RAM-bank bit 3.
func (c *Cartridge) writeMBC5(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
	case address <= 0x2FFF:
		c.romBank9 = (c.romBank9 & 0x100) | uint16(value)
	case address <= 0x3FFF:
		c.romBank9 = (c.romBank9 & 0x0FF) | (uint16(value&0x01) << 8)
	case address <= 0x5FFF:
		c.ramBank = value & 0x0F
		if c.Header.HasRumble {
			rumbleOn := value&0x08 != 0
			if rumbleOn != c.rumbleState {
				c.rumbleState = rumbleOn
				if c.RumbleFunc != nil {
					amp := 0.0
					if rumbleOn {
						amp = 1.0
					}
					c.RumbleFunc(amp)
				}
			}
			c.ramBank &= 0x07
		}
	}
}

// writeMBC7 models the accelerometer/EEPROM cartridge's bank-select region;
// the analog stick and serial EEPROM protocol are out of scope for T-cycle
// timing and are exposed as a constant-center register surface.
func (c *Cartridge) writeMBC7(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		c.bankLow = bank
	}
}

// writeHuC1 is wire-compatible with MBC1's ROM/RAM banking plus an IR LED
// output latched through the same SRAM-enable region's low nibble.
func (c *Cartridge) writeHuC1(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		c.sramEnabled = value&0x0F == 0x0A
		c.Header.HasIR = value&0x0F == 0x0E
	case address <= 0x3FFF:
		bank := value & 0x3F
		if bank == 0 {
			bank = 1
		}
		c.bankLow = bank
	case address <= 0x5FFF:
		c.ramBank = value & 0x03
	}
}
