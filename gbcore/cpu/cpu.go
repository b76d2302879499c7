package cpu

import "github.com/pixelpocket/gbcore/addr"

// Flag is one of the 4 possible flags used in the flag register (high part of AF).
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag            = 0x40
	halfCarryFlag      = 0x20
	carryFlag          = 0x10
)

// interruptVectors maps each IF/IE bit (bit 0 is highest priority) to the
// fixed address the CPU jumps to when that interrupt is serviced.
var interruptVectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// Bus is the memory interface the CPU executes against. Read and Write are
// untimed; callers that need accurate timing go through busRead/busWrite or
// tick explicit cycles themselves, matching how DMA-source aliasing and
// other bus arbitration needs to observe the access at the instant it
// happens rather than after the fact.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
	NoteOpcodeFetch(value uint8)
}

// speedSwitcher is implemented by gbcore/bus.Bus; STOP's CGB double-speed
// switch is reached through this narrow interface rather than an import of
// gbcore/bus, so a DMG-only or test Bus can simply not implement it.
type speedSwitcher interface {
	ToggleSpeed() bool
}

// stopSpeedSwitchCycles is the fixed delay STOP charges when it triggers a
// CGB speed switch (spec.md 4.7: "STOP enters a 0x20000-cycle quiescent
// period also used for CGB speed switching").
const stopSpeedSwitchCycles = 0x20000

// CPU is the SM83 core: its own registers plus the bus it executes against.
type CPU struct {
	bus Bus

	a, b, c, d, e, h, l uint8
	f                   uint8
	sp, pc              uint16

	currentOpcode uint16

	interruptsEnabled bool
	eiPending         bool
	halted            bool
	haltBug           bool
	stopped           bool

	cycles        uint64 // lifetime total, advances with every tick
	cyclesThisStep int   // reset at the start of each Step, used to true up the declared instruction length
}

// New returns a CPU ready to execute from the post-boot-ROM entry point.
func New(bus Bus) *CPU {
	return &CPU{
		bus: bus,
		pc:  0x100,
		sp:  0xFFFE,
	}
}

// Reset restores the CPU to its power-on register state. When a boot ROM is
// installed, execution starts at 0x0000 so the overlay actually runs before
// falling through to the cartridge entry point at 0x100; without one, the
// cartridge entry point is the reset vector (spec.md 8 invariant 2).
func (c *CPU) Reset(bootROMInstalled bool) {
	*c = CPU{bus: c.bus, sp: 0xFFFE, pc: 0x100}
	if bootROMInstalled {
		c.pc = 0
	}
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) getBC() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) getDE() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) getHL() uint16 { return uint16(c.h)<<8 | uint16(c.l) }
func (c *CPU) getAF() uint16 { return uint16(c.a)<<8 | uint16(c.f&0xF0) }

func (c *CPU) setBC(value uint16) { c.b = uint8(value >> 8); c.c = uint8(value) }
func (c *CPU) setDE(value uint16) { c.d = uint8(value >> 8); c.e = uint8(value) }
func (c *CPU) setHL(value uint16) { c.h = uint8(value >> 8); c.l = uint8(value) }
func (c *CPU) setAF(value uint16) { c.a = uint8(value >> 8); c.f = uint8(value) & 0xF0 }

// tick advances the bus by the given number of T-cycles and keeps both the
// lifetime counter and the current instruction's running total up to date.
func (c *CPU) tick(cycles int) {
	c.bus.Tick(cycles)
	c.cycles += uint64(cycles)
	c.cyclesThisStep += cycles
}

// busRead performs a timed 4-cycle memory read, the cost of a single M-cycle
// bus access.
func (c *CPU) busRead(address uint16) uint8 {
	value := c.bus.Read(address)
	c.tick(4)
	return value
}

// busWrite performs a timed 4-cycle memory write.
func (c *CPU) busWrite(address uint16, value uint8) {
	c.bus.Write(address, value)
	c.tick(4)
}

func (c *CPU) readImmediate() uint8 {
	value := c.busRead(c.pc)
	c.pc++
	return value
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return uint16(high)<<8 | uint16(low)
}

// Decode peeks the byte(s) at the CPU's current PC without advancing it,
// recording the resolved opcode (CB-prefixed opcodes are folded into the
// 0xCBxx range) on currentOpcode and returning the matching handler.
func Decode(c *CPU) Opcode {
	pc := c.pc
	first := c.bus.Read(pc)
	if first == 0xCB {
		second := c.bus.Read(pc + 1)
		c.currentOpcode = 0xCB00 | uint16(second)
	} else {
		c.currentOpcode = uint16(first)
	}
	return decode(c.currentOpcode)
}

// Step executes one instruction (or services a pending interrupt, stays
// halted, or stays stopped) and returns the number of T-cycles consumed.
func (c *CPU) Step() int {
	if c.stopped {
		// STOP's ordinary (non-speed-switch) quiescent period: the CPU
		// does nothing but is woken by any requested interrupt, whether or
		// not IME is set, matching the button-wake condition real
		// hardware uses (the joypad line transition that STOP watches for
		// isn't otherwise modeled, so any IF bit asserting stands in for
		// it).
		if c.bus.Read(addr.IF)&0x1F != 0 {
			c.stopped = false
		} else {
			c.tick(4)
			return 4
		}
	}

	if c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	dispatchStart := c.cycles
	if pending := c.handleInterrupts(); pending && c.halted {
		c.halted = false
		if !c.interruptsEnabled {
			// HALT with IME=0: the CPU wakes up but does not service the
			// interrupt. If none of the enabled bits are also requested
			// right as HALT executes, the next instruction fetch is
			// duplicated (the well-known halt bug).
			c.haltBug = true
		}
	}
	dispatched := int(c.cycles - dispatchStart)

	if c.halted {
		c.tick(4)
		return 4
	}

	c.cyclesThisStep = 0

	first := c.bus.Read(c.pc)
	c.pc++
	c.bus.NoteOpcodeFetch(first)
	if first == 0xCB {
		second := c.bus.Read(c.pc)
		c.pc++
		c.bus.NoteOpcodeFetch(second)
		c.currentOpcode = 0xCB00 | uint16(second)
	} else {
		c.currentOpcode = uint16(first)
	}

	if c.haltBug {
		// The PC increment for this fetch is undone: the byte just read
		// executes again as the next opcode too.
		c.pc--
		c.haltBug = false
	}

	fn := decode(c.currentOpcode)
	declared := fn(c)

	if remainder := declared - c.cyclesThisStep; remainder > 0 {
		c.tick(remainder)
	}

	return declared + dispatched
}

// handleInterrupts reports whether any enabled interrupt is currently
// requested. If IME is set it additionally dispatches the highest-priority
// one: push PC, clear IME, clear the serviced IF bit, jump to the vector,
// and charge the fixed 20-cycle dispatch cost.
func (c *CPU) handleInterrupts() bool {
	ifReg := c.bus.Read(addr.IF)
	ieReg := c.bus.Read(addr.IE)
	active := ifReg & ieReg & 0x1F
	if active == 0 {
		return false
	}

	if !c.interruptsEnabled {
		return true
	}

	for bitIndex := 0; bitIndex < 5; bitIndex++ {
		mask := uint8(1) << uint(bitIndex)
		if active&mask == 0 {
			continue
		}

		c.interruptsEnabled = false
		c.bus.Write(addr.IF, ifReg&^mask)
		c.pushStack(c.pc)
		c.pc = interruptVectors[bitIndex]
		c.tick(12) // pushStack already charged 8 of the 20 cycles
		return true
	}

	return true
}
