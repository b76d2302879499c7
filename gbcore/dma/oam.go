// Package dma implements the OAM DMA controller and the CGB HDMA (general
// and hblank) engine, spec.md 4.6. The teacher has no timing model for DMA
// at all (a same-M-cycle memcpy); this package is built directly from
// spec.md's Data Model and Design Notes "state machines as explicit step
// indices" guidance, cross-checked against original_source's DMA timing.
package dma

// Bus is the minimal memory interface OAM DMA needs: a byte-at-a-time
// source read and an OAM-row write.
type Bus interface {
	ReadByte(address uint16) uint8
	WriteOAM(index uint8, value uint8)
}

// OAM is the OAM DMA controller: a seven-T-cycle warm-up, then one byte
// copied every four T-cycles from src<<8 to OAM, with a second-arm restart
// latch and the Exxx-source last-opcode-byte glitch (spec.md 4.1, 4.6).
type OAM struct {
	source    uint8 // FF46 value, high byte of the 0x100-aligned source
	active    bool
	warmup    int // T-cycles remaining before the first byte copies; counts down from 7 to 0
	stepsLeft int // bytes remaining to copy
	destCount uint8

	restartPending bool
	restartSource  uint8

	byteTickCounter int // sub-byte T-cycle cadence, resets every 4 ticks

	lastOpcodeByte uint8 // last byte fetched as an opcode, for the Exxx glitch

	bus Bus
}

// New returns an idle OAM DMA controller.
func New(bus Bus) *OAM { return &OAM{bus: bus} }

// NoteOpcodeFetch records the last byte the CPU fetched as an opcode. When
// DMA sources from the 0xE000-0xFFFF echo/IO range, some hardware revisions
// substitute this byte for the first copied byte (spec.md 4.1 "Exxx
// glitch").
func (o *OAM) NoteOpcodeFetch(value uint8) { o.lastOpcodeByte = value }

// Start arms (or re-arms) a transfer. A second write while one is already
// warming up or active latches a restart instead of starting immediately;
// the pending transfer takes over once the current warm-up completes, or,
// if bytes are already being copied, once all 160 have been copied.
func (o *OAM) Start(source uint8) {
	if o.active || o.warmup != 0 {
		o.restartPending = true
		o.restartSource = source
		return
	}
	o.source = source
	o.warmup = 7
	o.active = false
	o.stepsLeft = 160
	o.destCount = 0
}

// Active reports whether a transfer (including its warm-up) is in flight.
func (o *OAM) Active() bool { return o.active || o.warmup > 0 }

// SourceRegister returns the last value written to FF46, for register reads.
func (o *OAM) SourceRegister() uint8 { return o.source }

// SourceAddress returns the source byte currently aliased onto the main
// bus for CPU reads that land on the DMA's physical source (spec.md 4.1).
func (o *OAM) SourceAddress() uint16 {
	return uint16(o.source)<<8 | uint16(o.destCount)
}

// Tick advances the DMA state machine by the given number of T-cycles, one
// byte transferred per four T-cycles once the warm-up elapses.
func (o *OAM) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		o.tickOne()
	}
}

func (o *OAM) tickOne() {
	if o.warmup > 0 {
		o.warmup--
		if o.warmup == 0 {
			o.active = true
			if o.restartPending {
				// A restart armed during warm-up replaces the source
				// before any byte is copied; no byte from the replaced
				// source reaches OAM.
				o.source = o.restartSource
				o.restartPending = false
			}
		}
		return
	}
	if !o.active {
		return
	}

	// one byte transferred per four T-cycles.
	o.byteTickCounter++
	if o.byteTickCounter < 4 {
		return
	}
	o.byteTickCounter = 0
	o.stepsLeft--

	value := o.readSourceByte(o.destCount)
	o.bus.WriteOAM(o.destCount, value)
	o.destCount++

	if o.destCount >= 160 {
		o.active = false
		if o.restartPending {
			o.source = o.restartSource
			o.restartPending = false
			o.warmup = 7
			o.destCount = 0
			o.stepsLeft = 160
		}
	}
}

func (o *OAM) readSourceByte(index uint8) uint8 {
	srcAddr := uint16(o.source)<<8 + uint16(index)
	if index == 0 && srcAddr >= 0xE000 {
		return o.lastOpcodeByte
	}
	return o.bus.ReadByte(srcAddr)
}
