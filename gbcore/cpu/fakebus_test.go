package cpu

// fakeBus is a flat 64KiB memory implementing the Bus interface, used by
// the opcode/decode/interrupt unit tests below instead of the real
// gbcore/bus.Bus: those tests exercise register-transfer and flag logic in
// isolation and don't need address decoding, DMA aliasing, or any other
// bus-arbitration side effect.
type fakeBus struct {
	mem [0x10000]uint8
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) uint8 { return b.mem[address] }

func (b *fakeBus) Write(address uint16, value uint8) { b.mem[address] = value }

func (b *fakeBus) Tick(cycles int) {}

func (b *fakeBus) NoteOpcodeFetch(value uint8) {}
