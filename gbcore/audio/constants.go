package audio

// Timing constants
// Reference: https://gbdev.io/pandocs/Audio_details.html
const (
	// cyclesPerStep documents the frame sequencer's nominal 512 Hz rate
	// (4194304 Hz / 512 Hz = 8192 t-cycles) for reference. The sequencer
	// itself is driven by TickDivFall rather than this constant, since the
	// real hardware derives it from the divider's bit 12/13 fall, not from
	// a free-running counter.
	cyclesPerStep = 8192
)

// Channel constants
const (
	// waveRAMSize is the size of wave pattern RAM in bytes (16 bytes = 32 nibbles)
	waveRAMSize = 16
)
