package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRTCAdvancesAndRollsOverFields(t *testing.T) {
	var r RTC
	r.Tick(1000) // first call only seeds lastRealSecond, per Tick's "0 means unseeded" guard
	r.Tick(1000 + 61)

	assert.Equal(t, uint8(1), r.seconds)
	assert.Equal(t, uint8(1), r.minutes)
}

func TestRTCHaltedDoesNotAdvance(t *testing.T) {
	var r RTC
	r.halted = true
	r.Tick(1000)
	r.Tick(1100)
	assert.Equal(t, uint8(0), r.seconds)
}

func TestRTCLatchCopiesOnRisingEdgeOnly(t *testing.T) {
	var r RTC
	r.Tick(1000)
	r.Tick(1010)
	assert.Equal(t, uint8(10), r.seconds)

	r.Latch(0)
	assert.Equal(t, uint8(0), r.ReadLatched(0x08), "no rising edge yet, snapshot stays zero")

	r.Latch(1)
	assert.Equal(t, uint8(10), r.ReadLatched(0x08))

	r.Tick(1030) // live register moves on
	assert.Equal(t, uint8(10), r.ReadLatched(0x08), "latched snapshot doesn't track live changes")

	r.Latch(1) // already 1, not a rising edge, no re-latch
	assert.Equal(t, uint8(10), r.ReadLatched(0x08))
}

func TestRTCDayOverflowSetsCarry(t *testing.T) {
	var r RTC
	r.days = 0x1FF
	r.Tick(1000)
	r.Tick(1000 + 86400)
	assert.True(t, r.dayCarry)
}
