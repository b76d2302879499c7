package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBGFIFOSizeInvariant(t *testing.T) {
	var f bgFIFO
	assert.True(t, f.empty())

	for i := 0; i < 8; i++ {
		f.push(bgPixel{color: uint8(i % 4)})
	}
	assert.Equal(t, uint8(8), f.size())

	for i := 0; i < 5; i++ {
		f.pop()
	}
	assert.Equal(t, uint8(3), f.size())

	f.clear()
	assert.True(t, f.empty())
}

func TestBGFIFOWrapsAroundRingBuffer(t *testing.T) {
	var f bgFIFO
	for round := 0; round < 3; round++ {
		for i := 0; i < fifoSize; i++ {
			f.push(bgPixel{color: uint8(i % 4)})
		}
		for i := 0; i < fifoSize; i++ {
			p := f.pop()
			assert.Equal(t, uint8(i%4), p.color)
		}
	}
	assert.True(t, f.empty())
}

func TestObjFIFOOverlayAppendsWhenEmpty(t *testing.T) {
	var f objFIFO
	var pixels [8]objPixel
	for i := range pixels {
		pixels[i] = objPixel{color: uint8(i % 4), hasPixel: true}
	}
	f.overlay(pixels)
	assert.Equal(t, uint8(8), f.size())
	for i := 0; i < 8; i++ {
		p := f.pop()
		assert.Equal(t, uint8(i%4), p.color)
	}
}

// TestObjFIFOOverlayFirstOpaqueWins covers the DMG object-priority rule:
// a sprite fetched later must not overwrite a slot a previous sprite
// already populated with an opaque (non-zero color) pixel.
func TestObjFIFOOverlayFirstOpaqueWins(t *testing.T) {
	var f objFIFO
	first := [8]objPixel{}
	for i := range first {
		first[i] = objPixel{color: 1, oamIndex: 0, hasPixel: true}
	}
	f.overlay(first)

	second := [8]objPixel{}
	for i := range second {
		second[i] = objPixel{color: 2, oamIndex: 1, hasPixel: true}
	}
	f.overlay(second)

	p := f.pop()
	assert.Equal(t, uint8(1), p.color, "first sprite's opaque pixel is kept")
	assert.Equal(t, uint8(0), p.oamIndex)
}

func TestObjFIFOOverlayFillsTransparentSlot(t *testing.T) {
	var f objFIFO
	first := [8]objPixel{} // all color 0 (transparent), hasPixel true
	for i := range first {
		first[i] = objPixel{color: 0, hasPixel: true}
	}
	f.overlay(first)

	second := [8]objPixel{}
	for i := range second {
		second[i] = objPixel{color: 3, oamIndex: 5, hasPixel: true}
	}
	f.overlay(second)

	p := f.pop()
	assert.Equal(t, uint8(3), p.color, "transparent slot is replaced by the next sprite's pixel")
}
