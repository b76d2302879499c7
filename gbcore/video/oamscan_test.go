package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanOAMFiltersByVerticalRange(t *testing.T) {
	var oam [160]byte
	oam[0] = 16 // y=0 on screen, visible at line 0 for height 8
	oam[1] = 8  // x=0
	oam[4] = 30 // y=14, visible lines 14-21 for height 8
	oam[5] = 16

	visible := scanOAM(&oam, 0, 8, false)
	assert.Len(t, visible, 1)
	assert.Equal(t, uint8(0), visible[0].oamIndex)

	visible = scanOAM(&oam, 14, 8, false)
	assert.Len(t, visible, 1)
	assert.Equal(t, uint8(1), visible[0].oamIndex)
}

func TestScanOAMCapsAtTenSprites(t *testing.T) {
	var oam [160]byte
	for i := 0; i < 40; i++ {
		oam[i*4] = 16   // all on line 0
		oam[i*4+1] = 8 + uint8(i)
	}
	visible := scanOAM(&oam, 0, 8, false)
	assert.Len(t, visible, 10)
}

func TestScanOAMDMGOrderIsDescendingXWithStableTies(t *testing.T) {
	var oam [160]byte
	// three sprites on the same line: x=10, x=20, x=10 (ties oam index 0 and 2)
	oam[0], oam[1] = 16, 18
	oam[4], oam[5] = 16, 28
	oam[8], oam[9] = 16, 18

	visible := scanOAM(&oam, 0, 8, false)
	assert.Len(t, visible, 3)
	assert.Equal(t, 20, visible[0].x, "largest X first")
	assert.Equal(t, 10, visible[1].x)
	assert.Equal(t, uint8(0), visible[1].oamIndex, "first-encountered sprite wins the tie")
	assert.Equal(t, 10, visible[2].x)
	assert.Equal(t, uint8(2), visible[2].oamIndex)
}

func TestScanOAMCGBIndexOrderIsInsertionOrder(t *testing.T) {
	var oam [160]byte
	oam[0], oam[1] = 16, 28
	oam[4], oam[5] = 16, 18

	visible := scanOAM(&oam, 0, 8, true)
	assert.Len(t, visible, 2)
	assert.Equal(t, uint8(0), visible[0].oamIndex)
	assert.Equal(t, uint8(1), visible[1].oamIndex)
}

func TestScanOAMRespectsSpriteHeight16(t *testing.T) {
	var oam [160]byte
	oam[0] = 16 // y=0
	oam[1] = 8

	assert.Len(t, scanOAM(&oam, 15, 8, false), 0, "out of range for height 8")
	assert.Len(t, scanOAM(&oam, 15, 16, false), 1, "in range for height 16")
}
