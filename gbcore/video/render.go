package video

import "github.com/pixelpocket/gbcore/addr"

// renderScanline drives the BG/OBJ FIFOs and the tile fetcher across one
// visible line, writing the mixed pixel result into the framebuffer (when
// rendering is not disabled) and returning the extra T-cycles beyond the
// base 172 that this line's fetch stalls consumed: the SCX fine-scroll
// discard, the window restart, and each sprite's mid-fetch pause
// (spec.md 4.5 "Rendering" / "Objects" / "Window").
func (p *PPU) renderScanline(spriteHeight int) int {
	if p.frameSkip == frameSkipActive {
		return 0
	}

	var bg bgFIFO
	var obj objFIFO

	scx := int(p.scx)
	discard := scx & 7
	penalty := discard

	windowEnabled := p.lcdcBit(lcdcWinEnable)
	wx := int(p.wx) - 7
	windowTriggerable := windowEnabled && int(p.wx) < 167 && p.windowReachedY()

	inWindow := false
	windowX := 0
	bgFetchTileX := 0
	bgFetchPixelY := (p.line + int(p.scy)) & 0xFF
	bgTileRow := bgFetchPixelY / 8
	bgTileLine := bgFetchPixelY % 8

	fetchBGTileRun := func(startScreenX int) {
		mapTileX := ((startScreenX + scx) / 8) & 31
		p.fetchBGTileInto(&bg, mapTileX, bgTileRow, bgTileLine, false)
	}
	fetchWindowTileRun := func() {
		tileX := windowX / 8
		tileRow := p.windowLine / 8
		tileLine := p.windowLine % 8
		p.fetchBGTileInto(&bg, tileX, tileRow, tileLine, true)
		windowX += 8
	}

	screenX := 0
	bg.clear()
	fetchBGTileRun(0)
	bgFetchTileX = 8

	pixelsEmitted := 0
	for pixelsEmitted < FramebufferWidth {
		if bg.empty() {
			if inWindow {
				fetchWindowTileRun()
			} else {
				fetchBGTileRun(bgFetchTileX)
				bgFetchTileX += 8
			}
			continue
		}

		if !inWindow && windowTriggerable && screenX >= 0 && screenX == wx {
			inWindow = true
			bg.clear()
			windowX = 0
			penalty += 6
			fetchWindowTileRun()
			continue
		}

		if sp, ok := p.spriteStartingAt(screenX); ok {
			pixels := p.fetchSpritePixels(sp, spriteHeight)
			obj.overlay(pixels)
			penalty += 6
		}

		px := bg.pop()
		var op objPixel
		hasObj := false
		if obj.size() > 0 {
			op = obj.pop()
			hasObj = op.hasPixel
		}

		if screenX < discard && !inWindow {
			screenX++
			continue
		}

		useBG := true
		if hasObj && op.color != 0 {
			objWins := true
			if op.behindBG && px.color != 0 {
				objWins = false
			}
			if objWins {
				useBG = false
			}
		}

		if !p.renderingDisabled && pixelsEmitted < FramebufferWidth {
			var finalColor uint32
			if useBG {
				finalColor = p.resolveBGColor(px)
			} else {
				finalColor = p.resolveObjColor(op)
			}
			p.fb.buffer[p.line*FramebufferWidth+pixelsEmitted] = finalColor
		}
		pixelsEmitted++
		screenX++
	}

	if inWindow {
		p.windowLine++
	}

	return penalty
}

// windowReachedY reports whether the window is vertically active on the
// current line, accounting for mid-frame WY writes via wyDiff (spec.md 4.5
// "Window").
func (p *PPU) windowReachedY() bool {
	target := int(p.wy) + p.wyDiff
	return p.line >= target && target >= 0 && target < FramebufferHeight
}

// fetchBGTileInto performs one 8-pixel background/window tile fetch and
// pushes it into the FIFO, reading the tile map + pattern table according
// to LCDC's BG/window tile map and addressing-mode bits.
func (p *PPU) fetchBGTileInto(f *bgFIFO, tileX, tileRow, tileLine int, window bool) {
	var mapBase uint16 = addr.TileMap0
	sel := lcdcBGTileMap
	if window {
		sel = lcdcWinTileMap
	}
	if p.lcdcBit(uint8(sel)) {
		mapBase = addr.TileMap1
	}

	mapAddr := mapBase + uint16((tileRow&31)*32+(tileX&31))
	tileIndex := p.vram[0][mapAddr-0x8000]

	var tileAddr uint16
	if p.lcdcBit(lcdcTileData) {
		tileAddr = addr.TileData0 + uint16(tileIndex)*16 + uint16(tileLine*2)
	} else {
		tileAddr = uint16(int(addr.TileData2) + int(int8(tileIndex))*16 + tileLine*2)
	}

	attrs := byte(0)
	bank := uint8(0)
	if p.cgb {
		attrs = p.vram[1][mapAddr-0x8000]
		if attrs&0x08 != 0 {
			bank = 1
		}
	}

	low := p.vram[bank][tileAddr-0x8000]
	high := p.vram[bank][tileAddr+1-0x8000]

	flipX := p.cgb && attrs&0x20 != 0
	paletteIdx := attrs & 0x07
	bgPriority := p.cgb && attrs&0x80 != 0
	bgEnabled := p.lcdcBit(lcdcBGEnable) || p.cgb

	for i := 0; i < 8; i++ {
		bitIdx := uint8(7 - i)
		if flipX {
			bitIdx = uint8(i)
		}
		color := uint8(0)
		if low&(1<<bitIdx) != 0 {
			color |= 1
		}
		if high&(1<<bitIdx) != 0 {
			color |= 2
		}
		if !bgEnabled {
			color = 0
		}
		f.push(bgPixel{color: color, palette: paletteIdx, bgPriority: bgPriority})
	}
}

// spriteStartingAt reports the next unfetched visible object whose X
// matches the fetcher's current screen column, per spec.md 4.5 "Objects".
func (p *PPU) spriteStartingAt(screenX int) (objEntry, bool) {
	for i, o := range p.visible {
		if o.fetched {
			continue
		}
		if o.x == screenX {
			p.visible[i].fetched = true
			return o, true
		}
	}
	return objEntry{}, false
}

// fetchSpritePixels reads one object's row and returns its 8 pixels in
// screen-left-to-right order, ready for objFIFO.overlay.
func (p *PPU) fetchSpritePixels(o objEntry, spriteHeight int) [8]objPixel {
	flipY := o.flags&0x40 != 0
	flipX := o.flags&0x20 != 0
	behindBG := o.flags&0x80 != 0
	dmgPalette := uint8(0)
	if o.flags&0x10 != 0 {
		dmgPalette = 1
	}
	cgbPalette := o.flags & 0x07
	bank := uint8(0)
	if p.cgb && o.flags&0x08 != 0 {
		bank = 1
	}

	rowInSprite := p.line - o.y
	if flipY {
		rowInSprite = spriteHeight - 1 - rowInSprite
	}
	tile := o.tile
	if spriteHeight == 16 {
		tile &= 0xFE
	}
	tileAddr := addr.TileData0 + uint16(tile)*16 + uint16(rowInSprite*2)
	low := p.vram[bank][tileAddr-0x8000]
	high := p.vram[bank][tileAddr+1-0x8000]

	var pixels [8]objPixel
	for i := 0; i < 8; i++ {
		bitIdx := uint8(7 - i)
		if flipX {
			bitIdx = uint8(i)
		}
		color := uint8(0)
		if low&(1<<bitIdx) != 0 {
			color |= 1
		}
		if high&(1<<bitIdx) != 0 {
			color |= 2
		}
		palette := dmgPalette
		if p.cgb {
			palette = cgbPalette
		}
		pixels[i] = objPixel{
			color:    color,
			palette:  palette,
			behindBG: behindBG,
			oamIndex: o.oamIndex,
			hasPixel: true,
		}
	}
	return pixels
}

// resolveBGColor maps a background/window pixel through BGP (DMG) or the
// CGB background palette RAM.
func (p *PPU) resolveBGColor(px bgPixel) uint32 {
	if p.cgb {
		return cgbColor(p.bgPaletteRAM[:], px.palette, px.color, p.colorCorrection)
	}
	shade := (p.bgp >> (px.color * 2)) & 0x03
	return uint32(ByteToColor(shade))
}

// resolveObjColor maps an object pixel through OBP0/OBP1 (DMG) or the CGB
// object palette RAM.
func (p *PPU) resolveObjColor(px objPixel) uint32 {
	if p.cgb {
		return cgbColor(p.objPaletteRAM[:], px.palette, px.color, p.colorCorrection)
	}
	pal := p.obp0
	if px.palette == 1 {
		pal = p.obp1
	}
	shade := (pal >> (px.color * 2)) & 0x03
	return uint32(ByteToColor(shade))
}

// ColorCorrectionMode selects how cgbColor maps a 15-bit BGR555 palette
// entry to 8-bit-per-channel RGB (spec.md 6 set_color_correction_mode).
type ColorCorrectionMode int

const (
	// ColorCorrectionDisabled widens each 5-bit channel linearly
	// (x<<3 | x>>2), the same math used for every channel regardless of
	// mode before this knob existed.
	ColorCorrectionDisabled ColorCorrectionMode = iota
	// ColorCorrectionCorrectCurves applies curveTable to each channel but
	// does no cross-channel blending.
	ColorCorrectionCorrectCurves
	// ColorCorrectionModern applies curveTable and then blends green
	// toward blue, approximating how CGB/AGB LCDs actually mix channels.
	ColorCorrectionModern
	// ColorCorrectionPreserveBrightness is ColorCorrectionModern with an
	// extra min/max rescale so the blended color keeps the same apparent
	// brightness as the uncorrected one.
	ColorCorrectionPreserveBrightness
)

// curveTable is the nonlinear 5-bit-to-8-bit gamma curve real CGB/AGB LCDs
// show, approximating their actual response rather than a flat multiply.
var curveTable = [32]uint8{
	0, 2, 4, 7, 12, 18, 25, 34, 42, 52, 62, 73, 85, 97, 109, 121,
	134, 146, 158, 170, 182, 193, 203, 213, 221, 230, 237, 243, 248, 251, 253, 255,
}

func scaleChannel(x uint8) uint8 { return x<<3 | x>>2 }

func maxByte(a, b, c uint8) uint8 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minByte(a, b, c uint8) uint8 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// cgbColor reads a 15-bit BGR555 color out of palette RAM (8 palettes * 4
// colors * 2 bytes) and resolves it to 8-bit-per-channel RGBA using mode.
func cgbColor(ram []byte, palette, color uint8, mode ColorCorrectionMode) uint32 {
	idx := int(palette)*8 + int(color)*2
	if idx+1 >= len(ram) {
		return uint32(WhiteColor)
	}
	lo := ram[idx]
	hi := ram[idx+1]
	word := uint16(hi)<<8 | uint16(lo)
	r5 := uint8(word & 0x1F)
	g5 := uint8((word >> 5) & 0x1F)
	b5 := uint8((word >> 10) & 0x1F)

	var r, g, b uint8
	if mode == ColorCorrectionDisabled {
		r, g, b = scaleChannel(r5), scaleChannel(g5), scaleChannel(b5)
	} else {
		r, g, b = curveTable[r5], curveTable[g5], curveTable[b5]
		if mode != ColorCorrectionCorrectCurves {
			newG := uint8((uint16(g)*3 + uint16(b)) / 4)
			newR, newB := r, b
			if mode == ColorCorrectionPreserveBrightness {
				oldMax := maxByte(r, g, b)
				newMax := maxByte(newR, newG, newB)
				if newMax != 0 {
					newR = uint8(uint16(newR) * uint16(oldMax) / uint16(newMax))
					newG = uint8(uint16(newG) * uint16(oldMax) / uint16(newMax))
					newB = uint8(uint16(newB) * uint16(oldMax) / uint16(newMax))
				}
				oldMin := minByte(r, g, b)
				newMin := minByte(newR, newG, newB)
				if newMin != 0xff {
					newR = 0xff - uint8(uint16(0xff-newR)*uint16(0xff-oldMin)/uint16(0xff-newMin))
					newG = 0xff - uint8(uint16(0xff-newG)*uint16(0xff-oldMin)/uint16(0xff-newMin))
					newB = 0xff - uint8(uint16(0xff-newB)*uint16(0xff-oldMin)/uint16(0xff-newMin))
				}
			}
			r, g, b = newR, newG, newB
		}
	}
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
}
