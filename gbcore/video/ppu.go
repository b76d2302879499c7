// Package video implements the Game Boy PPU pixel pipeline: OAM search,
// the background/object FIFOs, an 8-phase tile fetcher, and the STAT/LY
// mode state machine (spec.md 4.5). Grounded on the teacher's
// jeebie/video/gpu.go for the LCDC/STAT bit layout and palette mapping, but
// this is the single largest rewrite in the module: the teacher renders a
// whole scanline in one shot with no FIFO and no fetcher timing at all,
// while spec.md 4.5 requires the ring-buffer FIFOs, the 10-slot sorted OAM
// list, the sprite mid-fetch pause, and STAT rising-edge interrupt
// semantics described in spec.md's Data Model and Design Notes ("state
// machines as explicit step indices").
package video

import (
	"log/slog"

	"github.com/pixelpocket/gbcore/addr"
	"github.com/pixelpocket/gbcore/bit"
)

// Mode is the PPU's current phase, matching STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeDraw   Mode = 3
)

const (
	cyclesPerLine  = 456
	oamSearchCycles = 80
	linesPerFrame  = 154
	vblankStartLine = 144
)

// frameSkipState is the three-state machine covering "first frame after LCD
// turn-on is blank on DMG, repeats previous frame on CGB" (spec.md 4.5).
type frameSkipState int

const (
	frameSkipNone frameSkipState = iota
	frameSkipArmed
	frameSkipActive
)

// PPU is the pixel pipeline: registers, VRAM/OAM storage, the OAM-search
// result, the BG/OBJ FIFOs, and the STAT/LY state machine.
type PPU struct {
	lcdc, stat, scy, scx, ly, lyc, wy, wx, bgp, obp0, obp1 uint8

	// CGB extensions
	cgb          bool
	vbk          uint8
	opri         uint8
	bcps, ocps   uint8
	bgPaletteRAM [64]byte
	objPaletteRAM [64]byte

	vram [2][0x2000]byte
	oam  [160]byte

	mode         Mode
	lineCycle    int
	drawEndCycle int // lineCycle at which mode 3 ends this line
	line         int // current_line, spec.md's Data Model
	lyForCmp     int // ly_for_comparison; -1 sentinel while LY transitions

	statLineHigh bool

	windowLine             int
	wyDiff                 int
	windowDisabledMidframe bool
	windowWasOn            bool

	visible []objEntry

	frameSkip frameSkipState
	lcdWasOn  bool

	fb                *FrameBuffer
	renderingDisabled bool
	colorCorrection   ColorCorrectionMode

	RequestInterrupt func(bit uint8)
	OnVBlank         func()
	OnHBlankEnter    func() // hook for hblank-mode HDMA

	log *slog.Logger
}

// New returns a PPU reset to the post-boot-ROM vblank state (LY=144,
// mode=1), matching the teacher's NewGpu starting point.
func New(cgb bool) *PPU {
	p := &PPU{
		fb:       NewFrameBuffer(),
		mode:     ModeVBlank,
		line:     144,
		ly:       144,
		lyForCmp: 144,
		cgb:      cgb,
		log:      slog.Default(),
	}
	return p
}

// FrameBuffer exposes the host-visible pixel buffer.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.fb }

// Mode reports the PPU's current STAT mode, used by the bus for OAM-bug
// gating and the 0xFEA0-0xFEFF unusable-region read behavior.
func (p *PPU) Mode() Mode { return p.mode }

// SetRenderingDisabled suppresses framebuffer writes while timing continues
// (spec.md 6 set_rendering_disabled / 4.5 "Failure modes").
func (p *PPU) SetRenderingDisabled(disabled bool) { p.renderingDisabled = disabled }

// SetColorCorrectionMode selects the CGB BGR555->RGB888 gamma curve used when
// resolving palette RAM colors (spec.md 6 set_color_correction_mode). DMG
// shades never go through this path; ByteToColor's 2-bit lookup is
// unaffected.
func (p *PPU) SetColorCorrectionMode(mode ColorCorrectionMode) { p.colorCorrection = mode }

// ---- LCDC/STAT bit helpers ----

const (
	lcdcEnable       = 7
	lcdcWinTileMap   = 6
	lcdcWinEnable    = 5
	lcdcTileData     = 4
	lcdcBGTileMap    = 3
	lcdcObjSize      = 2
	lcdcObjEnable    = 1
	lcdcBGEnable     = 0
)

const (
	statLYCIrq    = 6
	statOAMIrq    = 5
	statVBlankIrq = 4
	statHBlankIrq = 3
	statLYCFlag   = 2
)

func (p *PPU) lcdcBit(b uint8) bool { return bit.IsSet(b, p.lcdc) }
func (p *PPU) lcdOn() bool          { return p.lcdcBit(lcdcEnable) }

// ---- register read/write ----

// ReadRegister implements the FF40-FF4B and CGB FF4F/FF68-FF6C register
// reads the bus routes here.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		if !p.lcdOn() {
			return p.stat&0xF8 | 0x80
		}
		v := p.stat&0xFC | uint8(p.mode)
		if p.lyForCmp >= 0 && p.lyForCmp == int(p.lyc) {
			v |= 1 << statLYCFlag
		}
		return v | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return uint8(p.ly)
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	case addr.VBK:
		return p.vbk | 0xFE
	case addr.BCPS:
		return p.bcps
	case addr.BCPD:
		return p.bgPaletteRAM[p.bcps&0x3F]
	case addr.OCPS:
		return p.ocps
	case addr.OCPD:
		return p.objPaletteRAM[p.ocps&0x3F]
	case addr.OPRI:
		return p.opri | 0xFE
	default:
		return 0xFF
	}
}

// WriteRegister implements the corresponding writes.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		wasOn := p.lcdOn()
		p.lcdc = value
		if wasOn && !p.lcdOn() {
			p.turnOff()
		} else if !wasOn && p.lcdOn() {
			p.turnOn()
		}
	case addr.STAT:
		p.stat = (p.stat & 0x87) | (value & 0x78)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only on real hardware
	case addr.LYC:
		p.lyc = value
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		if value != p.wy {
			p.wyDiff = p.line - int(value)
		}
		p.wy = value
	case addr.WX:
		p.wx = value
	case addr.VBK:
		p.vbk = value & 0x01
	case addr.BCPS:
		p.bcps = value & 0xBF
	case addr.BCPD:
		p.bgPaletteRAM[p.bcps&0x3F] = value
		if p.bcps&0x80 != 0 {
			p.bcps = 0x80 | ((p.bcps + 1) & 0x3F)
		}
	case addr.OCPS:
		p.ocps = value & 0xBF
	case addr.OCPD:
		p.objPaletteRAM[p.ocps&0x3F] = value
		if p.ocps&0x80 != 0 {
			p.ocps = 0x80 | ((p.ocps + 1) & 0x3F)
		}
	case addr.OPRI:
		p.opri = value & 0x01
	}
}

// ReadVRAM/WriteVRAM access the currently banked 8KiB VRAM window
// (0x8000-0x9FFF), returning 0xFF during mode 3 (spec.md 4.1 "Failure
// modes").
func (p *PPU) ReadVRAM(address uint16) uint8 {
	if p.mode == ModeDraw && p.lcdOn() {
		return 0xFF
	}
	return p.vram[p.vbk][address-0x8000]
}

func (p *PPU) WriteVRAM(address uint16, value uint8) {
	if p.mode == ModeDraw && p.lcdOn() {
		return
	}
	p.vram[p.vbk][address-0x8000] = value
}

// ReadVRAMRaw/WriteVRAMRaw bypass mode blocking. ReadVRAMRaw reads the given
// bank; WriteVRAMRaw is HDMA's path and always targets VRAM bank p.vbk
// regardless of PPU mode contention rules (HDMA pauses the CPU instead).
func (p *PPU) ReadVRAMRaw(bank uint8, address uint16) uint8 {
	return p.vram[bank&1][address-0x8000]
}
func (p *PPU) WriteVRAMRaw(address uint16, value uint8) {
	p.vram[p.vbk][address-0x8000] = value
}

// ReadOAM/WriteOAM access OAM, returning 0xFF during modes 2/3 (the OAM
// bug itself is modeled by the bus, which observes timing the PPU doesn't
// track byte-by-byte).
func (p *PPU) ReadOAM(address uint16) uint8 {
	if (p.mode == ModeOAM || p.mode == ModeDraw) && p.lcdOn() {
		return 0xFF
	}
	return p.oam[address-0xFE00]
}

func (p *PPU) WriteOAM(address uint16, value uint8) {
	if (p.mode == ModeOAM || p.mode == ModeDraw) && p.lcdOn() {
		return
	}
	p.oam[address-0xFE00] = value
}

// WriteOAMDMA is the unconditional write DMA uses (OAM DMA writes land
// regardless of PPU mode; CPU writes are what's blocked).
func (p *PPU) WriteOAMDMA(index uint8, value uint8) { p.oam[index] = value }

// OAMBytes exposes the raw 160-byte OAM table, for GetDirectAccess(OAM).
func (p *PPU) OAMBytes() []byte { return p.oam[:] }

// VRAMBank exposes the raw 8KiB contents of VRAM bank n (0 or 1), for
// GetDirectAccess(VRAM).
func (p *PPU) VRAMBank(n int) []byte {
	if n < 0 || n > 1 {
		return nil
	}
	return p.vram[n][:]
}

// BGPaletteRAM/OBJPaletteRAM expose the CGB BCPD/OCPD-backed 64-byte
// palette RAMs, for GetDirectAccess(BGP)/GetDirectAccess(OBP).
func (p *PPU) BGPaletteRAM() []byte  { return p.bgPaletteRAM[:] }
func (p *PPU) OBJPaletteRAM() []byte { return p.objPaletteRAM[:] }

// GlitchOAMRow reproduces the DMG OAM bug's row corruption: the eight bytes
// of the given row (0-19) are replaced by a glitch mix of the row and its
// predecessor, `(b&c) | (a&(b^c))`, where a is two rows back, b one row
// back, and c the accessed row itself (spec.md 4.1). The precise 16-bit-
// access-vs-8-bit-access distinction the real bug depends on is one of
// spec.md 9's open questions ("do not invent behaviour"); the bus triggers
// this for any CPU access that lands on OAM while mode 2 is active, which
// reproduces the documented row-mix effect without guessing at the
// unresolved instruction-level trigger condition.
func (p *PPU) GlitchOAMRow(row int) {
	if row < 2 || row > 19 {
		return
	}
	aBase := (row - 2) * 8
	bBase := (row - 1) * 8
	cBase := row * 8
	for i := 0; i < 8; i++ {
		a := p.oam[aBase+i]
		b := p.oam[bBase+i]
		c := p.oam[cBase+i]
		p.oam[cBase+i] = (b & c) | (a & (b ^ c))
	}
}

func (p *PPU) turnOff() {
	p.mode = ModeHBlank
	p.line = 0
	p.ly = 0
	p.lineCycle = 0
	p.lyForCmp = 0
	p.statLineHigh = false
	p.fb.Clear()
}

func (p *PPU) turnOn() {
	p.lineCycle = 0
	p.line = 0
	p.ly = 0
	p.mode = ModeOAM
	if !p.cgb {
		p.frameSkip = frameSkipArmed
	} else {
		p.frameSkip = frameSkipActive
	}
}

// requestSTAT evaluates the combined STAT interrupt line and fires on the
// rising edge only (spec.md 4.5, 8 invariant 6).
func (p *PPU) requestSTAT() {
	line := p.lcdOn() && (p.statSourceActive() || p.lycMatches())
	if line && !p.statLineHigh && p.RequestInterrupt != nil {
		p.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	p.statLineHigh = line
}

func (p *PPU) statSourceActive() bool {
	switch p.mode {
	case ModeHBlank:
		return bit.IsSet(statHBlankIrq, p.stat)
	case ModeVBlank:
		return bit.IsSet(statVBlankIrq, p.stat)
	case ModeOAM:
		return bit.IsSet(statOAMIrq, p.stat)
	default:
		return false
	}
}

func (p *PPU) lycMatches() bool {
	return bit.IsSet(statLYCIrq, p.stat) && p.lyForCmp >= 0 && p.lyForCmp == int(p.lyc)
}

// Tick advances the PPU by the given number of T-cycles.
func (p *PPU) Tick(cycles int) {
	if !p.lcdOn() {
		p.lineCycle += cycles
		for p.lineCycle >= cyclesPerLine {
			p.lineCycle -= cyclesPerLine
			if p.OnVBlank != nil {
				p.OnVBlank()
			}
		}
		return
	}

	for i := 0; i < cycles; i++ {
		p.tickOne()
	}
}

func (p *PPU) tickOne() {
	p.lineCycle++

	// ly_for_comparison is -1 for the first cycle of every line except 0,
	// restoring to the line number after that single cycle (spec.md 4.5).
	if p.lineCycle == 1 && p.line != 0 {
		p.lyForCmp = -1
	} else if p.lineCycle == 2 {
		p.lyForCmp = p.line
	}

	switch p.mode {
	case ModeOAM:
		if p.lineCycle == oamSearchCycles {
			p.enterDraw()
		}
	case ModeDraw:
		if p.lineCycle >= p.drawEndCycle {
			p.enterHBlank()
		}
	case ModeHBlank:
		if p.lineCycle >= cyclesPerLine {
			p.advanceLine()
		}
	case ModeVBlank:
		if p.lineCycle == 4 && p.line == 153 {
			p.ly = 0
			p.lyForCmp = 0
		}
		if p.lineCycle >= cyclesPerLine {
			p.advanceLine()
		}
	}

	p.requestSTAT()
}

// enterDraw starts mode 3, which lasts 172 base cycles plus the SCX
// fine-scroll discard, window and sprite-fetch penalties computed by the
// scanline renderer (spec.md 4.5's per-line variable length, 172-289
// cycles); drawEndCycle is that many cycles past the 80-cycle OAM search.
func (p *PPU) enterDraw() {
	p.mode = ModeDraw
	spriteHeight := 8
	if p.lcdcBit(lcdcObjSize) {
		spriteHeight = 16
	}
	cgbIndexOrder := p.cgb && p.opri == 0
	p.visible = scanOAM(&p.oam, p.line, spriteHeight, cgbIndexOrder)

	penalty := p.renderScanline(spriteHeight)
	p.drawEndCycle = oamSearchCycles + 172 + penalty
}

func (p *PPU) enterHBlank() {
	p.mode = ModeHBlank
	if p.OnHBlankEnter != nil {
		p.OnHBlankEnter()
	}
}

func (p *PPU) advanceLine() {
	p.lineCycle -= cyclesPerLine
	p.line++
	if p.line > 153 {
		p.line = 0
		p.windowLine = 0
		p.endFrame()
	}
	p.ly = uint8(p.line)
	p.lyForCmp = p.line

	if p.line == vblankStartLine {
		p.enterVBlank()
	} else if p.line < vblankStartLine {
		p.mode = ModeOAM
	}
}

func (p *PPU) enterVBlank() {
	p.mode = ModeVBlank
	if p.RequestInterrupt != nil {
		p.RequestInterrupt(uint8(addr.VBlankInterrupt))
	}
}

func (p *PPU) endFrame() {
	switch p.frameSkip {
	case frameSkipArmed:
		p.frameSkip = frameSkipActive
	case frameSkipActive:
		p.frameSkip = frameSkipNone
	}
	if p.OnVBlank != nil {
		p.OnVBlank()
	}
}
