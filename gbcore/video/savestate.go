package video

import (
	"bytes"
	"encoding/gob"
)

// snapshot mirrors PPU's persistent fields for save-state serialization
// (spec.md 6 "video" section). The framebuffer's current contents are
// included so a restored machine reports the same frame_buffer() output as
// the original before the next frame completes (spec.md 8 S6).
type snapshot struct {
	LCDC, STAT, SCY, SCX, LY, LYC, WY, WX, BGP, OBP0, OBP1 uint8

	CGB           bool
	VBK           uint8
	OPRI          uint8
	BCPS, OCPS    uint8
	BGPaletteRAM  [64]byte
	OBJPaletteRAM [64]byte

	VRAM [2][0x2000]byte
	OAM  [160]byte

	Mode         Mode
	LineCycle    int
	DrawEndCycle int
	Line         int
	LYForCmp     int

	StatLineHigh bool

	WindowLine             int
	WyDiff                 int
	WindowDisabledMidframe bool
	WindowWasOn            bool

	FrameSkip frameSkipState
	LCDWasOn  bool

	RenderingDisabled bool
	ColorCorrection   ColorCorrectionMode

	Framebuffer []uint32
}

// SaveState returns a gob-encoded snapshot of the PPU, including VRAM, OAM,
// CGB palette RAM, the STAT/LY state machine, and the current framebuffer.
func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		WY: p.wy, WX: p.wx, BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,

		CGB: p.cgb, VBK: p.vbk, OPRI: p.opri, BCPS: p.bcps, OCPS: p.ocps,
		BGPaletteRAM: p.bgPaletteRAM, OBJPaletteRAM: p.objPaletteRAM,

		VRAM: p.vram, OAM: p.oam,

		Mode: p.mode, LineCycle: p.lineCycle, DrawEndCycle: p.drawEndCycle,
		Line: p.line, LYForCmp: p.lyForCmp,

		StatLineHigh: p.statLineHigh,

		WindowLine: p.windowLine, WyDiff: p.wyDiff,
		WindowDisabledMidframe: p.windowDisabledMidframe, WindowWasOn: p.windowWasOn,

		FrameSkip: p.frameSkip, LCDWasOn: p.lcdWasOn,

		RenderingDisabled: p.renderingDisabled,
		ColorCorrection:   p.colorCorrection,

		Framebuffer: p.fb.ToSlice(),
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState. The sprite-visibility
// scratch list (visible) is rebuilt on the next OAM search rather than
// carried in the blob.
func (p *PPU) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc = s.LCDC, s.STAT, s.SCY, s.SCX, s.LY, s.LYC
	p.wy, p.wx, p.bgp, p.obp0, p.obp1 = s.WY, s.WX, s.BGP, s.OBP0, s.OBP1

	p.cgb, p.vbk, p.opri, p.bcps, p.ocps = s.CGB, s.VBK, s.OPRI, s.BCPS, s.OCPS
	p.bgPaletteRAM, p.objPaletteRAM = s.BGPaletteRAM, s.OBJPaletteRAM

	p.vram, p.oam = s.VRAM, s.OAM

	p.mode, p.lineCycle, p.drawEndCycle = s.Mode, s.LineCycle, s.DrawEndCycle
	p.line, p.lyForCmp = s.Line, s.LYForCmp

	p.statLineHigh = s.StatLineHigh

	p.windowLine, p.wyDiff = s.WindowLine, s.WyDiff
	p.windowDisabledMidframe, p.windowWasOn = s.WindowDisabledMidframe, s.WindowWasOn

	p.frameSkip, p.lcdWasOn = s.FrameSkip, s.LCDWasOn

	p.renderingDisabled = s.RenderingDisabled
	p.colorCorrection = s.ColorCorrection

	for i, c := range s.Framebuffer {
		if i >= len(p.fb.buffer) {
			break
		}
		p.fb.buffer[i] = c
	}
	return nil
}
