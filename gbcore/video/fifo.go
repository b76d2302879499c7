package video

// bgPixel is one entry of the background FIFO: a 2-bit color index, the
// palette it resolves through (DMG: always BGP; CGB: one of 8 BCPD
// palettes), and the bg-priority bit CGB attribute maps carry.
type bgPixel struct {
	color      uint8
	palette    uint8
	bgPriority bool
}

// objPixel is one entry of the object FIFO: a 2-bit color index, the OBP0/
// OBP1 (DMG) or OCPD palette index (CGB), the sprite's "behind BG" attribute
// bit, and a priority byte used for CGB object-vs-object ordering when two
// sprites overlap the same pixel.
type objPixel struct {
	color      uint8
	palette    uint8
	behindBG   bool
	oamIndex   uint8
	hasPixel   bool
}

// fifoSize is the ring buffer capacity spec.md's Data Model specifies:
// "16-entry FIFOs... indexed modulo 16 with separate read/write ends."
const fifoSize = 16

// bgFIFO is a ring buffer of bgPixel; size is (write-read)&15.
type bgFIFO struct {
	buf        [fifoSize]bgPixel
	read, write uint8
}

func (f *bgFIFO) size() uint8 { return (f.write - f.read) & (fifoSize - 1) }
func (f *bgFIFO) empty() bool { return f.size() == 0 }

func (f *bgFIFO) push(p bgPixel) {
	f.buf[f.write&(fifoSize-1)] = p
	f.write++
}

func (f *bgFIFO) pop() bgPixel {
	p := f.buf[f.read&(fifoSize-1)]
	f.read++
	return p
}

func (f *bgFIFO) clear() { f.read = 0; f.write = 0 }

// objFIFO mirrors bgFIFO for object pixels, with overlay-merge semantics:
// when a sprite is fetched mid-scanline its 8 pixels are combined into
// whatever is already queued rather than simply appended, since two
// sprites can both cover the same FIFO slot.
type objFIFO struct {
	buf         [fifoSize]objPixel
	read, write uint8
}

func (f *objFIFO) size() uint8 { return (f.write - f.read) & (fifoSize - 1) }

func (f *objFIFO) clear() { f.read = 0; f.write = 0 }

// overlay merges 8 freshly-fetched sprite pixels into the FIFO's first 8
// slots counted from its read end, keeping whichever pixel of the two (old
// vs new) has priority: on DMG the first-fetched (lower OAM index / leftmost
// X already sorted) sprite wins for any slot already holding an opaque
// pixel; on CGB OAM-index order already resolves this at the list-sort
// stage, so it degrades to "first opaque pixel wins" here too.
func (f *objFIFO) overlay(pixels [8]objPixel) {
	existing := f.size()
	for i := 0; i < 8; i++ {
		slot := (f.read + uint8(i)) & (fifoSize - 1)
		if uint8(i) < existing {
			cur := f.buf[slot]
			if !cur.hasPixel || cur.color == 0 {
				if pixels[i].hasPixel && pixels[i].color != 0 {
					f.buf[slot] = pixels[i]
				} else if !cur.hasPixel {
					f.buf[slot] = pixels[i]
				}
			}
		} else {
			f.buf[slot] = pixels[i]
		}
	}
	if uint8(8) > existing {
		f.write = f.read + 8
	}
}

func (f *objFIFO) pop() objPixel {
	p := f.buf[f.read&(fifoSize-1)]
	f.read++
	return p
}
