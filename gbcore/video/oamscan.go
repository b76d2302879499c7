package video

// objEntry is one admitted sprite from the OAM search phase: its OAM index
// (needed for CGB priority and the object FIFO's overlay rule) plus the
// four raw attribute bytes.
type objEntry struct {
	oamIndex uint8
	y, x     int
	tile     uint8
	flags    uint8
	fetched  bool // whether this line's fetcher has already overlaid it
}

// scanOAM walks OAM sequentially admitting up to 10 objects whose vertical
// range contains the current line, then inserts each into a 10-slot list
// sorted descending by X (DMG priority) or ascending by OAM index (CGB
// priority, selectable via OPRI) — spec.md 4.5 "OAM search".
func scanOAM(oam *[160]byte, line int, spriteHeight int, cgbIndexOrder bool) []objEntry {
	visible := make([]objEntry, 0, 10)
	for i := 0; i < 40; i++ {
		base := i * 4
		y := int(oam[base]) - 16
		if y > line || y+spriteHeight <= line {
			continue
		}
		entry := objEntry{
			oamIndex: uint8(i),
			y:        y,
			x:        int(oam[base+1]) - 8,
			tile:     oam[base+2],
			flags:    oam[base+3],
		}
		visible = insertSorted(visible, entry, cgbIndexOrder)
		if len(visible) >= 10 {
			break
		}
	}
	return visible
}

// insertSorted keeps the list ordered per the active priority comparator.
// DMG/CGB-compat (X order): descending X, ties broken by OAM index so the
// first-encountered sprite at a given X wins (matches hardware). CGB
// (index order): ascending OAM index, i.e. insertion order, since scanOAM
// already walks OAM 0..39 in order.
func insertSorted(list []objEntry, e objEntry, cgbIndexOrder bool) []objEntry {
	if cgbIndexOrder {
		return append(list, e)
	}
	i := 0
	for i < len(list) && list[i].x >= e.x {
		i++
	}
	list = append(list, objEntry{})
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}
