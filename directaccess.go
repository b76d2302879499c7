package gbcore

// DirectAccessKind selects one of the memory regions spec.md 6's
// get_direct_access(kind) -> (ptr,size,bank) host operation can expose.
type DirectAccessKind int

const (
	DirectROM DirectAccessKind = iota
	DirectRAM
	DirectCartRAM
	DirectVRAM
	DirectHRAM
	DirectIO
	DirectBootROM
	DirectOAM
	DirectBGP
	DirectOBP
	DirectIE
)

// GetDirectAccess returns the raw backing bytes for kind, or nil if kind/
// bank doesn't name a region this Machine has. bank selects among banked
// regions (WRAM banks 0-7, VRAM banks 0-1 on CGB) and is ignored by
// unbanked kinds. The returned slice aliases live emulator state for every
// kind backed by a real buffer (ROM, SRAM, WRAM, VRAM, HRAM, OAM, BGP/OBP
// palette RAM, boot ROM) and remains valid until the next Reset/LoadROM,
// per spec.md 6's "pointer remains valid until next reset or free".
//
// DirectIO and DirectIE are the two exceptions: most of the I/O register
// file is computed on read from component state (TIMA during reload, LY,
// STAT mode bits — spec.md 3 "I/O register file"), so there is no single
// contiguous live buffer to alias. Those two kinds return a point-in-time
// snapshot copy instead; writes through the returned slice are not
// observed by the guest.
func (m *Machine) GetDirectAccess(kind DirectAccessKind, bank int) []byte {
	switch kind {
	case DirectROM:
		return m.cart.ROM()
	case DirectRAM:
		return m.bus.WRAMBank(bank)
	case DirectCartRAM:
		return m.cart.SRAM()
	case DirectVRAM:
		return m.bus.PPU().VRAMBank(bank)
	case DirectHRAM:
		return m.bus.HRAM()
	case DirectBootROM:
		return m.bus.BootROM()
	case DirectOAM:
		return m.bus.PPU().OAMBytes()
	case DirectBGP:
		return m.bus.PPU().BGPaletteRAM()
	case DirectOBP:
		return m.bus.PPU().OBJPaletteRAM()
	case DirectIE:
		return []byte{m.bus.IE()}
	case DirectIO:
		snap := make([]byte, 0x80)
		for i := range snap {
			snap[i] = m.bus.Read(0xFF00 + uint16(i))
		}
		return snap
	default:
		return nil
	}
}
