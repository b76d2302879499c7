package cartridge

import (
	"bytes"
	"encoding/gob"
)

// rtcSnapshot mirrors RTC's live and latched registers.
type rtcSnapshot struct {
	Seconds, Minutes, Hours uint8
	Days                    uint16
	Halted                  bool
	DayCarry                bool

	LatchSeconds, LatchMinutes, LatchHours uint8
	LatchDays                              uint16
	LatchHalted, LatchDayCarry             bool

	LastRealSecond int64
	PendingLatch   uint8
}

func snapshotRTC(r *RTC) rtcSnapshot {
	return rtcSnapshot{
		Seconds: r.seconds, Minutes: r.minutes, Hours: r.hours, Days: r.days,
		Halted: r.halted, DayCarry: r.dayCarry,
		LatchSeconds: r.latchSeconds, LatchMinutes: r.latchMinutes, LatchHours: r.latchHours,
		LatchDays: r.latchDays, LatchHalted: r.latchHalted, LatchDayCarry: r.latchDayCarry,
		LastRealSecond: r.lastRealSecond, PendingLatch: r.pendingLatch,
	}
}

func (s rtcSnapshot) restore(r *RTC) {
	r.seconds, r.minutes, r.hours, r.days = s.Seconds, s.Minutes, s.Hours, s.Days
	r.halted, r.dayCarry = s.Halted, s.DayCarry
	r.latchSeconds, r.latchMinutes, r.latchHours = s.LatchSeconds, s.LatchMinutes, s.LatchHours
	r.latchDays, r.latchHalted, r.latchDayCarry = s.LatchDays, s.LatchHalted, s.LatchDayCarry
	r.lastRealSecond, r.pendingLatch = s.LastRealSecond, s.PendingLatch
}

// snapshot mirrors Cartridge's MBC control state: the packed write latches,
// the resolved bank mappings, RTC, HuC3's hidden registers, and the camera's
// register/capture-plane surface. SRAM/ROM contents are not included here;
// those round-trip through Battery()/the ROM buffer the Machine already
// holds, per spec.md 6's separate sram/battery handling.
type snapshot struct {
	SRAMEnabled bool

	BankLow, BankHigh, Mode uint8
	RomBank9                uint16
	RamBank                 uint8

	ROM0Bank, ROMXBank, RAMBankNo int

	RTC rtcSnapshot

	HuC3Reg, HuC3Command, HuC3Value uint8

	CameraRegs    [0x36]byte
	CameraCapture [128 * 112]byte

	RumbleState bool
}

// SaveState returns a gob-encoded snapshot of the cartridge's MBC control
// state (spec.md 6 "mbc" section).
func (c *Cartridge) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{
		SRAMEnabled: c.sramEnabled,
		BankLow:     c.bankLow, BankHigh: c.bankHigh, Mode: c.mode,
		RomBank9: c.romBank9, RamBank: c.ramBank,
		ROM0Bank: c.rom0Bank, ROMXBank: c.romXBank, RAMBankNo: c.ramBankNo,
		RTC:          snapshotRTC(&c.rtc),
		HuC3Reg:      c.huc3Reg,
		HuC3Command:  c.huc3Command,
		HuC3Value:    c.huc3Value,
		CameraRegs:    c.cameraRegs,
		CameraCapture: c.cameraCapture,
		RumbleState:   c.rumbleState,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (c *Cartridge) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	c.sramEnabled = s.SRAMEnabled
	c.bankLow, c.bankHigh, c.mode = s.BankLow, s.BankHigh, s.Mode
	c.romBank9, c.ramBank = s.RomBank9, s.RamBank
	c.rom0Bank, c.romXBank, c.ramBankNo = s.ROM0Bank, s.ROMXBank, s.RAMBankNo
	s.RTC.restore(&c.rtc)
	c.huc3Reg, c.huc3Command, c.huc3Value = s.HuC3Reg, s.HuC3Command, s.HuC3Value
	c.cameraRegs = s.CameraRegs
	c.cameraCapture = s.CameraCapture
	c.rumbleState = s.RumbleState
	return nil
}
