package audio

import (
	"bytes"
	"encoding/gob"
)

// channelSnapshot mirrors Channel's persistent fields for save-state
// serialization (spec.md 6 "apu" section). pcmBuffer/pcmCursor are not
// carried: they are a few dozen milliseconds of in-flight host audio, not
// guest-observable machine state.
type channelSnapshot struct {
	Enabled     bool
	Left, Right bool

	Duty, Timer uint8
	Length      uint16
	Volume      uint8

	SweepPeriod  uint8
	SweepDown    bool
	SweepStep    uint8
	SweepEnabled bool
	SweepTimer   uint8
	ShadowFreq   uint16
	SweepNegUsed bool

	EnvelopePace    uint8
	EnvelopeUp      bool
	EnvelopeCounter uint8
	EnvelopeLatched bool

	Period       uint16
	Trigger      bool
	LengthEnable bool
	FreqTimer    int
	DutyStep     uint8
	WaveIndex    uint8
	WaveSample   uint8
	NoiseTimer   int

	LFSR        uint16
	Use7BitLFSR bool
	Shift       uint8
	Divider     uint8

	DACEnabled bool

	Muted bool
}

func snapshotChannel(ch *Channel) channelSnapshot {
	return channelSnapshot{
		Enabled: ch.enabled, Left: ch.left, Right: ch.right,
		Duty: ch.duty, Timer: ch.timer, Length: ch.length, Volume: ch.volume,
		SweepPeriod: ch.sweepPeriod, SweepDown: ch.sweepDown, SweepStep: ch.sweepStep,
		SweepEnabled: ch.sweepEnabled, SweepTimer: ch.sweepTimer, ShadowFreq: ch.shadowFreq,
		SweepNegUsed: ch.sweepNegUsed,
		EnvelopePace: ch.envelopePace, EnvelopeUp: ch.envelopeUp,
		EnvelopeCounter: ch.envelopeCounter, EnvelopeLatched: ch.envelopeLatched,
		Period: ch.period, Trigger: ch.trigger, LengthEnable: ch.lengthEnable,
		FreqTimer: ch.freqTimer, DutyStep: ch.dutyStep, WaveIndex: ch.waveIndex,
		WaveSample: ch.waveSample, NoiseTimer: ch.noiseTimer,
		LFSR: ch.lfsr, Use7BitLFSR: ch.use7bitLFSR, Shift: ch.shift, Divider: ch.divider,
		DACEnabled: ch.dacEnabled, Muted: ch.muted,
	}
}

func (s channelSnapshot) restore(ch *Channel) {
	ch.enabled, ch.left, ch.right = s.Enabled, s.Left, s.Right
	ch.duty, ch.timer, ch.length, ch.volume = s.Duty, s.Timer, s.Length, s.Volume
	ch.sweepPeriod, ch.sweepDown, ch.sweepStep = s.SweepPeriod, s.SweepDown, s.SweepStep
	ch.sweepEnabled, ch.sweepTimer, ch.shadowFreq = s.SweepEnabled, s.SweepTimer, s.ShadowFreq
	ch.sweepNegUsed = s.SweepNegUsed
	ch.envelopePace, ch.envelopeUp = s.EnvelopePace, s.EnvelopeUp
	ch.envelopeCounter, ch.envelopeLatched = s.EnvelopeCounter, s.EnvelopeLatched
	ch.period, ch.trigger, ch.lengthEnable = s.Period, s.Trigger, s.LengthEnable
	ch.freqTimer, ch.dutyStep, ch.waveIndex = s.FreqTimer, s.DutyStep, s.WaveIndex
	ch.waveSample, ch.noiseTimer = s.WaveSample, s.NoiseTimer
	ch.lfsr, ch.use7bitLFSR, ch.shift, ch.divider = s.LFSR, s.Use7BitLFSR, s.Shift, s.Divider
	ch.dacEnabled, ch.muted = s.DACEnabled, s.Muted
}

// snapshot mirrors APU's persistent fields.
type snapshot struct {
	Enabled           bool
	Channels          [4]channelSnapshot
	VinLeft, VinRight bool
	VolLeft, VolRight uint8
	VinSample         int16

	HighpassMode int
	LeftCharge   float64
	RightCharge  float64

	Step int

	NR10, NR11, NR12, NR13, NR14 uint8
	NR21, NR22, NR23, NR24       uint8
	NR30, NR31, NR32, NR33, NR34 uint8
	NR41, NR42, NR43, NR44       uint8
	NR50, NR51, NR52             uint8
	WaveRAM                      [waveRAMSize]uint8

	HostSampleRate int
}

// SaveState returns a gob-encoded snapshot of the APU's audible state: the
// four channel generators, the frame sequencer, the highpass filter charge,
// and every NRxx register plus wave RAM.
func (a *APU) SaveState() []byte {
	var buf bytes.Buffer
	s := snapshot{
		Enabled:        a.enabled,
		VinLeft:        a.vinLeft,
		VinRight:       a.vinRight,
		VolLeft:        a.volLeft,
		VolRight:       a.volRight,
		VinSample:      a.vinSample,
		HighpassMode:   a.highpassMode,
		LeftCharge:     a.leftCharge,
		RightCharge:    a.rightCharge,
		Step:           a.step,
		NR10:           a.NR10, NR11: a.NR11, NR12: a.NR12, NR13: a.NR13, NR14: a.NR14,
		NR21:           a.NR21, NR22: a.NR22, NR23: a.NR23, NR24: a.NR24,
		NR30:           a.NR30, NR31: a.NR31, NR32: a.NR32, NR33: a.NR33, NR34: a.NR34,
		NR41:           a.NR41, NR42: a.NR42, NR43: a.NR43, NR44: a.NR44,
		NR50:           a.NR50, NR51: a.NR51, NR52: a.NR52,
		WaveRAM:        a.waveRAM,
		HostSampleRate: a.hostSampleRate,
	}
	for i := range a.ch {
		s.Channels[i] = snapshotChannel(&a.ch[i])
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState. The in-flight PCM
// buffer and mixing accumulators are reset rather than restored, since they
// hold host-timing-dependent partial samples rather than guest state.
func (a *APU) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	a.enabled = s.Enabled
	a.vinLeft, a.vinRight = s.VinLeft, s.VinRight
	a.volLeft, a.volRight = s.VolLeft, s.VolRight
	a.vinSample = s.VinSample
	a.highpassMode = s.HighpassMode
	a.leftCharge, a.rightCharge = s.LeftCharge, s.RightCharge
	a.step = s.Step
	a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = s.NR10, s.NR11, s.NR12, s.NR13, s.NR14
	a.NR21, a.NR22, a.NR23, a.NR24 = s.NR21, s.NR22, s.NR23, s.NR24
	a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = s.NR30, s.NR31, s.NR32, s.NR33, s.NR34
	a.NR41, a.NR42, a.NR43, a.NR44 = s.NR41, s.NR42, s.NR43, s.NR44
	a.NR50, a.NR51, a.NR52 = s.NR50, s.NR51, s.NR52
	a.waveRAM = s.WaveRAM
	if s.HostSampleRate > 0 {
		a.SetSampleRate(s.HostSampleRate)
	}
	for i := range a.ch {
		s.Channels[i].restore(&a.ch[i])
	}
	a.pcmBuffer = a.pcmBuffer[:0]
	a.pcmCursor = 0
	a.mixLeftAcc, a.mixRightAcc, a.mixAccumCycles = 0, 0, 0
	a.pcmCycleAcc = 0
	return nil
}
