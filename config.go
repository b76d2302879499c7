package gbcore

import "github.com/pixelpocket/gbcore/model"

// HighpassMode mirrors audio.HighpassOff/Accurate/DCRemoving without
// importing the audio package's constants directly into the public API.
type HighpassMode int

const (
	HighpassOff HighpassMode = iota
	HighpassAccurate
	HighpassDCRemoving
)

// ColorCorrectionMode mirrors video.ColorCorrection* without importing the
// video package's constants directly into the public API (spec.md 6
// set_color_correction_mode).
type ColorCorrectionMode int

const (
	ColorCorrectionDisabled ColorCorrectionMode = iota
	ColorCorrectionCorrectCurves
	ColorCorrectionModern
	ColorCorrectionPreserveBrightness
)

// Config is passed to New, mirroring the teacher's New/NewWithFile
// constructors plus the urfave/cli flag surface in cmd/gbcore-term's
// main.go (spec.md 6's ambient "Configuration" convention). Only knobs
// that wire to real functionality are exposed; palette and border mode are
// not implemented by any component in this module (no host border
// compositor or guest-palette override path) so they are left out rather
// than carried as dead fields. The clock multiplier IS wired — see
// Machine.SetClockMultiplier — but it's a runtime setter rather than a
// construction-time Config field, since spec.md 6 lists it alongside the
// other post-construction set_* operations; ColorCorrection could equally
// be runtime-only but is harmless to set once at construction since most
// hosts pick a fixed mode for the session.
type Config struct {
	Model model.Model

	// SampleRate is the host audio sample rate passed to the APU's pull-model
	// GetSamples (spec.md 6 set_sample_rate).
	SampleRate int

	// Highpass selects the APU's DC-offset removal behavior (spec.md 6
	// set_highpass_filter_mode).
	Highpass HighpassMode

	// Turbo holds the set_turbo_mode setting (spec.md 6). It is stored
	// only: neither the core nor the demo frontend reads it, so Run/RunFrame
	// and the frontend's real-time throttling are unaffected by it.
	Turbo bool

	// RenderingDisabled suppresses PPU framebuffer writes while timing
	// continues (spec.md 6 set_rendering_disabled).
	RenderingDisabled bool

	// ColorCorrection selects the CGB BGR555->RGB888 gamma curve (spec.md 6
	// set_color_correction_mode); it has no effect on DMG.
	ColorCorrection ColorCorrectionMode

	// BootROM is optional boot-ROM overlay bytes (spec.md 6 boot_rom_load
	// host callback); provisioning is a host responsibility, nil skips the
	// overlay and the machine starts at the post-boot-ROM entry point.
	BootROM []byte
}

// DefaultConfig returns a Config with the DMG model and a 44100Hz sample
// rate, matching audio.New's default.
func DefaultConfig() Config {
	return Config{Model: model.DMG, SampleRate: 44100, Highpass: HighpassOff}
}
