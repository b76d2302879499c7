package gbcore

import "errors"

// Error taxonomy per spec.md 7: fatal init aborts construction; bad input
// rejects a load without mutating state; runtime hints/soft errors are
// logged and otherwise swallowed by the component that hits them (the
// guest-observable value stays hardware-accurate), so only the first two
// categories surface as returned errors here.

// Fatal init errors: the host must not use the machine if New returns one
// of these.
var (
	ErrNilConfig   = errors.New("gbcore: nil config")
	ErrAllocFailed = errors.New("gbcore: failed to allocate machine state")
)

// Bad input errors: malformed or truncated loader input. Loaders return
// these without mutating existing machine state. ISX malformation uses
// cartridge.ErrMalformedISX directly (wrapped with %w), so callers can
// errors.Is against a single sentinel regardless of which layer detected it.
var (
	ErrEmptyROM           = errors.New("gbcore: empty ROM buffer")
	ErrTruncatedSaveState = errors.New("gbcore: truncated save state")
	ErrBadMagic           = errors.New("gbcore: save state magic mismatch")
	ErrVersionMismatch    = errors.New("gbcore: save state version mismatch")
	ErrUnknownSection     = errors.New("gbcore: unknown save state section")
)
