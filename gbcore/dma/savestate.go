package dma

import (
	"bytes"
	"encoding/gob"
)

// oamSnapshot mirrors OAM's state-machine fields for save-state serialization
// (spec.md 6 "dma" section).
type oamSnapshot struct {
	Source    uint8
	Active    bool
	Warmup    int
	StepsLeft int
	DestCount uint8

	RestartPending bool
	RestartSource  uint8

	ByteTickCounter int
	LastOpcodeByte  uint8
}

// SaveState returns a gob-encoded snapshot of the OAM DMA controller.
func (o *OAM) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(oamSnapshot{
		Source:          o.source,
		Active:          o.active,
		Warmup:          o.warmup,
		StepsLeft:       o.stepsLeft,
		DestCount:       o.destCount,
		RestartPending:  o.restartPending,
		RestartSource:   o.restartSource,
		ByteTickCounter: o.byteTickCounter,
		LastOpcodeByte:  o.lastOpcodeByte,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (o *OAM) LoadState(data []byte) error {
	var s oamSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	o.source = s.Source
	o.active = s.Active
	o.warmup = s.Warmup
	o.stepsLeft = s.StepsLeft
	o.destCount = s.DestCount
	o.restartPending = s.RestartPending
	o.restartSource = s.RestartSource
	o.byteTickCounter = s.ByteTickCounter
	o.lastOpcodeByte = s.LastOpcodeByte
	return nil
}

// hdmaSnapshot mirrors HDMA's state-machine fields.
type hdmaSnapshot struct {
	Source, Dest uint16
	Length       uint8
	Mode         HDMAMode
	Active       bool
	Starting     bool
	BlockCycles  int
}

// SaveState returns a gob-encoded snapshot of the CGB HDMA engine.
func (h *HDMA) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(hdmaSnapshot{
		Source:      h.source,
		Dest:        h.dest,
		Length:      h.length,
		Mode:        h.mode,
		Active:      h.active,
		Starting:    h.starting,
		BlockCycles: h.blockCycles,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (h *HDMA) LoadState(data []byte) error {
	var s hdmaSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	h.source = s.Source
	h.dest = s.Dest
	h.length = s.Length
	h.mode = s.Mode
	h.active = s.Active
	h.starting = s.Starting
	h.blockCycles = s.BlockCycles
	return nil
}
