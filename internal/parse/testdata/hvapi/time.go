package hvapi

import "time"

// Ticks is a raw hardware tick count.
type Ticks uint64

// TimeAPI exposes the host timer.
//
//apibind:interface
type TimeAPI interface {
	// CurrentTicks reads the hardware counter.
	CurrentTicks() Ticks
	// TicksToDuration converts ticks to wall time.
	TicksToDuration(t Ticks) time.Duration
	// ReadCounterFrequency reads the architectural counter frequency.
	//
	//apibind:build amd64 || arm64
	ReadCounterFrequency() uint64
}
