package hostimpl

import "time"

// Ticks mirrors the declaring package's tick type.
type Ticks = uint64

// TimeAPI is a stand-in for a declared interface.
type TimeAPI interface {
	CurrentTicks() Ticks
	TicksToDuration(t Ticks) time.Duration
}

type hostTime struct{}

//apibind:implement
var _ TimeAPI = hostTime{}

func (hostTime) CurrentTicks() Ticks { return 0 }

func (hostTime) TicksToDuration(t Ticks) time.Duration {
	return time.Duration(t)
}
