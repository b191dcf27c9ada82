package services

import (
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// StatusReporter decides when the steady-state status line is due: on the
// first tick, whenever the ratio moved since the last line, and otherwise
// once per interval.
type StatusReporter struct {
	clock     clock.Clock
	interval  time.Duration
	reported  bool
	lastRatio float64
	lastAt    time.Time
}

func NewStatusReporter(clk clock.Clock, interval time.Duration) *StatusReporter {
	return &StatusReporter{
		clock:    clk,
		interval: interval,
	}
}

func (r *StatusReporter) Due(ratio float64) bool {
	if !r.reported {
		return true
	}

	return ratio != r.lastRatio || r.clock.Now().Sub(r.lastAt) >= r.interval
}

func (r *StatusReporter) MarkReported(ratio float64) {
	r.reported = true
	r.lastRatio = ratio
	r.lastAt = r.clock.Now()
}
