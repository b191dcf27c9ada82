package services

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/assert"
)

func TestStatusReporter(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	testClock := clock.NewTestClock(start)
	reporter := NewStatusReporter(testClock, time.Minute)

	assert.True(t, reporter.Due(0.5), "first status is always due")
	reporter.MarkReported(0.5)

	assert.False(t, reporter.Due(0.5))

	testClock.SetTime(start.Add(59 * time.Second))
	assert.False(t, reporter.Due(0.5))
	assert.True(t, reporter.Due(0.51), "ratio change is reported immediately")

	testClock.SetTime(start.Add(time.Minute))
	assert.True(t, reporter.Due(0.5))

	reporter.MarkReported(0.5)
	assert.False(t, reporter.Due(0.5))
}
