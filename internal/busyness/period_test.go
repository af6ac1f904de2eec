package busyness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 12, hour, minute, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"midnight is off-peak", at(0, 0), "off-peak"},
		{"early morning is off-peak", at(6, 59), "off-peak"},
		{"breakfast start is inclusive", at(7, 0), "breakfast"},
		{"mid breakfast", at(8, 15), "breakfast"},
		{"breakfast end is inclusive", at(9, 30), "breakfast"},
		{"just after breakfast", at(9, 31), "off-peak"},
		{"lunch start", at(12, 0), "lunch"},
		{"lunch end", at(14, 30), "lunch"},
		{"between lunch and snacks", at(15, 0), "off-peak"},
		{"snacks start", at(16, 0), "snacks"},
		{"snacks end", at(18, 0), "snacks"},
		{"dinner start", at(19, 0), "dinner"},
		{"dinner end", at(21, 30), "dinner"},
		{"late night is off-peak", at(23, 45), "off-peak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePeriod(tt.now).Name)
		})
	}
}

func TestResolvePeriodAlwaysReturnsConfig(t *testing.T) {
	// Every minute of the day must resolve to a usable configuration.
	for minutes := 0; minutes < 24*60; minutes++ {
		p := ResolvePeriod(at(minutes/60, minutes%60))
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.Thresholds.Busy, p.Thresholds.Empty)
		assert.GreaterOrEqual(t, p.Alpha, 0.0)
		assert.LessOrEqual(t, p.Alpha, 1.0)
	}
}

func TestPeriodWeightsDifferFromOffPeak(t *testing.T) {
	// Meal periods weigh busy votes more heavily than off-peak; this is
	// the demand-aware sensitivity the engine depends on.
	lunch := ResolvePeriod(at(13, 0))
	offPeak := ResolvePeriod(at(3, 0))
	assert.Greater(t, lunch.Weights.Busy, offPeak.Weights.Busy)
	assert.Greater(t, lunch.Alpha, offPeak.Alpha)
}
