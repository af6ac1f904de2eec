package domain

// Weights maps each status label to the numeric weight a vote carries
// when cast during the period.
type Weights struct {
	Empty    float64 `json:"empty"`
	Moderate float64 `json:"moderate"`
	Busy     float64 `json:"busy"`
}

// For returns the weight for a status label.
func (w Weights) For(s Status) float64 {
	switch s {
	case StatusEmpty:
		return w.Empty
	case StatusBusy:
		return w.Busy
	default:
		return w.Moderate
	}
}

// Thresholds are the exclusive classification bounds: a score below
// Empty classifies as empty, above Busy as busy, anything else
// (including exact equality) as moderate.
type Thresholds struct {
	Empty float64 `json:"empty"`
	Busy  float64 `json:"busy"`
}

// PeriodConfig is a named wall-clock window with its own weights, blend
// factor and thresholds. Start/End are minutes since midnight, both
// inclusive. The off-peak default carries no window and matches
// whenever no named period does.
type PeriodConfig struct {
	Name       string     `json:"name"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Weights    Weights    `json:"weights"`
	Alpha      float64    `json:"alpha"`
	Thresholds Thresholds `json:"thresholds"`
}

// MealPeriods is the canonical period table, tested in declaration
// order with first-match-wins. Windows are not assumed non-overlapping.
var MealPeriods = []PeriodConfig{
	{
		Name:       "breakfast",
		Start:      7 * 60,
		End:        9*60 + 30,
		Weights:    Weights{Empty: 0, Moderate: 1, Busy: 2.5},
		Alpha:      0.7,
		Thresholds: Thresholds{Empty: 0.5, Busy: 1.8},
	},
	{
		Name:       "lunch",
		Start:      12 * 60,
		End:        14*60 + 30,
		Weights:    Weights{Empty: 0, Moderate: 1, Busy: 3},
		Alpha:      0.75,
		Thresholds: Thresholds{Empty: 0.4, Busy: 2.2},
	},
	{
		Name:       "snacks",
		Start:      16 * 60,
		End:        18 * 60,
		Weights:    Weights{Empty: 0, Moderate: 1.2, Busy: 2},
		Alpha:      0.65,
		Thresholds: Thresholds{Empty: 0.7, Busy: 1.5},
	},
	{
		Name:       "dinner",
		Start:      19 * 60,
		End:        21*60 + 30,
		Weights:    Weights{Empty: 0, Moderate: 1, Busy: 2.8},
		Alpha:      0.7,
		Thresholds: Thresholds{Empty: 0.5, Busy: 2.0},
	},
}

// OffPeak is the default configuration when no meal period matches.
var OffPeak = PeriodConfig{
	Name:       "off-peak",
	Weights:    Weights{Empty: 0, Moderate: 1, Busy: 1.5},
	Alpha:      0.5,
	Thresholds: Thresholds{Empty: 0.8, Busy: 1.3},
}
