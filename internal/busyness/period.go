package busyness

import (
	"time"

	"github.com/pscheid92/messpulse/internal/domain"
)

// ResolvePeriod maps a wall-clock instant to the active period
// configuration. Named periods are tested in declaration order with
// inclusive bounds; the first match wins. When none matches, the
// off-peak default applies. Always returns a value.
//
// Callers must re-resolve on every operation: the active period can
// change between two calls made during the same request.
func ResolvePeriod(now time.Time) domain.PeriodConfig {
	minutes := now.Hour()*60 + now.Minute()
	for _, p := range domain.MealPeriods {
		if minutes >= p.Start && minutes <= p.End {
			return p
		}
	}
	return domain.OffPeak
}
