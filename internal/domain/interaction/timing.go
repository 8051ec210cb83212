package interaction

import (
	"fmt"

	"github.com/meditrack/meditrack/internal/domain/medication"
)

// checkPairTiming compares every scheduled dose of m1 against every
// scheduled dose of m2 and reports each pair closer than minInterval
// minutes. Distance is absolute within the same day; doses exactly
// minInterval apart do not conflict.
func checkPairTiming(m1, m2 medication.Medication, minInterval int) []TimingConflict {
	var conflicts []TimingConflict
	for _, t1 := range m1.ScheduleTimes {
		for _, t2 := range m2.ScheduleTimes {
			apart := t1.Minutes() - t2.Minutes()
			if apart < 0 {
				apart = -apart
			}
			if apart >= minInterval {
				continue
			}
			earlier := t1
			if t2.Minutes() < t1.Minutes() {
				earlier = t2
			}
			conflicts = append(conflicts, TimingConflict{
				Medication1:     m1.Name,
				Medication2:     m2.Name,
				Severity:        TimingConflictSeverity,
				ConflictingTime: earlier.String(),
				MinutesApart:    apart,
				Recommendation: fmt.Sprintf(
					"Space %s and %s at least %d minutes apart; doses at %s and %s are only %d minutes apart.",
					m1.Name, m2.Name, minInterval, t1.String(), t2.String(), apart),
			})
		}
	}
	return conflicts
}
