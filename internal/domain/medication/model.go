package medication

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/meditrack/internal/platform/apperr"
)

// TimeOfDay is a wall-clock dose time with minute resolution. It
// marshals as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, apperr.Validation("schedule_times", "invalid time %q, want HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalJSON encodes the time as a quoted "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Medication maps to the medication table. Identity is immutable;
// dosage and schedule are mutable. ScheduleTimes is kept sorted
// ascending by the service so timing analysis sees a canonical order.
type Medication struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	PatientID      uuid.UUID   `db:"patient_id" json:"patient_id"`
	Name           string      `db:"name" json:"name"`
	DosageAmount   float64     `db:"dosage_amount" json:"dosage_amount"`
	DosageUnit     string      `db:"dosage_unit" json:"dosage_unit"`
	ScheduleTimes  []TimeOfDay `db:"schedule_times" json:"schedule_times"`
	FDAIdentifier  *string     `db:"fda_identifier" json:"fda_identifier,omitempty"`
	HerbIdentifier *string     `db:"herb_identifier" json:"herb_identifier,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// NormalizedName returns the lower-cased, trimmed name used as the
// cache and matching key.
func (m *Medication) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(m.Name))
}

// SortSchedule orders the schedule times ascending.
func (m *Medication) SortSchedule() {
	sort.Slice(m.ScheduleTimes, func(i, j int) bool {
		return m.ScheduleTimes[i].Minutes() < m.ScheduleTimes[j].Minutes()
	})
}
