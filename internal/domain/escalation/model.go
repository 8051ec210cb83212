package escalation

import (
	"time"

	"github.com/google/uuid"
)

// Level is the missed-dose escalation ladder. Levels are comparable:
// higher values demand a wider notification audience.
type Level int

const (
	LevelNormal Level = iota
	LevelAlert
	LevelUrgent
	LevelEmergency
)

func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelAlert:
		return "alert"
	case LevelUrgent:
		return "urgent"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Actions returns the notification actions mandated at this level.
// Every level includes everything the levels below it include.
func (l Level) Actions() []string {
	switch l {
	case LevelAlert:
		return []string{"notify_user", "notify_family"}
	case LevelUrgent:
		return []string{"notify_user", "notify_family", "notify_provider"}
	case LevelEmergency:
		return []string{"notify_all", "activate_emergency_access"}
	default:
		return []string{"notify_user"}
	}
}

// Thresholds are the tunable escalation boundaries. Urgent boundaries
// must sit strictly above alert boundaries.
type Thresholds struct {
	AlertAfter   time.Duration
	UrgentAfter  time.Duration
	AlertMissed  int
	UrgentMissed int
}

// DefaultThresholds returns the standard escalation tuning: alert past
// one hour or more than one recent miss, urgent past two hours or more
// than two recent misses.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AlertAfter:   60 * time.Minute,
		UrgentAfter:  120 * time.Minute,
		AlertMissed:  1,
		UrgentMissed: 2,
	}
}

// Assessment is the full outcome of evaluating one missed dose.
type Assessment struct {
	PatientID      uuid.UUID `json:"patient_id"`
	MedicationID   uuid.UUID `json:"medication_id"`
	Level          Level     `json:"level"`
	LevelName      string    `json:"level_name"`
	MissedCount    int       `json:"missed_count"`
	ElapsedMinutes int       `json:"elapsed_minutes"`
	Actions        []string  `json:"actions"`
	AssessedAt     time.Time `json:"assessed_at"`
}
