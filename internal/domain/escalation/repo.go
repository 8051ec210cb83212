package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryProvider answers how many doses of a medication the patient
// has missed since a point in time. Implementations must return an
// error on failure; the caller never substitutes a silent zero.
type HistoryProvider interface {
	CountMissedDoses(ctx context.Context, patientID, medicationID uuid.UUID, since time.Time) (int, error)
}

// Dispatcher delivers the notification actions an assessment mandates.
type Dispatcher interface {
	Dispatch(ctx context.Context, a *Assessment) error
}
