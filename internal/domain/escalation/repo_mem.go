package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type missedEvent struct {
	patientID    uuid.UUID
	medicationID uuid.UUID
	missedAt     time.Time
}

// MemHistory is an in-memory HistoryProvider for tests and single-node
// deployments without a database.
type MemHistory struct {
	mu     sync.RWMutex
	events []missedEvent
}

func NewMemHistory() *MemHistory {
	return &MemHistory{}
}

// Record stores one missed-dose event.
func (m *MemHistory) Record(patientID, medicationID uuid.UUID, missedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, missedEvent{patientID: patientID, medicationID: medicationID, missedAt: missedAt})
}

func (m *MemHistory) CountMissedDoses(_ context.Context, patientID, medicationID uuid.UUID, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.events {
		if e.patientID == patientID && e.medicationID == medicationID && !e.missedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
