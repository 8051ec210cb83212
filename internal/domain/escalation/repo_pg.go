package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type historyPG struct {
	pool *pgxpool.Pool
}

// NewHistoryPG returns a HistoryProvider backed by the
// missed_dose_event table.
func NewHistoryPG(pool *pgxpool.Pool) HistoryProvider {
	return &historyPG{pool: pool}
}

func (h *historyPG) CountMissedDoses(ctx context.Context, patientID, medicationID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := h.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM missed_dose_event
		WHERE patient_id = $1 AND medication_id = $2 AND missed_at >= $3`,
		patientID, medicationID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count missed doses: %w", err)
	}
	return count, nil
}
