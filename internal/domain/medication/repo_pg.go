package medication

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the Postgres-backed medication repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const medCols = `id, patient_id, name, dosage_amount, dosage_unit, schedule_times,
	fda_identifier, herb_identifier, created_at, updated_at`

// schedule_times is a text[] of "HH:MM" values; parse on scan so the
// rest of the code never sees raw strings.
func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	var times []string
	err := row.Scan(&m.ID, &m.PatientID, &m.Name, &m.DosageAmount, &m.DosageUnit, &times,
		&m.FDAIdentifier, &m.HerbIdentifier, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	for _, s := range times {
		t, perr := ParseTimeOfDay(s)
		if perr != nil {
			return nil, fmt.Errorf("medication %s has malformed schedule time %q", m.ID, s)
		}
		m.ScheduleTimes = append(m.ScheduleTimes, t)
	}
	return &m, nil
}

func scheduleStrings(m *Medication) []string {
	out := make([]string, len(m.ScheduleTimes))
	for i, t := range m.ScheduleTimes {
		out[i] = t.String()
	}
	return out
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medication (id, patient_id, name, dosage_amount, dosage_unit,
			schedule_times, fda_identifier, herb_identifier)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.PatientID, m.Name, m.DosageAmount, m.DosageUnit,
		scheduleStrings(m), m.FDAIdentifier, m.HerbIdentifier)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := scanMedication(r.pool.QueryRow(ctx,
		`SELECT `+medCols+` FROM medication WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("medication %s not found", id)
	}
	return m, err
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE medication SET dosage_amount=$2, dosage_unit=$3, schedule_times=$4,
			fda_identifier=$5, herb_identifier=$6, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.DosageAmount, m.DosageUnit, scheduleStrings(m),
		m.FDAIdentifier, m.HerbIdentifier)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medication WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+medCols+` FROM medication
		WHERE patient_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Medication
	for rows.Next() {
		m, serr := scanMedication(rows)
		if serr != nil {
			return nil, 0, serr
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}
