package medication

import (
	"context"

	"github.com/google/uuid"

	"github.com/meditrack/meditrack/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(m *Medication) error {
	if m.PatientID == uuid.Nil {
		return apperr.Validation("patient_id", "is required")
	}
	if m.NormalizedName() == "" {
		return apperr.Validation("name", "is required")
	}
	if m.DosageAmount <= 0 {
		return apperr.Validation("dosage_amount", "must be positive, got %g", m.DosageAmount)
	}
	if m.DosageUnit == "" {
		return apperr.Validation("dosage_unit", "is required")
	}
	if len(m.ScheduleTimes) == 0 {
		return apperr.Validation("schedule_times", "at least one dose time is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	m.SortSchedule()
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	m.SortSchedule()
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
