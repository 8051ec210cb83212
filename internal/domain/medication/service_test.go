package medication

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/meditrack/meditrack/internal/platform/apperr"
)

func validMedication(patientID uuid.UUID) *Medication {
	return &Medication{
		PatientID:     patientID,
		Name:          "Warfarin",
		DosageAmount:  5,
		DosageUnit:    "mg",
		ScheduleTimes: []TimeOfDay{{21, 0}, {9, 0}},
	}
}

func TestCreate_ValidatesInput(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()
	patientID := uuid.New()

	cases := []struct {
		name   string
		mutate func(m *Medication)
	}{
		{"missing patient", func(m *Medication) { m.PatientID = uuid.Nil }},
		{"empty name", func(m *Medication) { m.Name = "  " }},
		{"zero dosage", func(m *Medication) { m.DosageAmount = 0 }},
		{"missing unit", func(m *Medication) { m.DosageUnit = "" }},
		{"empty schedule", func(m *Medication) { m.ScheduleTimes = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMedication(patientID)
			tc.mutate(m)
			err := svc.Create(ctx, m)
			if !apperr.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreate_SortsSchedule(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()

	m := validMedication(uuid.New())
	if err := svc.Create(ctx, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ScheduleTimes[0].Minutes() > m.ScheduleTimes[1].Minutes() {
		t.Error("expected schedule sorted ascending after create")
	}
	if m.ID == uuid.Nil {
		t.Error("expected ID assigned on create")
	}
}

func TestListByPatient_FiltersAndPaginates(t *testing.T) {
	repo := NewMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	for _, name := range []string{"Warfarin", "Aspirin", "Lisinopril"} {
		m := validMedication(alice)
		m.Name = name
		if err := svc.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := validMedication(bob)
	if err := svc.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	meds, total, err := svc.ListByPatient(ctx, alice, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(meds) != 2 {
		t.Errorf("expected 2 results with limit 2, got %d", len(meds))
	}

	rest, _, err := svc.ListByPatient(ctx, alice, 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("expected 1 result at offset 2, got %d", len(rest))
	}
}
