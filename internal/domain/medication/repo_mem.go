package medication

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemRepo is a thread-safe in-memory Repository used by tests and by
// deployments running without a database.
type MemRepo struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*Medication
	// insertion order for deterministic listing
	order []uuid.UUID
}

func NewMemRepo() *MemRepo {
	return &MemRepo{data: make(map[uuid.UUID]*Medication)}
}

func (r *MemRepo) Create(_ context.Context, m *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.New()
	r.data[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.data[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("medication %s not found", id)
}

func (r *MemRepo) Update(_ context.Context, m *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[m.ID]; !ok {
		return fmt.Errorf("medication %s not found", m.ID)
	}
	r.data[m.ID] = m
	return nil
}

func (r *MemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *MemRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Medication
	for _, id := range r.order {
		m, ok := r.data[id]
		if !ok || m.PatientID != patientID {
			continue
		}
		matched = append(matched, m)
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
