package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/apperr"
)

// SevereRiskChecker reports whether the patient's current regimen
// carries a severe interaction requiring immediate attention. A
// positive answer overrides the computed level to EMERGENCY.
type SevereRiskChecker interface {
	SevereRisk(ctx context.Context, patientID uuid.UUID) (bool, error)
}

// ComputeLevel maps a missed-dose situation onto the escalation
// ladder. The function is pure: same inputs, same level. EMERGENCY is
// never produced here; it is reserved for the severe-interaction
// override in Evaluate.
func ComputeLevel(missedCount int, elapsed time.Duration, th Thresholds) Level {
	switch {
	case elapsed > th.UrgentAfter || missedCount > th.UrgentMissed:
		return LevelUrgent
	case elapsed > th.AlertAfter || missedCount > th.AlertMissed:
		return LevelAlert
	default:
		return LevelNormal
	}
}

// Service evaluates missed doses against the escalation thresholds and
// dispatches the mandated notifications.
type Service struct {
	history    HistoryProvider
	risk       SevereRiskChecker
	dispatcher Dispatcher
	thresholds Thresholds
	window     time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService wires the escalation service. risk and dispatcher are
// optional; window is how far back missed doses are counted.
func NewService(history HistoryProvider, risk SevereRiskChecker, dispatcher Dispatcher, th Thresholds, window time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		history:    history,
		risk:       risk,
		dispatcher: dispatcher,
		thresholds: th,
		window:     window,
		now:        time.Now,
		logger:     logger,
	}
}

// Evaluate assesses one missed dose. A history lookup failure is a
// system error and propagates; the service never downgrades to NORMAL
// because it could not see the history.
func (s *Service) Evaluate(ctx context.Context, patientID, medicationID uuid.UUID, missedAt time.Time) (*Assessment, error) {
	now := s.now()
	if missedAt.After(now) {
		return nil, apperr.Validation("missed_at", "missed time is in the future")
	}

	count, err := s.history.CountMissedDoses(ctx, patientID, medicationID, now.Add(-s.window))
	if err != nil {
		return nil, apperr.System("count missed doses", err)
	}

	elapsed := now.Sub(missedAt)
	level := ComputeLevel(count, elapsed, s.thresholds)

	if s.risk != nil {
		severe, err := s.risk.SevereRisk(ctx, patientID)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("severe-risk check failed, keeping computed level")
		} else if severe {
			level = LevelEmergency
		}
	}

	a := &Assessment{
		PatientID:      patientID,
		MedicationID:   medicationID,
		Level:          level,
		LevelName:      level.String(),
		MissedCount:    count,
		ElapsedMinutes: int(elapsed.Minutes()),
		Actions:        level.Actions(),
		AssessedAt:     now,
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, a); err != nil {
			s.logger.Error().Err(err).Str("level", a.LevelName).Msg("notification dispatch failed")
		}
	}
	return a, nil
}
