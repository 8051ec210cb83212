package escalation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/notify"
)

// Contacts are the destinations for one patient's notifications.
type Contacts struct {
	UserEmail     string
	FamilyPhone   string
	ProviderEmail string
}

// ContactProvider resolves a patient's notification contacts.
type ContactProvider interface {
	Contacts(ctx context.Context, patientID uuid.UUID) (Contacts, error)
}

// StaticContacts is a ContactProvider returning the same contacts for
// every patient. Useful for tests and single-user deployments.
type StaticContacts Contacts

func (s StaticContacts) Contacts(_ context.Context, _ uuid.UUID) (Contacts, error) {
	return Contacts(s), nil
}

// NotifyDispatcher delivers assessment actions through the notify
// manager. Each action fans out to its audience; delivery failures for
// one audience do not stop the others.
type NotifyDispatcher struct {
	manager  *notify.Manager
	contacts ContactProvider
	logger   zerolog.Logger
}

func NewNotifyDispatcher(manager *notify.Manager, contacts ContactProvider, logger zerolog.Logger) *NotifyDispatcher {
	return &NotifyDispatcher{manager: manager, contacts: contacts, logger: logger}
}

// Dispatch sends the notifications the assessment's level mandates.
func (d *NotifyDispatcher) Dispatch(ctx context.Context, a *Assessment) error {
	contacts, err := d.contacts.Contacts(ctx, a.PatientID)
	if err != nil {
		return fmt.Errorf("resolve contacts: %w", err)
	}

	data := map[string]string{
		"patient_name":    a.PatientID.String(),
		"medication":      a.MedicationID.String(),
		"missed_count":    strconv.Itoa(a.MissedCount),
		"elapsed_minutes": strconv.Itoa(a.ElapsedMinutes),
	}

	var firstErr error
	send := func(templateID, recipient string) {
		if recipient == "" {
			return
		}
		if _, err := d.manager.SendFromTemplate(ctx, templateID, data, recipient); err != nil {
			d.logger.Warn().Err(err).Str("template", templateID).Str("recipient", recipient).Msg("notification delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, action := range a.Actions {
		switch action {
		case "notify_user":
			send("missed-dose-alert", contacts.UserEmail)
		case "notify_family":
			send("missed-dose-urgent", contacts.FamilyPhone)
		case "notify_provider":
			send("missed-dose-provider", contacts.ProviderEmail)
		case "notify_all":
			send("emergency-escalation", contacts.UserEmail)
			send("emergency-escalation", contacts.FamilyPhone)
			send("emergency-escalation", contacts.ProviderEmail)
		case "activate_emergency_access":
			d.logger.Info().Str("patient_id", a.PatientID.String()).Msg("emergency access activated")
		default:
			d.logger.Warn().Str("action", action).Msg("unknown escalation action")
		}
	}
	return firstErr
}
