// Package notify delivers escalation notifications over email and SMS
// with template rendering and in-memory delivery records.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Channel is the delivery channel for a message.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Message is a single outbound notification.
type Message struct {
	ID        string            `json:"id"`
	Channel   Channel           `json:"channel"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject,omitempty"`
	Body      string            `json:"body"`
	Priority  string            `json:"priority"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template defines a reusable notification template with {{key}}
// placeholders.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in
// medication-safety templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "missed-dose-alert",
			Name:    "Missed Dose Alert",
			Subject: "Missed dose: {{medication}}",
			Body:    "{{patient_name}} missed the {{time}} dose of {{medication}}. {{missed_count}} dose(s) missed in the last day.",
			Channel: ChannelEmail,
		},
		{
			ID:      "missed-dose-urgent",
			Name:    "Missed Dose Urgent",
			Subject: "URGENT: repeated missed doses of {{medication}}",
			Body:    "{{patient_name}} has missed {{missed_count}} doses of {{medication}}; the last dose is {{elapsed_minutes}} minutes overdue. Please check in now.",
			Channel: ChannelSMS,
		},
		{
			ID:      "missed-dose-provider",
			Name:    "Missed Dose Provider Notice",
			Subject: "Patient adherence alert: {{medication}}",
			Body:    "{{patient_name}} has missed {{missed_count}} doses of {{medication}}; the last dose is {{elapsed_minutes}} minutes overdue.",
			Channel: ChannelEmail,
		},
		{
			ID:      "severe-interaction-warning",
			Name:    "Severe Interaction Warning",
			Subject: "Severe interaction detected: {{medication1}} and {{medication2}}",
			Body:    "A severe interaction between {{medication1}} and {{medication2}} was detected for {{patient_name}}. {{description}}",
			Channel: ChannelEmail,
		},
		{
			ID:      "emergency-escalation",
			Name:    "Emergency Escalation",
			Subject: "EMERGENCY: immediate attention required for {{patient_name}}",
			Body:    "Emergency escalation for {{patient_name}} regarding {{medication}}. Emergency access has been activated. Contact the patient immediately.",
			Channel: ChannelSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement
// using the supplied data map. Keys present in the template but absent
// from data are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// channelFor returns the template's preferred delivery channel.
func (e *TemplateEngine) channelFor(templateID string) Channel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Channel
	}
	return ChannelEmail
}

// Manager orchestrates sending, storage, and retrieval of messages.
type Manager struct {
	emailSender EmailSender
	smsSender   SMSSender
	templates   *TemplateEngine
	mu          sync.RWMutex
	messages    map[string]*Message
}

// NewManager constructs a Manager.
func NewManager(email EmailSender, sms SMSSender, tpl *TemplateEngine) *Manager {
	return &Manager{
		emailSender: email,
		smsSender:   sms,
		templates:   tpl,
		messages:    make(map[string]*Message),
	}
}

// Send dispatches a message through its channel, assigns an ID and
// timestamps, and records the outcome in memory.
func (m *Manager) Send(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now().UTC()
	msg.Status = "pending"

	var sendErr error
	switch msg.Channel {
	case ChannelEmail:
		sendErr = m.emailSender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)
	case ChannelSMS:
		sendErr = m.smsSender.SendSMS(ctx, msg.Recipient, msg.Body)
	default:
		sendErr = fmt.Errorf("unsupported channel: %s", msg.Channel)
	}

	if sendErr != nil {
		msg.Status = "failed"
		msg.Error = sendErr.Error()
	} else {
		msg.Status = "sent"
		sentAt := time.Now().UTC()
		msg.SentAt = &sentAt
	}

	m.mu.Lock()
	m.messages[msg.ID] = msg
	m.mu.Unlock()

	return sendErr
}

// SendFromTemplate renders a template and sends the resulting message.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Message, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	msg := &Message{
		Channel:   m.templates.channelFor(templateID),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Priority:  "normal",
	}
	if err := m.Send(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// Get retrieves a message by ID.
func (m *Manager) Get(id string) (*Message, error) {
	m.mu.RLock()
	msg, ok := m.messages[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("message %q not found", id)
	}
	return msg, nil
}

// Retry re-sends a failed message. Returns an error if the message is
// not in failed status.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	msg, ok := m.messages[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message %q not found", id)
	}
	if msg.Status != "failed" {
		return fmt.Errorf("message %q is not in failed status (current: %s)", id, msg.Status)
	}

	var sendErr error
	switch msg.Channel {
	case ChannelEmail:
		sendErr = m.emailSender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)
	case ChannelSMS:
		sendErr = m.smsSender.SendSMS(ctx, msg.Recipient, msg.Body)
	default:
		sendErr = fmt.Errorf("unsupported channel: %s", msg.Channel)
	}

	m.mu.Lock()
	if sendErr != nil {
		msg.Status = "failed"
		msg.Error = sendErr.Error()
	} else {
		msg.Status = "sent"
		sentAt := time.Now().UTC()
		msg.SentAt = &sentAt
		msg.Error = ""
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns message counts grouped by status.
func (m *Manager) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := make(map[string]int)
	for _, msg := range m.messages {
		stats[msg.Status]++
	}
	return stats
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}
