package notify

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_RenderBuiltIn(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("missed-dose-alert", map[string]string{
		"patient_name": "Alex",
		"medication":   "metformin",
		"time":         "09:00",
		"missed_count": "2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "metformin") {
		t.Errorf("subject not rendered: %q", subject)
	}
	if !strings.Contains(body, "Alex") || !strings.Contains(body, "09:00") {
		t.Errorf("body not rendered: %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("missed-dose-alert", map[string]string{"medication": "aspirin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "{{patient_name}}") {
		t.Errorf("unfilled placeholder should remain: %q", body)
	}
}

func TestManager_SendRecordsOutcome(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	msg := &Message{Channel: ChannelEmail, Recipient: "user@example.com", Subject: "hi", Body: "body"}
	if err := mgr.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Status != "sent" || msg.SentAt == nil {
		t.Errorf("message not marked sent: %+v", msg)
	}
	stored, err := mgr.Get(msg.ID)
	if err != nil {
		t.Fatalf("stored message not found: %v", err)
	}
	if stored.Recipient != "user@example.com" {
		t.Errorf("wrong stored message: %+v", stored)
	}
}

func TestManager_RetryFailedMessage(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	msg := &Message{Channel: ChannelEmail, Recipient: "user@example.com", Body: "body"}
	if err := mgr.Send(context.Background(), msg); err == nil {
		t.Fatal("expected initial send to fail")
	}
	if msg.Status != "failed" {
		t.Fatalf("expected failed status, got %s", msg.Status)
	}

	email.ShouldFail = false
	if err := mgr.Retry(context.Background(), msg.ID); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	stored, _ := mgr.Get(msg.ID)
	if stored.Status != "sent" || stored.Error != "" {
		t.Errorf("retry did not clear failure: %+v", stored)
	}

	if err := mgr.Retry(context.Background(), msg.ID); err == nil {
		t.Error("retrying a sent message should error")
	}
}

func TestManager_SendFromTemplateUsesTemplateChannel(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	mgr := NewManager(email, sms, NewTemplateEngine())

	if _, err := mgr.SendFromTemplate(context.Background(), "missed-dose-urgent", map[string]string{
		"patient_name": "Alex", "medication": "warfarin", "missed_count": "3", "elapsed_minutes": "140",
	}, "+15550100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sms.Calls()) != 1 {
		t.Fatalf("urgent template should go out as SMS, got %d", len(sms.Calls()))
	}
	if len(email.Calls()) != 0 {
		t.Errorf("no email expected, got %+v", email.Calls())
	}
}

func TestManager_Stats(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	_ = mgr.Send(context.Background(), &Message{Channel: ChannelEmail, Recipient: "a@example.com", Body: "x"})
	_ = mgr.Send(context.Background(), &Message{Channel: Channel("fax"), Recipient: "b", Body: "y"})

	stats := mgr.Stats()
	if stats["sent"] != 1 || stats["failed"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
