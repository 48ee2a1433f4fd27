package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"itemvault/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ProjectName:   "Itemvault",
		ServerHost:    "http://localhost:8080",
		ResetTokenTTL: 48 * time.Hour,
	}
}

func TestBuildTestEmail(t *testing.T) {
	email, err := BuildTestEmail(testConfig(), "a@x.com")
	if err != nil {
		t.Fatalf("BuildTestEmail: %v", err)
	}
	if email.Subject != "Itemvault - Test email" {
		t.Errorf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.HTML, "a@x.com") {
		t.Error("expected recipient in body")
	}
}

func TestBuildResetPasswordEmail(t *testing.T) {
	email, err := BuildResetPasswordEmail(testConfig(), "a@x.com", "tok123")
	if err != nil {
		t.Fatalf("BuildResetPasswordEmail: %v", err)
	}
	if !strings.Contains(email.Subject, "Password recovery") {
		t.Errorf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.HTML, "http://localhost:8080/reset-password?token=tok123") {
		t.Error("expected reset link with token in body")
	}
	if !strings.Contains(email.HTML, "48 hours") {
		t.Error("expected validity window in body")
	}
}

func TestBuildNewAccountEmail(t *testing.T) {
	email, err := BuildNewAccountEmail(testConfig(), "a@x.com", "initial-pw")
	if err != nil {
		t.Fatalf("BuildNewAccountEmail: %v", err)
	}
	if !strings.Contains(email.Subject, "New account") {
		t.Errorf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.HTML, "initial-pw") {
		t.Error("expected initial password in body")
	}
}

func TestSenderDisabledNoOp(t *testing.T) {
	// No SMTP host configured: Send must skip quietly, not error.
	sender := NewSender(testConfig())
	email := &Email{Subject: "s", HTML: "<p>x</p>"}

	if err := sender.Send(context.Background(), "a@x.com", email); err != nil {
		t.Fatalf("Send with emails disabled: %v", err)
	}
}
