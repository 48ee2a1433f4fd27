// Package mail renders transactional email templates and dispatches them over
// SMTP. Delivery is best-effort: callers log failures instead of failing the
// surrounding request.
package mail

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"itemvault/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Email is a rendered outbound message.
type Email struct {
	Subject string
	HTML    string
}

// render parses and executes a named template from the embedded set.
func render(name string, data map[string]any) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.String(), nil
}

// BuildTestEmail renders the email used to verify SMTP configuration.
func BuildTestEmail(cfg *config.Config, to string) (*Email, error) {
	html, err := render("test_email.html", map[string]any{
		"ProjectName": cfg.ProjectName,
		"Email":       to,
	})
	if err != nil {
		return nil, err
	}
	return &Email{
		Subject: fmt.Sprintf("%s - Test email", cfg.ProjectName),
		HTML:    html,
	}, nil
}

// BuildResetPasswordEmail renders the password-recovery email containing a
// reset link scoped by token.
func BuildResetPasswordEmail(cfg *config.Config, to, token string) (*Email, error) {
	link := fmt.Sprintf("%s/reset-password?token=%s", cfg.ServerHost, token)
	html, err := render("reset_password.html", map[string]any{
		"ProjectName": cfg.ProjectName,
		"Username":    to,
		"Link":        link,
		"ValidHours":  int(cfg.ResetTokenTTL.Hours()),
	})
	if err != nil {
		return nil, err
	}
	return &Email{
		Subject: fmt.Sprintf("%s - Password recovery for user %s", cfg.ProjectName, to),
		HTML:    html,
	}, nil
}

// BuildNewAccountEmail renders the welcome email sent when an administrator
// creates an account.
func BuildNewAccountEmail(cfg *config.Config, to, password string) (*Email, error) {
	html, err := render("new_account.html", map[string]any{
		"ProjectName": cfg.ProjectName,
		"Username":    to,
		"Password":    password,
		"Link":        cfg.ServerHost,
	})
	if err != nil {
		return nil, err
	}
	return &Email{
		Subject: fmt.Sprintf("%s - New account for user %s", cfg.ProjectName, to),
		HTML:    html,
	}, nil
}

// Sender dispatches rendered emails over SMTP.
type Sender struct {
	cfg *config.Config
}

// NewSender creates a Sender bound to the process configuration.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send delivers one message. When email is not configured the send is skipped
// and logged, not treated as an error.
func (s *Sender) Send(ctx context.Context, to string, email *Email) error {
	if !s.cfg.EmailsEnabled() {
		slog.Info("email sending disabled, skipping", "to", to, "subject", email.Subject)
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromEmail); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, email.HTML)

	opts := []gomail.Option{gomail.WithPort(s.cfg.SMTPPort)}
	switch {
	case s.cfg.SMTPSSL:
		opts = append(opts, gomail.WithSSL())
	case s.cfg.SMTPTLS:
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	if s.cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.SMTPUser),
			gomail.WithPassword(s.cfg.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	slog.Info("email sent", "to", to, "subject", email.Subject)
	return nil
}
