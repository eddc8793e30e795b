package utils

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"go.uber.org/zap"
)

// Mailer delivers a single HTML message. A nil error means the provider accepted it.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// EmailManager sends mail through an authenticated SMTP relay
type EmailManager struct {
	Config *SMTPConfig
}

func NewEmailManager(config *SMTPConfig) *EmailManager {
	return &EmailManager{
		Config: config,
	}
}

// Send performs the SMTP handshake and delivery
func (em *EmailManager) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	smtpAddr := fmt.Sprintf("%s:%d", em.Config.Host, em.Config.Port)
	from := em.Config.From
	if from == "" {
		from = em.Config.User
	}

	// RFC 822 headers, CRLF separated, blank line before the body
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}
	message := strings.Join(headers, "\r\n")

	var auth smtp.Auth
	if em.Config.User != "" {
		auth = smtp.PlainAuth("", em.Config.User, em.Config.Password, em.Config.Host)
	}
	return smtp.SendMail(smtpAddr, auth, from, []string{to}, []byte(message))
}

// LogMailer writes messages to the log instead of sending them. Only wired
// outside production, where it is the way to read a code without an SMTP relay.
type LogMailer struct {
	Logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.Logger.Info("mail not sent (development mailer)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", htmlBody))
	return nil
}

// SentMail is a message captured by MemoryMailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MemoryMailer records messages; Fail makes every Send return that error.
type MemoryMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Fail error
}

func (m *MemoryMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *MemoryMailer) Last() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentMail{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

func (m *MemoryMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// OTPEmail builds the subject and HTML body for a one-time code.
func OTPEmail(appName string, purpose models.OTPPurpose, code string, ttl time.Duration) (string, string) {
	var subject, intro string
	switch purpose {
	case models.PurposeSignupVerification:
		subject = fmt.Sprintf("%s - Your Signup Verification Code", appName)
		intro = fmt.Sprintf("Thank you for signing up for %s! To complete your registration, please use the verification code below:", appName)
	case models.PurposeAdminLogin:
		subject = fmt.Sprintf("%s - Admin Sign-in Code", appName)
		intro = "A sign-in to an administrator account needs one more step. Enter this code to continue:"
	case models.PurposePasswordReset:
		subject = fmt.Sprintf("%s - Password Reset Code", appName)
		intro = "We received a request to reset your password. Use the code below to continue:"
	default:
		subject = fmt.Sprintf("%s - Your Login Verification Code", appName)
		intro = fmt.Sprintf("You requested a code to log in to %s. Please use the verification code below:", appName)
	}

	minutes := int(ttl.Round(time.Minute) / time.Minute)
	body := fmt.Sprintf(
		"<p>Hello,</p>"+
			"<p>%s</p>"+
			"<p style=\"font-size:24px;letter-spacing:6px\"><strong>%s</strong></p>"+
			"<p>This code will expire in %d minutes. If you did not request it, you can ignore this email.</p>"+
			"<p>Best regards,<br>The %s Team</p>",
		html.EscapeString(intro), html.EscapeString(code), minutes, html.EscapeString(appName))
	return subject, body
}
