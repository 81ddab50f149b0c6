package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/triplane/triplane-api/internal/logging"
)

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromName     string
	fromEmail    string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromName string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromName:     fromName,
		fromEmail:    smtpUser,
	}
}

// SendVerificationCode emails the initial account verification code.
// Designed to be called in a goroutine; the caller logs failures.
func (s *Service) SendVerificationCode(ctx context.Context, toEmail, name, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := renderOTPTemplate(verificationTemplate, name, code)
	if err != nil {
		logger.Error("failed to render verification email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Triplane - Verify Your Account", body); err != nil {
		logger.Error("failed to send verification email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendNewCode emails a replacement verification code after a resend request.
func (s *Service) SendNewCode(ctx context.Context, toEmail, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := renderOTPTemplate(resendTemplate, "", code)
	if err != nil {
		logger.Error("failed to render resend email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Triplane - New Verification Code", body); err != nil {
		logger.Error("failed to send resend email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("new verification code sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	// Build message
	msg := []byte(fmt.Sprintf(
		"From: %q <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromName, s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

const verificationTemplate = `
<div style="font-family: Arial, sans-serif; padding: 20px; color: #1e293b;">
  <h2 style="color: #ff5a5f;">Welcome to Triplane{{if .Name}}, {{.Name}}{{end}}!</h2>
  <p>Your journey begins now. Please use the following code to verify your account:</p>
  <div style="background: #f5f9ff; padding: 20px; border-radius: 12px; font-size: 2rem; font-weight: 800; text-align: center; letter-spacing: 10px; color: #2196f3; border: 1px solid #e2e8f0;">
    {{.Code}}
  </div>
  <p style="margin-top: 20px;">This code will expire in 10 minutes.</p>
  <p>Happy travels,<br>The Triplane Team</p>
</div>
`

const resendTemplate = `
<div style="font-family: Arial, sans-serif; padding: 20px; color: #1e293b;">
  <p>You requested a new verification code. Please use the code below:</p>
  <div style="background: #f5f9ff; padding: 20px; border-radius: 12px; font-size: 2rem; font-weight: 800; text-align: center; letter-spacing: 10px; color: #2196f3; border: 1px solid #e2e8f0;">
    {{.Code}}
  </div>
  <p style="margin-top: 20px;">This code will expire in 10 minutes.</p>
</div>
`

func renderOTPTemplate(tmpl, name, code string) (string, error) {
	t, err := template.New("otp").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Name string
		Code string
	}{
		Name: name,
		Code: code,
	}

	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
