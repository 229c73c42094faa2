// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/cueshop/billiard-backend/internal/config"
)

// Mailer delivers account e-mails.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, fullName, code string) error
}

type NotificationService struct {
	config config.EmailConfig
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(cfg config.EmailConfig) *NotificationService {
	return &NotificationService{config: cfg}
}

func (s *NotificationService) SendVerificationCode(ctx context.Context, to, fullName, code string) error {
	tmpl := s.getEmailTemplate("verification_code")

	body, err := s.renderTemplate(tmpl.Body, map[string]interface{}{
		"FullName": fullName,
		"Code":     code,
		"ShopName": s.config.FromName,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(ctx, to, tmpl.Subject, body)
}

func (s *NotificationService) sendEmail(ctx context.Context, to, subject, body string) error {
	if s.config.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not configured, skipping delivery")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.config.FromName, s.config.FromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"verification_code": {
			Subject: "Код подтверждения",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Здравствуйте, {{.FullName}}!</h2>
	<p>Ваш код подтверждения:</p>
	<h1>{{.Code}}</h1>
	<p>{{.ShopName}}</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
