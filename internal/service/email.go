package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"clubhub-backend/internal/logger"
)

const emailDateLayout = "2006-01-02"

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid backed EmailService. With an empty API key
// messages are logged and dropped, which is what local development uses.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	s := &emailService{
		fromEmail: fromEmail,
		fromName:  fromName,
	}
	if apiKey != "" {
		s.client = sendgrid.NewSendClient(apiKey)
	}
	return s
}

func (s *emailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	if s.client == nil {
		logger.Info("Email delivery disabled, message dropped", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	htmlContent := "<p>" + html.EscapeString(plainText) + "</p>"
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *emailService) SendRegistrationReceived(ctx context.Context, email, name, clubName, packageName string) error {
	subject := fmt.Sprintf("Registration received - %s", clubName)
	body := fmt.Sprintf("Hello %s,\n\nWe received your registration for the %s package of %s. A club leader will review it shortly.", name, packageName, clubName)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendApplicationReviewed(ctx context.Context, email, name, clubName string, approved bool) error {
	outcome := "rejected"
	next := ""
	if approved {
		outcome = "approved"
		next = " You can now pay the membership fee to activate your membership."
	}
	subject := fmt.Sprintf("Your application to %s was %s", clubName, outcome)
	body := fmt.Sprintf("Hello %s,\n\nYour application to %s was %s.%s", name, clubName, outcome, next)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendPaymentConfirmed(ctx context.Context, email, name, clubName string, validUntil time.Time) error {
	subject := fmt.Sprintf("Welcome to %s", clubName)
	body := fmt.Sprintf("Hello %s,\n\nWe received your payment. Your membership of %s is valid until %s.", name, clubName, validUntil.Format(emailDateLayout))
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendMembershipExpiring(ctx context.Context, email, name, clubName string, endDate time.Time) error {
	subject := fmt.Sprintf("Your %s membership ends soon", clubName)
	body := fmt.Sprintf("Hello %s,\n\nYour membership of %s ends on %s. Renew after it expires to keep your place.", name, clubName, endDate.Format(emailDateLayout))
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendMembershipExpired(ctx context.Context, email, name, clubName string) error {
	subject := fmt.Sprintf("Your %s membership has expired", clubName)
	body := fmt.Sprintf("Hello %s,\n\nYour membership of %s has expired. You can renew it from your registrations page.", name, clubName)
	return s.send(ctx, email, name, subject, body)
}
