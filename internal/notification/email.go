// internal/notification/email.go

package notifications

import (
    "context"
    "fmt"
    "log"

    "github.com/sendgrid/sendgrid-go"
    "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional email
type EmailService interface {
    SendEmail(ctx context.Context, notification *EmailNotification) error
}

// SendGridEmailService implements email notifications using SendGrid
type SendGridEmailService struct {
    client   *sendgrid.Client
    from     string
    fromName string
}

// NewSendGridEmailService creates a new SendGrid email service
func NewSendGridEmailService(apiKey, from string) (EmailService, error) {
    if apiKey == "" || from == "" {
        return nil, fmt.Errorf("incomplete SendGrid configuration")
    }

    return &SendGridEmailService{
        client:   sendgrid.NewSendClient(apiKey),
        from:     from,
        fromName: "PeerCircle",
    }, nil
}

// SendEmail sends a single email via SendGrid
func (s *SendGridEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
    from := mail.NewEmail(s.fromName, s.from)
    to := mail.NewEmail(notification.ToName, notification.To)
    message := mail.NewSingleEmail(from, notification.Subject, to, notification.Body, notification.HTML)

    resp, err := s.client.SendWithContext(ctx, message)
    if err != nil {
        log.Printf("Failed to send email to %s: %v", notification.To, err)
        return err
    }
    if resp.StatusCode >= 400 {
        log.Printf("SendGrid rejected email to %s: status %d", notification.To, resp.StatusCode)
        return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
    }

    log.Printf("Successfully sent email to %s", notification.To)
    return nil
}

// MockEmailService is a mock implementation for testing
type MockEmailService struct {
    SentEmails []*EmailNotification
}

func NewMockEmailService() *MockEmailService {
    return &MockEmailService{
        SentEmails: make([]*EmailNotification, 0),
    }
}

func (m *MockEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
    m.SentEmails = append(m.SentEmails, notification)
    return nil
}
