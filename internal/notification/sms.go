package notifications

import (
    "context"
    "fmt"
    "log"

    "github.com/twilio/twilio-go"
    twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends text messages
type SMSService interface {
    SendSMS(ctx context.Context, notification *SMSNotification) error
}

// TwilioSMSService implements SMS notifications using Twilio
type TwilioSMSService struct {
    client *twilio.RestClient
    from   string
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, from string) (SMSService, error) {
    if accountSID == "" || authToken == "" || from == "" {
        return nil, fmt.Errorf("incomplete Twilio configuration")
    }

    client := twilio.NewRestClientWithParams(twilio.ClientParams{
        Username: accountSID,
        Password: authToken,
    })

    return &TwilioSMSService{
        client: client,
        from:   from,
    }, nil
}

// SendSMS sends a single SMS
func (s *TwilioSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
    params := &twilioApi.CreateMessageParams{}
    params.SetTo(notification.To)
    params.SetFrom(s.from)
    params.SetBody(notification.Message)

    resp, err := s.client.Api.CreateMessage(params)
    if err != nil {
        log.Printf("Failed to send SMS to %s: %v", notification.To, err)
        return err
    }

    if resp.Sid != nil {
        log.Printf("Successfully sent SMS to %s with SID: %s", notification.To, *resp.Sid)
    }

    return nil
}

// MockSMSService is a mock implementation for testing
type MockSMSService struct {
    SentMessages []*SMSNotification
}

func NewMockSMSService() *MockSMSService {
    return &MockSMSService{
        SentMessages: make([]*SMSNotification, 0),
    }
}

func (m *MockSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
    m.SentMessages = append(m.SentMessages, notification)
    return nil
}
