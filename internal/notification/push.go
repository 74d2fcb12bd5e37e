// internal/notification/push.go

package notifications

import (
    "context"
    "errors"
    "fmt"
    "log"

    firebase "firebase.google.com/go/v4"
    "firebase.google.com/go/v4/messaging"
    "google.golang.org/api/option"
)

// PushService sends device push notifications
type PushService interface {
    SendPush(ctx context.Context, notification *PushNotification) error
}

// FCMPushService implements push notifications using Firebase Cloud Messaging
type FCMPushService struct {
    client *messaging.Client
}

// NewFCMPushService creates a new FCM push service. Pass either a credentials
// file path or raw JSON credentials; the path wins when both are set.
func NewFCMPushService(ctx context.Context, credentialsPath, credentialsJSON string) (PushService, error) {
    var opt option.ClientOption
    switch {
    case credentialsPath != "":
        opt = option.WithCredentialsFile(credentialsPath)
    case credentialsJSON != "":
        opt = option.WithCredentialsJSON([]byte(credentialsJSON))
    default:
        return nil, errors.New("firebase credentials path or JSON must be set")
    }

    app, err := firebase.NewApp(ctx, nil, opt)
    if err != nil {
        return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
    }

    client, err := app.Messaging(ctx)
    if err != nil {
        return nil, fmt.Errorf("failed to get messaging client: %w", err)
    }

    return &FCMPushService{client: client}, nil
}

// SendPush sends a push notification to the given device tokens
func (s *FCMPushService) SendPush(ctx context.Context, notification *PushNotification) error {
    if len(notification.Tokens) == 0 {
        return errors.New("no tokens provided")
    }

    baseMessage := &messaging.Notification{
        Title: notification.Title,
        Body:  notification.Body,
    }

    data := notification.Data
    if data == nil {
        data = make(map[string]string)
    }

    androidConfig := &messaging.AndroidConfig{
        Priority: s.mapPriority(notification.Priority),
    }

    apnsConfig := &messaging.APNSConfig{
        Headers: map[string]string{
            "apns-priority": s.getAPNSPriority(notification.Priority),
        },
        Payload: &messaging.APNSPayload{
            Aps: &messaging.Aps{
                Alert: &messaging.ApsAlert{
                    Title: notification.Title,
                    Body:  notification.Body,
                },
            },
        },
    }

    messages := make([]*messaging.Message, 0, len(notification.Tokens))
    for _, token := range notification.Tokens {
        messages = append(messages, &messaging.Message{
            Token:        token,
            Notification: baseMessage,
            Data:         data,
            Android:      androidConfig,
            APNS:         apnsConfig,
        })
    }

    batchResponse, err := s.client.SendAll(ctx, messages)
    if err != nil {
        log.Printf("Failed to send push notifications: %v", err)
        return err
    }

    if batchResponse.FailureCount > 0 {
        log.Printf("Failed to send %d out of %d push notifications",
            batchResponse.FailureCount, len(messages))
        for idx, resp := range batchResponse.Responses {
            if resp.Error != nil {
                log.Printf("Failed to send to token %s: %v",
                    notification.Tokens[idx], resp.Error)
            }
        }
    }

    return nil
}

// mapPriority maps our priority to FCM priority
func (s *FCMPushService) mapPriority(priority Priority) string {
    switch priority {
    case PriorityLow:
        return "normal"
    default:
        return "high"
    }
}

// getAPNSPriority gets APNS priority string
func (s *FCMPushService) getAPNSPriority(priority Priority) string {
    switch priority {
    case PriorityLow:
        return "5"
    default:
        return "10"
    }
}

// MockPushService is a mock implementation for testing
type MockPushService struct {
    SentNotifications []*PushNotification
}

func NewMockPushService() *MockPushService {
    return &MockPushService{
        SentNotifications: make([]*PushNotification, 0),
    }
}

func (m *MockPushService) SendPush(ctx context.Context, notification *PushNotification) error {
    m.SentNotifications = append(m.SentNotifications, notification)
    return nil
}
