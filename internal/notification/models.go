// internal/notification/models.go

package notifications

import (
    "time"
)

// Priority represents notification priority levels
type Priority string

const (
    PriorityHigh   Priority = "high"
    PriorityMedium Priority = "medium"
    PriorityLow    Priority = "low"
)

// Platform represents device platforms
type Platform string

const (
    PlatformIOS     Platform = "ios"
    PlatformAndroid Platform = "android"
    PlatformWeb     Platform = "web"
)

// Contact holds the delivery endpoints for one member
type Contact struct {
    UserID      int64   `json:"user_id" db:"user_id"`
    DisplayName string  `json:"display_name" db:"display_name"`
    Email       string  `json:"email" db:"email"`
    Phone       *string `json:"phone" db:"phone"`

    // Active device tokens, loaded separately
    PushTokens []string `json:"-" db:"-"`
}

// PushToken represents a device push token
type PushToken struct {
    ID        int64     `json:"id" db:"id"`
    UserID    int64     `json:"user_id" db:"user_id"`
    Platform  Platform  `json:"platform" db:"platform"`
    Token     string    `json:"token" db:"token"`
    DeviceID  string    `json:"device_id" db:"device_id"`
    IsActive  bool      `json:"is_active" db:"is_active"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
    UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmailNotification represents an email notification
type EmailNotification struct {
    To      string
    ToName  string
    Subject string
    Body    string
    HTML    string
}

// SMSNotification represents an SMS notification
type SMSNotification struct {
    To      string
    Message string
}

// PushNotification represents a push notification
type PushNotification struct {
    Tokens   []string
    Title    string
    Body     string
    Data     map[string]string
    Priority Priority
}
