package notifications

import (
    "context"
    "strings"
    "testing"

    "github.com/peercircle/peercircle-backend/internal/matching"
)

type fakeRepository struct {
    contacts []*Contact
    tokens   []*PushToken
}

func (f *fakeRepository) GetContacts(ctx context.Context, userIDs []int64) ([]*Contact, error) {
    out := make([]*Contact, 0, len(f.contacts))
    for _, c := range f.contacts {
        for _, id := range userIDs {
            if c.UserID == id {
                out = append(out, c)
            }
        }
    }
    return out, nil
}

func (f *fakeRepository) RegisterPushToken(ctx context.Context, token *PushToken) error {
    f.tokens = append(f.tokens, token)
    return nil
}

func (f *fakeRepository) DeactivatePushToken(ctx context.Context, userID int64, deviceID string) error {
    return nil
}

func strPtr(s string) *string {
    return &s
}

func testGroup() *matching.MatchGroup {
    return &matching.MatchGroup{
        ID: "group-1",
        Members: []*matching.EligibleUser{
            {ID: 1, Username: "ada", DisplayName: "Ada"},
            {ID: 2, Username: "bisi", DisplayName: "Bisi"},
            {ID: 3, Username: "chidi", DisplayName: ""},
        },
        AverageScore: 0.8,
    }
}

func TestNotifyGroupFormedFansOutPerChannel(t *testing.T) {
    repo := &fakeRepository{contacts: []*Contact{
        {UserID: 1, DisplayName: "Ada", Email: "ada@example.com", Phone: strPtr("+2348000000001"), PushTokens: []string{"tok-1"}},
        {UserID: 2, DisplayName: "Bisi", Email: "bisi@example.com"},
        {UserID: 3, DisplayName: "Chidi", Email: ""},
    }}
    email := NewMockEmailService()
    sms := NewMockSMSService()
    push := NewMockPushService()
    svc := NewService(repo, email, sms, push)

    if err := svc.NotifyGroupFormed(context.Background(), "2026-W35", testGroup()); err != nil {
        t.Fatalf("NotifyGroupFormed returned error: %v", err)
    }

    // Only members with an address on file get each channel.
    if len(email.SentEmails) != 2 {
        t.Errorf("sent %d emails, want 2", len(email.SentEmails))
    }
    if len(sms.SentMessages) != 1 {
        t.Errorf("sent %d SMS, want 1", len(sms.SentMessages))
    }
    if len(push.SentNotifications) != 1 {
        t.Errorf("sent %d pushes, want 1", len(push.SentNotifications))
    }

    first := email.SentEmails[0]
    if !strings.Contains(first.Body, "Ada") || !strings.Contains(first.Body, "2026-W35") {
        t.Errorf("unexpected email body: %q", first.Body)
    }
    // Ada's message names the other members, falling back to username when a
    // display name is blank.
    if !strings.Contains(first.Body, "Bisi and chidi") {
        t.Errorf("expected other member names in body, got %q", first.Body)
    }

    pushed := push.SentNotifications[0]
    if pushed.Data["type"] != "group_formed" || pushed.Data["group_id"] != "group-1" {
        t.Errorf("push payload missing routing data: %v", pushed.Data)
    }
}

func TestNotifyGroupFormedNilChannelsSkipped(t *testing.T) {
    repo := &fakeRepository{contacts: []*Contact{
        {UserID: 1, DisplayName: "Ada", Email: "ada@example.com"},
    }}
    svc := NewService(repo, nil, nil, nil)

    if err := svc.NotifyGroupFormed(context.Background(), "2026-W35", testGroup()); err != nil {
        t.Errorf("nil channels must not error: %v", err)
    }
}

func TestJoinNames(t *testing.T) {
    tests := []struct {
        name  string
        names []string
        want  string
    }{
        {"empty", nil, "your new circle"},
        {"single", []string{"Ada"}, "Ada"},
        {"pair", []string{"Ada", "Bisi"}, "Ada and Bisi"},
        {"trio", []string{"Ada", "Bisi", "Chidi"}, "Ada, Bisi and Chidi"},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := joinNames(tt.names); got != tt.want {
                t.Errorf("joinNames(%v) = %q, want %q", tt.names, got, tt.want)
            }
        })
    }
}
