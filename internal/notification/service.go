package notifications

import (
    "context"
    "fmt"
    "log"
    "strings"

    "github.com/peercircle/peercircle-backend/internal/matching"
)

// Service fans a formed group out to each member over the channels that are
// configured and that the member can actually receive.
type Service struct {
    repo  Repository
    email EmailService
    sms   SMSService
    push  PushService
}

// NewService creates the notification service. Channel services may be nil;
// a nil channel is simply skipped.
func NewService(repo Repository, email EmailService, sms SMSService, push PushService) *Service {
    return &Service{
        repo:  repo,
        email: email,
        sms:   sms,
        push:  push,
    }
}

// NotifyGroupFormed delivers the "your circle is ready" message to every
// member of the group. Individual delivery failures are logged and skipped
// so one bad address never blocks the rest of the group.
func (s *Service) NotifyGroupFormed(ctx context.Context, week string, group *matching.MatchGroup) error {
    contacts, err := s.repo.GetContacts(ctx, group.MemberIDs())
    if err != nil {
        return fmt.Errorf("failed to load group contacts: %w", err)
    }

    for _, contact := range contacts {
        names := otherMemberNames(group, contact.UserID)
        title := "Your new circle is ready"
        body := fmt.Sprintf("Hi %s, you've been matched with %s for week %s. Say hello in your group conversation!",
            contact.DisplayName, joinNames(names), week)

        if s.email != nil && contact.Email != "" {
            err := s.email.SendEmail(ctx, &EmailNotification{
                To:      contact.Email,
                ToName:  contact.DisplayName,
                Subject: title,
                Body:    body,
                HTML:    fmt.Sprintf("<p>%s</p>", body),
            })
            if err != nil {
                log.Printf("Group email to user %d failed: %v", contact.UserID, err)
            }
        }

        if s.sms != nil && contact.Phone != nil && *contact.Phone != "" {
            err := s.sms.SendSMS(ctx, &SMSNotification{
                To:      *contact.Phone,
                Message: body,
            })
            if err != nil {
                log.Printf("Group SMS to user %d failed: %v", contact.UserID, err)
            }
        }

        if s.push != nil && len(contact.PushTokens) > 0 {
            err := s.push.SendPush(ctx, &PushNotification{
                Tokens:   contact.PushTokens,
                Title:    title,
                Body:     body,
                Priority: PriorityHigh,
                Data: map[string]string{
                    "type":     "group_formed",
                    "group_id": group.ID,
                    "week":     week,
                },
            })
            if err != nil {
                log.Printf("Group push to user %d failed: %v", contact.UserID, err)
            }
        }
    }

    return nil
}

// otherMemberNames lists display names of the group excluding the recipient
func otherMemberNames(group *matching.MatchGroup, excludeID int64) []string {
    names := make([]string, 0, len(group.Members)-1)
    for _, member := range group.Members {
        if member.ID == excludeID {
            continue
        }
        name := member.DisplayName
        if name == "" {
            name = member.Username
        }
        names = append(names, name)
    }
    return names
}

// joinNames renders "A", "A and B", or "A, B and C"
func joinNames(names []string) string {
    switch len(names) {
    case 0:
        return "your new circle"
    case 1:
        return names[0]
    default:
        return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
    }
}
