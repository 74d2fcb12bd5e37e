package matching

import (
    "context"
    "log"
    "time"
)

// Scheduler fires the weekly matching run at a configured weekday and hour.
type Scheduler struct {
    service Service
    weekday time.Weekday
    hour    int
    minute  int
}

func NewScheduler(service Service, weekday time.Weekday, hour, minute int) *Scheduler {
    return &Scheduler{
        service: service,
        weekday: weekday,
        hour:    hour,
        minute:  minute,
    }
}

func (s *Scheduler) Start(ctx context.Context) {
    go s.runWeekly(ctx)
}

func (s *Scheduler) runWeekly(ctx context.Context) {
    for {
        now := time.Now()
        next := s.nextRun(now)

        timer := time.NewTimer(next.Sub(now))

        select {
        case <-timer.C:
            log.Printf("matching: scheduled weekly run starting")
            if _, err := s.service.RunWeeklyMatching(ctx, TriggerScheduled); err != nil {
                log.Printf("matching: scheduled run failed: %v", err)
            }
        case <-ctx.Done():
            timer.Stop()
            return
        }
    }
}

// nextRun returns the next occurrence of the configured weekday and time
// strictly after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
    next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
    daysAhead := (int(s.weekday) - int(now.Weekday()) + 7) % 7
    next = next.AddDate(0, 0, daysAhead)
    if !next.After(now) {
        next = next.AddDate(0, 0, 7)
    }
    return next
}
