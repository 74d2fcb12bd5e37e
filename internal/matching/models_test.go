package matching

import (
    "testing"
    "time"
)

func TestNewPairKeyCanonicalOrder(t *testing.T) {
    if NewPairKey(5, 2) != NewPairKey(2, 5) {
        t.Error("pair key must be order-independent")
    }
    key := NewPairKey(9, 3)
    if key.Lo != 3 || key.Hi != 9 {
        t.Errorf("expected {3, 9}, got {%d, %d}", key.Lo, key.Hi)
    }
}

func TestPairHistoryKeepsMostRecent(t *testing.T) {
    older := time.Date(2026, 7, 6, 9, 0, 0, 0, time.UTC)
    newer := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)

    h := NewPairHistory([]PastGroupMembership{
        {GroupID: "g1", UserID: 1, MatchedAt: older},
        {GroupID: "g1", UserID: 2, MatchedAt: older},
        {GroupID: "g2", UserID: 1, MatchedAt: newer},
        {GroupID: "g2", UserID: 2, MatchedAt: newer},
        {GroupID: "g2", UserID: 3, MatchedAt: newer},
    })

    at, ok := h.LastGroupedAt(2, 1)
    if !ok {
        t.Fatal("pair (1, 2) should be on record")
    }
    if !at.Equal(newer) {
        t.Errorf("expected most recent meeting %v, got %v", newer, at)
    }
    // g2 has three members, so three pairs plus nothing new from g1.
    if h.Len() != 3 {
        t.Errorf("expected 3 distinct pairs, got %d", h.Len())
    }
}

func TestPairHistoryGroupedWithin(t *testing.T) {
    now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
    met := now.Add(-3 * 7 * 24 * time.Hour)

    h := NewPairHistory([]PastGroupMembership{
        {GroupID: "g1", UserID: 1, MatchedAt: met},
        {GroupID: "g1", UserID: 2, MatchedAt: met},
    })

    if !h.GroupedWithin(1, 2, 4*7*24*time.Hour, now) {
        t.Error("pair met 3 weeks ago should be inside a 4 week window")
    }
    if h.GroupedWithin(1, 2, 2*7*24*time.Hour, now) {
        t.Error("pair met 3 weeks ago should be outside a 2 week window")
    }
    if h.GroupedWithin(1, 3, 4*7*24*time.Hour, now) {
        t.Error("pair that never met should never be in cooldown")
    }
}

func TestPairHistoryNilIsEmpty(t *testing.T) {
    var h *PairHistory
    if h.Len() != 0 {
        t.Error("nil history should report zero pairs")
    }
    if h.GroupedWithin(1, 2, time.Hour, time.Now()) {
        t.Error("nil history should never report a cooldown")
    }
}

func TestHasUsableSignal(t *testing.T) {
    tests := []struct {
        name   string
        mutate func(u *EligibleUser)
        want   bool
    }{
        {"blank profile", func(u *EligibleUser) {}, false},
        {"empty-string specialty", func(u *EligibleUser) { u.Specialty = strPtr("") }, false},
        {"specialty", func(u *EligibleUser) { u.Specialty = strPtr("cardiology") }, true},
        {"city", func(u *EligibleUser) { u.City = strPtr("Lagos") }, true},
        {"movie interests", func(u *EligibleUser) { u.MovieInterests = []string{"thrillers"} }, true},
        {"availability", func(u *EligibleUser) { u.AvailabilitySlots = []string{"weekday-evening"} }, true},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            u := &EligibleUser{ID: 1, Gender: "female"}
            tt.mutate(u)
            if got := u.HasUsableSignal(); got != tt.want {
                t.Errorf("HasUsableSignal() = %v, want %v", got, tt.want)
            }
        })
    }
}
