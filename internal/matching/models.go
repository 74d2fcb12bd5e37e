package matching

import (
    "fmt"
    "strings"
    "time"
)

// EligibleUser is a read-only snapshot of one member's matching profile,
// rebuilt from the profile store on every run. The engine never mutates it.
type EligibleUser struct {
    ID          int64   `json:"id" db:"id"`
    Username    string  `json:"username" db:"username"`
    DisplayName string  `json:"display_name" db:"display_name"`
    Specialty   *string `json:"specialty,omitempty" db:"specialty"`
    City        *string `json:"city,omitempty" db:"city"`
    Gender      string  `json:"gender" db:"gender"`

    // PreferredGender nil or "any" means no restriction.
    PreferredGender *string `json:"preferred_gender,omitempty" db:"preferred_gender"`

    Age int `json:"age" db:"age"`

    // Interest tags, grouped by kind.
    SportsInterests []string `json:"sports_interests"`
    MusicInterests  []string `json:"music_interests"`
    MovieInterests  []string `json:"movie_interests"`
    OtherInterests  []string `json:"other_interests"`

    // Discrete time-bucket tokens, e.g. "weekday-evening".
    AvailabilitySlots []string `json:"availability_slots"`

    ActivityLevel     *string `json:"activity_level,omitempty" db:"activity_level"`
    ConversationStyle *string `json:"conversation_style,omitempty" db:"conversation_style"`

    // Eligibility flags, consumed by the filter and not re-checked downstream.
    IsVerified         bool `json:"is_verified" db:"is_verified"`
    IsSubscribed       bool `json:"is_subscribed" db:"is_subscribed"`
    IsBanned           bool `json:"is_banned" db:"is_banned"`
    OnboardingComplete bool `json:"onboarding_complete" db:"onboarding_complete"`
    InActiveGroup      bool `json:"in_active_group" db:"in_active_group"`
}

// AllInterests flattens the per-kind tag sets into one list.
func (u *EligibleUser) AllInterests() []string {
    all := make([]string, 0, len(u.SportsInterests)+len(u.MusicInterests)+len(u.MovieInterests)+len(u.OtherInterests))
    all = append(all, u.SportsInterests...)
    all = append(all, u.MusicInterests...)
    all = append(all, u.MovieInterests...)
    all = append(all, u.OtherInterests...)
    return all
}

// HasUsableSignal reports whether the profile carries at least one scoreable
// dimension. A record with none is excluded from the pool with a logged
// reason instead of dragging every pair toward the neutral default.
func (u *EligibleUser) HasUsableSignal() bool {
    if u.Specialty != nil && *u.Specialty != "" {
        return true
    }
    if u.City != nil && *u.City != "" {
        return true
    }
    if len(u.AllInterests()) > 0 {
        return true
    }
    return len(u.AvailabilitySlots) > 0
}

// PairKey is a canonicalized unordered user pair: lower id always first, so a
// pair is stored and looked up exactly once.
type PairKey struct {
    Lo int64
    Hi int64
}

func NewPairKey(a, b int64) PairKey {
    if a > b {
        a, b = b, a
    }
    return PairKey{Lo: a, Hi: b}
}

// ScoreBreakdown is the per-dimension decomposition of a pair score, kept for
// explainability and debugging.
type ScoreBreakdown struct {
    Specialty        float64 `json:"specialty"`
    Location         float64 `json:"location"`
    Interests        float64 `json:"interests"`
    Availability     float64 `json:"availability"`
    GenderPreference float64 `json:"gender_preference"`
}

// PairScore is the symmetric compatibility relation between two eligible
// users. Excluded marks a hard gender-preference mismatch; Score is the
// sentinel in that case.
type PairScore struct {
    Users     PairKey        `json:"users"`
    Score     float64        `json:"score"`
    Excluded  bool           `json:"excluded"`
    Breakdown ScoreBreakdown `json:"breakdown"`
}

// PastGroupMembership records that a user belonged to a group created at a
// given time. Owned and persisted outside the engine.
type PastGroupMembership struct {
    GroupID   string    `json:"group_id" db:"group_id"`
    UserID    int64     `json:"user_id" db:"user_id"`
    MatchedAt time.Time `json:"matched_at" db:"matched_at"`
}

// PairHistory indexes past co-membership by canonical pair for O(1) cooldown
// checks during partitioning.
type PairHistory struct {
    lastTogether map[PairKey]time.Time
}

// NewPairHistory builds the pair index from raw membership records. Records
// sharing a group id yield one entry per member pair, keeping the most recent
// time when a pair met in several groups.
func NewPairHistory(records []PastGroupMembership) *PairHistory {
    byGroup := make(map[string][]PastGroupMembership)
    for _, rec := range records {
        byGroup[rec.GroupID] = append(byGroup[rec.GroupID], rec)
    }

    h := &PairHistory{lastTogether: make(map[PairKey]time.Time)}
    for _, members := range byGroup {
        for i := 0; i < len(members); i++ {
            for j := i + 1; j < len(members); j++ {
                if members[i].UserID == members[j].UserID {
                    continue
                }
                key := NewPairKey(members[i].UserID, members[j].UserID)
                at := members[i].MatchedAt
                if members[j].MatchedAt.After(at) {
                    at = members[j].MatchedAt
                }
                if existing, ok := h.lastTogether[key]; !ok || at.After(existing) {
                    h.lastTogether[key] = at
                }
            }
        }
    }
    return h
}

// LastGroupedAt returns when the pair last shared a group, if ever.
func (h *PairHistory) LastGroupedAt(a, b int64) (time.Time, bool) {
    if h == nil || h.lastTogether == nil {
        return time.Time{}, false
    }
    at, ok := h.lastTogether[NewPairKey(a, b)]
    return at, ok
}

// GroupedWithin reports whether the pair shared a group inside the trailing
// window ending at now.
func (h *PairHistory) GroupedWithin(a, b int64, window time.Duration, now time.Time) bool {
    at, ok := h.LastGroupedAt(a, b)
    if !ok {
        return false
    }
    return now.Sub(at) < window
}

// Len returns the number of distinct pairs on record.
func (h *PairHistory) Len() int {
    if h == nil {
        return 0
    }
    return len(h.lastTogether)
}

// MatchGroup is the engine's output unit: one formed group, immutable after
// assembly. Members keep their discovery order. The creation timestamp is
// assigned by the persister, not here.
type MatchGroup struct {
    ID           string          `json:"id"`
    Members      []*EligibleUser `json:"members"`
    AverageScore float64         `json:"average_score"`
}

// MemberIDs returns the member ids in discovery order.
func (g *MatchGroup) MemberIDs() []int64 {
    ids := make([]int64, len(g.Members))
    for i, m := range g.Members {
        ids[i] = m.ID
    }
    return ids
}

// ExclusionReason explains why a record was dropped before scoring.
type ExclusionReason struct {
    UserID int64  `json:"user_id"`
    Reason string `json:"reason"`
}

// RunStats summarizes a single run.
type RunStats struct {
    PoolSize       int           `json:"pool_size"`
    EligibleUsers  int           `json:"eligible_users"`
    GroupsFormed   int           `json:"groups_formed"`
    UsersMatched   int           `json:"users_matched"`
    UsersUnmatched int           `json:"users_unmatched"`
    AverageScore   float64       `json:"average_score"`
    Duration       time.Duration `json:"duration"`
}

// MatchingResults is the full-run envelope: formed groups, users left
// unmatched (explicitly eligible for the next run), and summary statistics.
// It exists only as a return value and is never persisted as an entity.
type MatchingResults struct {
    RunID     string            `json:"run_id"`
    Week      string            `json:"week"`
    Groups    []*MatchGroup     `json:"groups"`
    Unmatched []*EligibleUser   `json:"unmatched"`
    Excluded  []ExclusionReason `json:"excluded,omitempty"`
    Stats     RunStats          `json:"stats"`
}

// UnmatchedIDs returns the ids of users left unmatched this run.
func (r *MatchingResults) UnmatchedIDs() []int64 {
    ids := make([]int64, len(r.Unmatched))
    for i, u := range r.Unmatched {
        ids[i] = u.ID
    }
    return ids
}

// WeekOf formats the ISO week a run belongs to, e.g. "2026-W35".
func WeekOf(t time.Time) string {
    year, week := t.ISOWeek()
    return fmt.Sprintf("%d-W%02d", year, week)
}

func normalizeTag(tag string) string {
    return strings.ToLower(strings.TrimSpace(tag))
}
