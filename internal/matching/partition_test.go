package matching

import (
    "reflect"
    "testing"
    "time"
)

func buildMatrix(t *testing.T, cfg Config, users []*EligibleUser) *ScoreMatrix {
    t.Helper()
    m, err := BuildScoreMatrix(users, NewScorer(cfg), 1)
    if err != nil {
        t.Fatalf("BuildScoreMatrix returned error: %v", err)
    }
    return m
}

// identicalPool builds n interchangeable fully compatible users.
func identicalPool(n int) []*EligibleUser {
    users := make([]*EligibleUser, n)
    for i := range users {
        users[i] = poolUser(int64(i+1), "cardiology", "Lagos", []string{"jazz"}, []string{"saturday-morning"})
    }
    return users
}

func TestPartitionThreeUsersFormOneGroup(t *testing.T) {
    cfg := DefaultConfig()
    m := buildMatrix(t, cfg, identicalPool(3))

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())
    if len(groups) != 1 || len(groups[0]) != 3 {
        t.Fatalf("expected one group of 3, got %v", groups)
    }
    if len(unmatched) != 0 {
        t.Errorf("expected no unmatched users, got %d", len(unmatched))
    }
}

func TestPartitionPoolBelowMinimum(t *testing.T) {
    cfg := DefaultConfig()
    m := buildMatrix(t, cfg, identicalPool(2))

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())
    if len(groups) != 0 {
        t.Errorf("expected no groups from a pool of 2, got %d", len(groups))
    }
    if len(unmatched) != 2 {
        t.Errorf("expected 2 unmatched, got %d", len(unmatched))
    }
}

func TestPartitionSevenUsersTargetThree(t *testing.T) {
    cfg := DefaultConfig() // target 3, oversize disabled
    m := buildMatrix(t, cfg, identicalPool(7))

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())
    if len(groups) != 2 {
        t.Fatalf("expected 2 groups, got %d", len(groups))
    }
    for gi, group := range groups {
        if len(group) != 3 {
            t.Errorf("group %d has size %d, want 3", gi, len(group))
        }
    }
    if len(unmatched) != 1 {
        t.Errorf("expected 1 unmatched, got %d", len(unmatched))
    }
}

func TestPartitionOversizeAccommodation(t *testing.T) {
    cfg := DefaultConfig()
    cfg.AllowOversizeGroups = true // remainder may be folded in up to max size 4
    m := buildMatrix(t, cfg, identicalPool(7))

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())
    if len(unmatched) != 0 {
        t.Errorf("expected no unmatched with oversize groups allowed, got %d", len(unmatched))
    }

    total := 0
    for gi, group := range groups {
        if len(group) > cfg.MaxGroupSize {
            t.Errorf("group %d exceeds max size: %d", gi, len(group))
        }
        total += len(group)
    }
    if total != 7 {
        t.Errorf("groups cover %d users, want 7", total)
    }
}

func TestPartitionDisjointCoverage(t *testing.T) {
    cfg := DefaultConfig()
    users := []*EligibleUser{
        poolUser(1, "cardiology", "Lagos", []string{"jazz"}, []string{"saturday-morning"}),
        poolUser(2, "cardiology", "Lagos", []string{"jazz", "tennis"}, []string{"saturday-morning"}),
        poolUser(3, "pediatrics", "Lagos", []string{"rock"}, []string{"sunday-evening"}),
        poolUser(4, "pediatrics", "Abuja", []string{"rock", "chess"}, []string{"sunday-evening"}),
        poolUser(5, "cardiology", "Abuja", []string{"chess"}, []string{"saturday-morning"}),
        poolUser(6, "surgery", "Lagos", []string{"tennis"}, []string{"sunday-evening"}),
    }
    m := buildMatrix(t, cfg, users)

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())

    seen := make(map[int]bool)
    for _, group := range groups {
        for _, idx := range group {
            if seen[idx] {
                t.Fatalf("index %d appears in more than one group", idx)
            }
            seen[idx] = true
        }
    }
    for _, idx := range unmatched {
        if seen[idx] {
            t.Fatalf("index %d is both grouped and unmatched", idx)
        }
        seen[idx] = true
    }
    if len(seen) != m.Len() {
        t.Errorf("partition covers %d of %d users", len(seen), m.Len())
    }
}

func TestPartitionDeterminism(t *testing.T) {
    cfg := DefaultConfig()
    users := []*EligibleUser{
        poolUser(1, "cardiology", "Lagos", []string{"jazz"}, []string{"saturday-morning"}),
        poolUser(2, "cardiology", "Lagos", []string{"jazz"}, []string{"saturday-morning"}),
        poolUser(3, "pediatrics", "Abuja", []string{"rock"}, []string{"sunday-evening"}),
        poolUser(4, "pediatrics", "Abuja", []string{"rock"}, []string{"sunday-evening"}),
        poolUser(5, "cardiology", "Lagos", []string{"jazz", "rock"}, []string{"saturday-morning"}),
        poolUser(6, "pediatrics", "Lagos", []string{"chess"}, []string{"sunday-evening"}),
        poolUser(7, "surgery", "Abuja", []string{"tennis"}, []string{"saturday-morning"}),
        poolUser(8, "surgery", "Lagos", []string{"tennis", "jazz"}, []string{"sunday-evening"}),
        poolUser(9, "cardiology", "Abuja", []string{"chess", "jazz"}, []string{"saturday-morning"}),
    }

    now := time.Now()
    partitioner := NewGreedyPartitioner(cfg)

    m1 := buildMatrix(t, cfg, users)
    groups1, unmatched1 := partitioner.Partition(m1, nil, now)

    m2 := buildMatrix(t, cfg, users)
    groups2, unmatched2 := partitioner.Partition(m2, nil, now)

    if !reflect.DeepEqual(groups1, groups2) {
        t.Errorf("repeated runs produced different groups:\n%v\n%v", groups1, groups2)
    }
    if !reflect.DeepEqual(unmatched1, unmatched2) {
        t.Errorf("repeated runs produced different unmatched sets:\n%v\n%v", unmatched1, unmatched2)
    }
}

func TestPartitionHardCooldownBlocksPair(t *testing.T) {
    cfg := DefaultConfig() // hard mode, 4 week window
    users := identicalPool(3)
    m := buildMatrix(t, cfg, users)

    now := time.Now()
    history := NewPairHistory([]PastGroupMembership{
        {GroupID: "g1", UserID: 1, MatchedAt: now.Add(-7 * 24 * time.Hour)},
        {GroupID: "g1", UserID: 2, MatchedAt: now.Add(-7 * 24 * time.Hour)},
    })

    // With users 1 and 2 blocked, no 3-person group is possible.
    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, history, now)
    if len(groups) != 0 {
        t.Errorf("expected no groups while the pair is in cooldown, got %d", len(groups))
    }
    if len(unmatched) != 3 {
        t.Errorf("expected all 3 unmatched, got %d", len(unmatched))
    }
}

func TestPartitionCooldownExpires(t *testing.T) {
    cfg := DefaultConfig()
    users := identicalPool(3)
    m := buildMatrix(t, cfg, users)

    now := time.Now()
    history := NewPairHistory([]PastGroupMembership{
        {GroupID: "g1", UserID: 1, MatchedAt: now.Add(-cfg.CooldownWindow() - 24*time.Hour)},
        {GroupID: "g1", UserID: 2, MatchedAt: now.Add(-cfg.CooldownWindow() - 24*time.Hour)},
    })

    groups, _ := NewGreedyPartitioner(cfg).Partition(m, history, now)
    if len(groups) != 1 {
        t.Errorf("expired cooldown should not block grouping, got %d groups", len(groups))
    }
}

func TestPartitionSoftCooldownStillGroups(t *testing.T) {
    cfg := DefaultConfig()
    cfg.CooldownMode = CooldownModeSoft
    users := identicalPool(3)
    m := buildMatrix(t, cfg, users)

    now := time.Now()
    history := NewPairHistory([]PastGroupMembership{
        {GroupID: "g1", UserID: 1, MatchedAt: now.Add(-7 * 24 * time.Hour)},
        {GroupID: "g1", UserID: 2, MatchedAt: now.Add(-7 * 24 * time.Hour)},
    })

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, history, now)
    if len(groups) != 1 {
        t.Fatalf("soft cooldown must allow the group, got %d groups, %d unmatched", len(groups), len(unmatched))
    }
    if len(groups[0]) != 3 {
        t.Errorf("expected full group of 3, got %d", len(groups[0]))
    }
}

func TestPartitionGroupCountMonotonicInPoolSize(t *testing.T) {
    cfg := DefaultConfig()
    partitioner := NewGreedyPartitioner(cfg)

    prev := 0
    for n := 3; n <= 10; n++ {
        m := buildMatrix(t, cfg, identicalPool(n))
        groups, _ := partitioner.Partition(m, nil, time.Now())
        if len(groups) < prev {
            t.Errorf("pool of %d formed %d groups, fewer than %d from the smaller pool", n, len(groups), prev)
        }
        prev = len(groups)
    }
}

func TestPartitionExhaustedCooldownLeavesUserUnmatched(t *testing.T) {
    cfg := DefaultConfig() // hard cooldown
    users := identicalPool(4)
    m := buildMatrix(t, cfg, users)

    // User 1 recently shared a group with everyone else in the pool.
    now := time.Now()
    met := now.Add(-7 * 24 * time.Hour)
    history := NewPairHistory([]PastGroupMembership{
        {GroupID: "g1", UserID: 1, MatchedAt: met},
        {GroupID: "g1", UserID: 2, MatchedAt: met},
        {GroupID: "g2", UserID: 1, MatchedAt: met},
        {GroupID: "g2", UserID: 3, MatchedAt: met},
        {GroupID: "g3", UserID: 1, MatchedAt: met},
        {GroupID: "g3", UserID: 4, MatchedAt: met},
    })

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, history, now)
    if len(groups) != 1 || len(groups[0]) != 3 {
        t.Fatalf("remaining trio should still form a group, got %v", groups)
    }
    if len(unmatched) != 1 || m.User(unmatched[0]).ID != 1 {
        t.Errorf("user 1 should sit out rather than break cooldown, unmatched = %v", unmatched)
    }
}

func TestPartitionExcludedPairOutweighsRawScore(t *testing.T) {
    cfg := DefaultConfig()
    users := identicalPool(3)
    // Users 1 and 2 are mutually exclusive; user 3 is compatible with both.
    // The only possible trio would contain the excluded pair, so nobody is
    // grouped even though that trio maximizes the naive average.
    users[0].PreferredGender = strPtr("male")
    users[1].Gender = "female"
    users[2].Gender = "male"
    m := buildMatrix(t, cfg, users)

    groups, unmatched := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())
    if len(groups) != 0 {
        t.Errorf("expected no groups, got %v", groups)
    }
    if len(unmatched) != 3 {
        t.Errorf("expected all 3 unmatched, got %d", len(unmatched))
    }
}

func TestPartitionExcludedPairNeverShareGroup(t *testing.T) {
    cfg := DefaultConfig()
    users := identicalPool(6)
    // User 1 only accepts men; user 2 is a woman like everyone else. The
    // pair is hard-excluded but both remain groupable with others.
    users[0].PreferredGender = strPtr("male")
    users[1].Gender = "female"
    for i := 2; i < 6; i++ {
        users[i].Gender = "male"
    }
    m := buildMatrix(t, cfg, users)

    groups, _ := NewGreedyPartitioner(cfg).Partition(m, nil, time.Now())
    for _, group := range groups {
        var hasA, hasB bool
        for _, idx := range group {
            if m.User(idx).ID == 1 {
                hasA = true
            }
            if m.User(idx).ID == 2 {
                hasB = true
            }
        }
        if hasA && hasB {
            t.Fatal("hard-excluded pair placed in the same group")
        }
    }
}
