package matching

import (
    "fmt"
    "math"
    "testing"
)

func strPtr(s string) *string {
    return &s
}

// poolUser builds a fully eligible member for tests. Empty specialty or city
// are stored as nil so the neutral-default paths are exercised.
func poolUser(id int64, specialty, city string, interests, slots []string) *EligibleUser {
    u := &EligibleUser{
        ID:                 id,
        Username:           fmt.Sprintf("user%d", id),
        DisplayName:        fmt.Sprintf("User %d", id),
        Gender:             "female",
        OtherInterests:     interests,
        AvailabilitySlots:  slots,
        IsVerified:         true,
        IsSubscribed:       true,
        OnboardingComplete: true,
    }
    if specialty != "" {
        u.Specialty = strPtr(specialty)
    }
    if city != "" {
        u.City = strPtr(city)
    }
    return u
}

func almostEqual(a, b float64) bool {
    return math.Abs(a-b) < 1e-9
}

func TestScoreIdenticalProfiles(t *testing.T) {
    scorer := NewScorer(DefaultConfig())
    a := poolUser(1, "cardiology", "Lagos", []string{"jazz", "tennis"}, []string{"saturday-morning"})
    b := poolUser(2, "cardiology", "Lagos", []string{"jazz", "tennis"}, []string{"saturday-morning"})

    pair, err := scorer.Score(a, b)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }
    if pair.Excluded {
        t.Fatal("compatible pair marked excluded")
    }
    if !almostEqual(pair.Score, 1.0) {
        t.Errorf("identical profiles should score 1.0, got %f", pair.Score)
    }
}

func TestScoreIsSymmetric(t *testing.T) {
    scorer := NewScorer(DefaultConfig())
    a := poolUser(1, "cardiology", "Lagos", []string{"jazz"}, []string{"saturday-morning"})
    b := poolUser(2, "pediatrics", "Abuja", []string{"jazz", "rock"}, []string{"sunday-evening"})

    ab, err := scorer.Score(a, b)
    if err != nil {
        t.Fatalf("Score(a, b) returned error: %v", err)
    }
    ba, err := scorer.Score(b, a)
    if err != nil {
        t.Fatalf("Score(b, a) returned error: %v", err)
    }
    if !almostEqual(ab.Score, ba.Score) {
        t.Errorf("score not symmetric: %f vs %f", ab.Score, ba.Score)
    }
}

func TestScoreSelfIsError(t *testing.T) {
    scorer := NewScorer(DefaultConfig())
    a := poolUser(1, "cardiology", "Lagos", nil, nil)
    if _, err := scorer.Score(a, a); err == nil {
        t.Error("expected error when scoring a user against itself")
    }
}

func TestScoreNeutralDefaults(t *testing.T) {
    cfg := DefaultConfig()
    scorer := NewScorer(cfg)
    a := poolUser(1, "", "", nil, nil)
    b := poolUser(2, "", "", nil, nil)

    pair, err := scorer.Score(a, b)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }

    // Every data dimension degrades to 0.5; gender preference is open and
    // contributes its full weight.
    want := 0.5*(cfg.SpecialtyWeight+cfg.LocationWeight+cfg.InterestWeight+cfg.AvailabilityWeight) + cfg.GenderWeight
    if !almostEqual(pair.Score, want) {
        t.Errorf("expected neutral score %f, got %f", want, pair.Score)
    }
    for name, got := range map[string]float64{
        "specialty":    pair.Breakdown.Specialty,
        "location":     pair.Breakdown.Location,
        "interests":    pair.Breakdown.Interests,
        "availability": pair.Breakdown.Availability,
    } {
        if !almostEqual(got, 0.5) {
            t.Errorf("%s sub-score should be 0.5 for missing data, got %f", name, got)
        }
    }
}

func TestScoreGenderPreferenceHardFilter(t *testing.T) {
    scorer := NewScorer(DefaultConfig())

    tests := []struct {
        name     string
        prefA    *string
        genderB  string
        excluded bool
    }{
        {"no preference", nil, "male", false},
        {"any preference", strPtr("any"), "male", false},
        {"matching preference", strPtr("male"), "male", false},
        {"mismatched preference", strPtr("female"), "male", true},
        {"case insensitive", strPtr("Male"), "male", false},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            a := poolUser(1, "cardiology", "Lagos", nil, nil)
            a.PreferredGender = tt.prefA
            b := poolUser(2, "cardiology", "Lagos", nil, nil)
            b.Gender = tt.genderB

            pair, err := scorer.Score(a, b)
            if err != nil {
                t.Fatalf("Score returned error: %v", err)
            }
            if pair.Excluded != tt.excluded {
                t.Errorf("excluded = %v, want %v", pair.Excluded, tt.excluded)
            }
            if tt.excluded && pair.Score != ExcludedPairScore {
                t.Errorf("excluded pair should carry sentinel %f, got %f", ExcludedPairScore, pair.Score)
            }
            if !tt.excluded && pair.Score < 0 {
                t.Errorf("compatible pair must not carry the sentinel, got %f", pair.Score)
            }
        })
    }
}

func TestScoreGenderExclusionIsMutual(t *testing.T) {
    scorer := NewScorer(DefaultConfig())

    // b's preference rejects a even though a accepts b.
    a := poolUser(1, "cardiology", "Lagos", nil, nil)
    a.Gender = "male"
    b := poolUser(2, "cardiology", "Lagos", nil, nil)
    b.Gender = "female"
    b.PreferredGender = strPtr("female")

    pair, err := scorer.Score(a, b)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }
    if !pair.Excluded {
        t.Error("one-directional preference mismatch must exclude the pair")
    }
}

func TestInterestScoreJaccard(t *testing.T) {
    scorer := NewScorer(DefaultConfig())
    a := poolUser(1, "", "", []string{"jazz", "tennis"}, nil)
    b := poolUser(2, "", "", []string{"jazz", "chess"}, nil)

    pair, err := scorer.Score(a, b)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }
    // 1 shared tag over 3 distinct tags.
    if !almostEqual(pair.Breakdown.Interests, 1.0/3.0) {
        t.Errorf("expected Jaccard 1/3, got %f", pair.Breakdown.Interests)
    }
}

func TestInterestScoreSpansCategories(t *testing.T) {
    scorer := NewScorer(DefaultConfig())
    a := poolUser(1, "", "", nil, nil)
    a.SportsInterests = []string{"tennis"}
    b := poolUser(2, "", "", nil, nil)
    b.MusicInterests = []string{"Tennis"}

    pair, err := scorer.Score(a, b)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }
    // Tags are compared across categories after normalization.
    if !almostEqual(pair.Breakdown.Interests, 1.0) {
        t.Errorf("expected full interest overlap, got %f", pair.Breakdown.Interests)
    }
}

func TestAvailabilityScoreAnyOverlap(t *testing.T) {
    scorer := NewScorer(DefaultConfig())

    tests := []struct {
        name  string
        slotsA []string
        slotsB []string
        want  float64
    }{
        {"shared slot", []string{"saturday-morning", "sunday-evening"}, []string{"Saturday-Morning"}, 1.0},
        {"disjoint slots", []string{"saturday-morning"}, []string{"sunday-evening"}, 0.0},
        {"one side missing", []string{"saturday-morning"}, nil, 0.5},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            a := poolUser(1, "", "", nil, tt.slotsA)
            b := poolUser(2, "", "", nil, tt.slotsB)
            pair, err := scorer.Score(a, b)
            if err != nil {
                t.Fatalf("Score returned error: %v", err)
            }
            if !almostEqual(pair.Breakdown.Availability, tt.want) {
                t.Errorf("availability = %f, want %f", pair.Breakdown.Availability, tt.want)
            }
        })
    }
}

func TestSpecialtyPolicyComplement(t *testing.T) {
    cfg := DefaultConfig()
    cfg.SpecialtyPolicy = SpecialtyPolicyComplement
    scorer := NewScorer(cfg)

    same := poolUser(1, "cardiology", "", nil, nil)
    other := poolUser(2, "cardiology", "", nil, nil)
    pair, err := scorer.Score(same, other)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }
    if !almostEqual(pair.Breakdown.Specialty, 0) {
        t.Errorf("complement policy should score same specialty 0, got %f", pair.Breakdown.Specialty)
    }

    different := poolUser(3, "pediatrics", "", nil, nil)
    pair, err = scorer.Score(same, different)
    if err != nil {
        t.Fatalf("Score returned error: %v", err)
    }
    if !almostEqual(pair.Breakdown.Specialty, 1) {
        t.Errorf("complement policy should score different specialties 1, got %f", pair.Breakdown.Specialty)
    }
}
