package matching

import (
    "fmt"
    "math"
    "strings"
)

// ExcludedPairScore is the hard-exclusion sentinel: the pair must never share
// a group, regardless of every other dimension. Distinct from a legitimate
// 0.0 so a gender-preference mismatch is never confused with plain
// incompatibility.
const ExcludedPairScore = -1.0

// neutralSubScore is contributed by a dimension when either profile is
// missing its data, so incomplete profiles are neither penalized nor
// rewarded.
const neutralSubScore = 0.5

// Scorer computes the symmetric pairwise compatibility score in [0,1] as a
// weighted sum of independent sub-scores.
type Scorer struct {
    cfg Config
}

func NewScorer(cfg Config) *Scorer {
    return &Scorer{cfg: cfg}
}

// Score computes the compatibility of two distinct eligible users. Scoring a
// user against itself is a caller bug, reported as an error rather than a
// silent zero.
func (s *Scorer) Score(a, b *EligibleUser) (*PairScore, error) {
    if a.ID == b.ID {
        return nil, fmt.Errorf("cannot score user %d against itself", a.ID)
    }

    pair := &PairScore{Users: NewPairKey(a.ID, b.ID)}

    // Gender preference is a hard filter: a mismatch excludes the pair
    // outright, no matter how well everything else lines up.
    if !genderCompatible(a, b) {
        pair.Score = ExcludedPairScore
        pair.Excluded = true
        return pair, nil
    }
    pair.Breakdown.GenderPreference = 1.0

    pair.Breakdown.Specialty = s.specialtyScore(a, b)
    pair.Breakdown.Location = s.locationScore(a, b)
    pair.Breakdown.Interests = s.interestScore(a, b)
    pair.Breakdown.Availability = s.availabilityScore(a, b)

    total := pair.Breakdown.Specialty*s.cfg.SpecialtyWeight +
        pair.Breakdown.Location*s.cfg.LocationWeight +
        pair.Breakdown.Interests*s.cfg.InterestWeight +
        pair.Breakdown.Availability*s.cfg.AvailabilityWeight +
        pair.Breakdown.GenderPreference*s.cfg.GenderWeight

    pair.Score = math.Min(1.0, math.Max(0, total))
    return pair, nil
}

// specialtyScore applies the configured policy: same-specialty deployments
// reward peer support, complement deployments reward cross-pollination.
func (s *Scorer) specialtyScore(a, b *EligibleUser) float64 {
    if a.Specialty == nil || *a.Specialty == "" || b.Specialty == nil || *b.Specialty == "" {
        return neutralSubScore
    }

    same := strings.EqualFold(*a.Specialty, *b.Specialty)
    if s.cfg.SpecialtyPolicy == SpecialtyPolicyComplement {
        if same {
            return 0
        }
        return 1
    }
    if same {
        return 1
    }
    return 0
}

// locationScore rewards an exact city match only. Remote accommodation is a
// deliberate non-goal: groups are meant to meet in person.
func (s *Scorer) locationScore(a, b *EligibleUser) float64 {
    if a.City == nil || *a.City == "" || b.City == nil || *b.City == "" {
        return neutralSubScore
    }
    if strings.EqualFold(strings.TrimSpace(*a.City), strings.TrimSpace(*b.City)) {
        return 1
    }
    return 0
}

// interestScore is the Jaccard similarity over the union of all interest-tag
// sets.
func (s *Scorer) interestScore(a, b *EligibleUser) float64 {
    tagsA := a.AllInterests()
    tagsB := b.AllInterests()
    if len(tagsA) == 0 || len(tagsB) == 0 {
        return neutralSubScore
    }
    return jaccard(tagsA, tagsB)
}

// availabilityScore checks for any shared availability slot.
func (s *Scorer) availabilityScore(a, b *EligibleUser) float64 {
    if len(a.AvailabilitySlots) == 0 || len(b.AvailabilitySlots) == 0 {
        return neutralSubScore
    }

    slots := make(map[string]bool, len(a.AvailabilitySlots))
    for _, slot := range a.AvailabilitySlots {
        slots[normalizeTag(slot)] = true
    }
    for _, slot := range b.AvailabilitySlots {
        if slots[normalizeTag(slot)] {
            return 1
        }
    }
    return 0
}

// genderCompatible checks both directions of the stated preferences. A
// missing or "any" preference is the documented neutral default and never
// excludes anyone.
func genderCompatible(a, b *EligibleUser) bool {
    return acceptsGender(a.PreferredGender, b.Gender) && acceptsGender(b.PreferredGender, a.Gender)
}

func acceptsGender(preference *string, gender string) bool {
    if preference == nil {
        return true
    }
    pref := normalizeTag(*preference)
    if pref == "" || pref == "any" {
        return true
    }
    return pref == normalizeTag(gender)
}

// jaccard computes |A ∩ B| / |A ∪ B| over normalized tags.
func jaccard(tagsA, tagsB []string) float64 {
    setA := make(map[string]bool, len(tagsA))
    for _, tag := range tagsA {
        setA[normalizeTag(tag)] = true
    }
    setB := make(map[string]bool, len(tagsB))
    for _, tag := range tagsB {
        setB[normalizeTag(tag)] = true
    }

    matches := 0
    for tag := range setB {
        if setA[tag] {
            matches++
        }
    }

    union := len(setA) + len(setB) - matches
    if union == 0 {
        return 0
    }
    return float64(matches) / float64(union)
}
