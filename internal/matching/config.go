package matching

import (
    "fmt"
    "math"
    "time"
)

// Specialty policies: reward same-specialty peers or cross-specialty mixes.
const (
    SpecialtyPolicySame       = "same"
    SpecialtyPolicyComplement = "complement"
)

// Cooldown modes: "hard" forbids re-pairing inside the window, "soft" applies
// a score penalty but still allows the pair.
const (
    CooldownModeHard = "hard"
    CooldownModeSoft = "soft"
)

// Config centralizes every matching knob that used to live as scattered
// literals at call sites. It is validated once at engine construction; an
// invalid config is a deployment error and fails fast before any scoring.
type Config struct {
    // Group sizing. Groups are built toward TargetGroupSize; a group below
    // MinGroupSize is never emitted. When AllowOversizeGroups is set,
    // remainder users may be folded into existing groups up to MaxGroupSize
    // instead of being reported unmatched.
    TargetGroupSize     int
    MinGroupSize        int
    MaxGroupSize        int
    AllowOversizeGroups bool

    // Scoring weights. Must be non-negative and sum to 1.
    SpecialtyWeight    float64
    LocationWeight     float64
    InterestWeight     float64
    AvailabilityWeight float64
    GenderWeight       float64

    SpecialtyPolicy string

    // Repeat-avoidance. CooldownWeeks of 0 disables the check entirely.
    CooldownMode    string
    CooldownWeeks   int
    CooldownPenalty float64

    // Bound on the local-improvement passes so a run always terminates.
    MaxSwapPasses int

    // Worker goroutines used to fill the score matrix. 1 means sequential.
    ScoreWorkers int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
    return Config{
        TargetGroupSize:     3,
        MinGroupSize:        3,
        MaxGroupSize:        4,
        AllowOversizeGroups: false,
        SpecialtyWeight:     0.25,
        LocationWeight:      0.20,
        InterestWeight:      0.25,
        AvailabilityWeight:  0.15,
        GenderWeight:        0.15,
        SpecialtyPolicy:     SpecialtyPolicySame,
        CooldownMode:        CooldownModeHard,
        CooldownWeeks:       4,
        CooldownPenalty:     0.5,
        MaxSwapPasses:       5,
        ScoreWorkers:        4,
    }
}

// CooldownWindow is the trailing period inside which a previously grouped
// pair is excluded or penalized.
func (c Config) CooldownWindow() time.Duration {
    return time.Duration(c.CooldownWeeks) * 7 * 24 * time.Hour
}

// Validate checks the config for deployment mistakes.
func (c Config) Validate() error {
    if c.TargetGroupSize < 2 {
        return fmt.Errorf("target group size must be at least 2, got %d", c.TargetGroupSize)
    }
    if c.MinGroupSize < 2 || c.MinGroupSize > c.TargetGroupSize {
        return fmt.Errorf("min group size must be in [2, %d], got %d", c.TargetGroupSize, c.MinGroupSize)
    }
    if c.MaxGroupSize < c.TargetGroupSize {
        return fmt.Errorf("max group size %d is below target group size %d", c.MaxGroupSize, c.TargetGroupSize)
    }

    weights := []struct {
        name  string
        value float64
    }{
        {"specialty", c.SpecialtyWeight},
        {"location", c.LocationWeight},
        {"interest", c.InterestWeight},
        {"availability", c.AvailabilityWeight},
        {"gender", c.GenderWeight},
    }
    sum := 0.0
    for _, w := range weights {
        if w.value < 0 {
            return fmt.Errorf("%s weight must not be negative, got %f", w.name, w.value)
        }
        sum += w.value
    }
    if math.Abs(sum-1.0) > 0.001 {
        return fmt.Errorf("scoring weights must sum to 1.0, got %f", sum)
    }

    switch c.SpecialtyPolicy {
    case SpecialtyPolicySame, SpecialtyPolicyComplement:
    default:
        return fmt.Errorf("invalid specialty policy: %q", c.SpecialtyPolicy)
    }

    switch c.CooldownMode {
    case CooldownModeHard, CooldownModeSoft:
    default:
        return fmt.Errorf("invalid cooldown mode: %q", c.CooldownMode)
    }
    if c.CooldownWeeks < 0 {
        return fmt.Errorf("cooldown weeks must not be negative, got %d", c.CooldownWeeks)
    }
    if c.CooldownPenalty < 0 || c.CooldownPenalty > 1 {
        return fmt.Errorf("cooldown penalty must be in [0, 1], got %f", c.CooldownPenalty)
    }

    if c.MaxSwapPasses < 0 {
        return fmt.Errorf("max swap passes must not be negative, got %d", c.MaxSwapPasses)
    }
    if c.ScoreWorkers < 1 {
        return fmt.Errorf("score workers must be at least 1, got %d", c.ScoreWorkers)
    }

    return nil
}
