package matching

import (
    "testing"
    "time"
)

func TestDefaultConfigIsValid(t *testing.T) {
    if err := DefaultConfig().Validate(); err != nil {
        t.Errorf("default config must validate, got: %v", err)
    }
}

func TestConfigValidate(t *testing.T) {
    tests := []struct {
        name   string
        mutate func(c *Config)
        valid  bool
    }{
        {"defaults", func(c *Config) {}, true},
        {"target below two", func(c *Config) { c.TargetGroupSize = 1 }, false},
        {"min above target", func(c *Config) { c.MinGroupSize = 5 }, false},
        {"min below two", func(c *Config) { c.MinGroupSize = 1 }, false},
        {"max below target", func(c *Config) { c.MaxGroupSize = 2 }, false},
        {"pair groups", func(c *Config) {
            c.TargetGroupSize = 2
            c.MinGroupSize = 2
            c.MaxGroupSize = 2
        }, true},
        {"negative weight", func(c *Config) {
            c.SpecialtyWeight = -0.25
            c.LocationWeight = 0.70
        }, false},
        {"weights sum above one", func(c *Config) { c.GenderWeight = 0.50 }, false},
        {"weights sum below one", func(c *Config) { c.InterestWeight = 0.0 }, false},
        {"complement policy", func(c *Config) { c.SpecialtyPolicy = SpecialtyPolicyComplement }, true},
        {"unknown policy", func(c *Config) { c.SpecialtyPolicy = "mixed" }, false},
        {"soft cooldown", func(c *Config) { c.CooldownMode = CooldownModeSoft }, true},
        {"unknown cooldown mode", func(c *Config) { c.CooldownMode = "off" }, false},
        {"cooldown disabled", func(c *Config) { c.CooldownWeeks = 0 }, true},
        {"negative cooldown weeks", func(c *Config) { c.CooldownWeeks = -1 }, false},
        {"penalty above one", func(c *Config) { c.CooldownPenalty = 1.5 }, false},
        {"negative swap passes", func(c *Config) { c.MaxSwapPasses = -1 }, false},
        {"zero swap passes", func(c *Config) { c.MaxSwapPasses = 0 }, true},
        {"zero workers", func(c *Config) { c.ScoreWorkers = 0 }, false},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            cfg := DefaultConfig()
            tt.mutate(&cfg)

            err := cfg.Validate()
            if tt.valid && err != nil {
                t.Errorf("expected valid config, got: %v", err)
            }
            if !tt.valid && err == nil {
                t.Error("expected validation error, got nil")
            }
        })
    }
}

func TestCooldownWindow(t *testing.T) {
    cfg := DefaultConfig()
    cfg.CooldownWeeks = 2
    if got, want := cfg.CooldownWindow(), 14*24*time.Hour; got != want {
        t.Errorf("CooldownWindow() = %v, want %v", got, want)
    }

    cfg.CooldownWeeks = 0
    if cfg.CooldownWindow() != 0 {
        t.Errorf("zero weeks should yield a zero window, got %v", cfg.CooldownWindow())
    }
}
