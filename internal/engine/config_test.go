package engine

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted intent bounds", func(c *Config) { c.Intent.MOFUMin = 0.8 }},
		{"zero mofu", func(c *Config) { c.Intent.MOFUMin = 0 }},
		{"stabilizing below exploration", func(c *Config) { c.Learning.StabilizingMaxDays = 2 }},
		{"negative volatility penalty", func(c *Config) { c.Intent.VolatilityPenalty = -0.1 }},
		{"cpa multiplier below one", func(c *Config) { c.Fatigue.CPAMultiplier = 0.9 }},
		{"concentration above one", func(c *Config) { c.Fatigue.ConcentrationMax = 1.5 }},
		{"zero sub units", func(c *Config) { c.Structure.MaxActiveSubUnits = 0 }},
		{"zero scaling frequency", func(c *Config) { c.Alerts.ScalingFrequencyMax = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
