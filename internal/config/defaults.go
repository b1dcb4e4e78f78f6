package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Drive: "",
		},
		State: StateConfig{
			Dir: "~/.config/spindle",
		},
		Rules: RulesConfig{
			OnRepeat:     RuleConfig{Enabled: true, Limit: 25},
			Forgotten:    RuleConfig{Enabled: false, Limit: 25},
			SecondChance: RuleConfig{Enabled: false, Limit: 25},
			TimeTravel:   RuleConfig{Enabled: true, Limit: 50},
			Flashback:    RuleConfig{Enabled: true, Limit: 50},
		},
		Scoring: ScoringConfig{
			Decay: 0.95,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Scrobble: ScrobbleConfig{
			BatchSize: 50,
		},
	}
}
