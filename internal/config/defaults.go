package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Speech: SpeechConfig{
			Voice: "male",
		},
		Playback: PlaybackConfig{
			Volume: 1.0,
			Rate:   1.0,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Speech
	if c.Speech.Voice == "" {
		c.Speech.Voice = d.Speech.Voice
	}

	// Playback
	if c.Playback.Volume == 0 {
		c.Playback.Volume = d.Playback.Volume
	}
	if c.Playback.Rate == 0 {
		c.Playback.Rate = d.Playback.Rate
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
