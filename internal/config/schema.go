package config

// Config is the root configuration structure.
type Config struct {
	Catalog    CatalogConfig    `toml:"catalog"`
	Generation GenerationConfig `toml:"generation"`
	Speech     SpeechConfig     `toml:"speech"`
	Playback   PlaybackConfig   `toml:"playback"`
	TUI        TUIConfig        `toml:"tui"`
	Log        LogConfig        `toml:"log"`
}

// CatalogConfig holds podcast directory settings. An empty base_url keeps
// the app on its built-in listings.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// GenerationConfig holds script/thumbnail generation settings.
type GenerationConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// SpeechConfig holds text-to-speech settings.
type SpeechConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Voice   string `toml:"voice"`
}

// PlaybackConfig holds playback session settings.
type PlaybackConfig struct {
	Volume        float64 `toml:"volume"`
	Rate          float64 `toml:"rate"`
	StrictSources bool    `toml:"strict_sources"`
	MPVPath       string  `toml:"mpv_path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
