package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/podly-fm/podly/internal/core"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}
	if err := c.Generation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generation: %w", err))
	}
	if err := c.Speech.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("speech: %w", err))
	}
	if err := c.Playback.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks CatalogConfig for errors.
func (c *CatalogConfig) Validate() error {
	return validateURL(c.BaseURL, "base_url")
}

// Validate checks GenerationConfig for errors.
func (c *GenerationConfig) Validate() error {
	return validateURL(c.BaseURL, "base_url")
}

// Validate checks SpeechConfig for errors.
func (c *SpeechConfig) Validate() error {
	if err := validateURL(c.BaseURL, "base_url"); err != nil {
		return err
	}
	switch c.Voice {
	case "", "male", "female", "robotic":
		// valid
	default:
		return fmt.Errorf("invalid voice: %s (must be male, female, or robotic)", c.Voice)
	}
	return nil
}

// Validate checks PlaybackConfig for errors.
func (c *PlaybackConfig) Validate() error {
	if c.Volume < 0 || c.Volume > 1 {
		return errors.New("volume must be between 0 and 1")
	}
	if c.Rate != 0 {
		valid := false
		for _, r := range core.Rates {
			if c.Rate == r {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid rate: %v (must be one of %v)", c.Rate, core.Rates)
		}
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}

func validateURL(raw, field string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %s", field, raw)
	}
	return nil
}
