package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIndex() error {
	parsed, err := url.Parse(c.Index.BaseURL)
	if err != nil {
		return fmt.Errorf("index.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("index.base_url must use http or https, got %q", c.Index.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("index.base_url must include a host, got %q", c.Index.BaseURL)
	}
	if strings.TrimSpace(c.Index.UserAgent) == "" {
		return errors.New("index.user_agent must be set")
	}
	if strings.TrimSpace(c.Index.Language) == "" {
		return errors.New("index.language must be set")
	}
	if strings.ContainsAny(c.Index.Language, "/ ") {
		return fmt.Errorf("index.language must be a single tag, got %q", c.Index.Language)
	}
	if c.Index.TimeoutSeconds <= 0 {
		return errors.New("index.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if len(c.Media.Extensions) == 0 {
		return errors.New("media.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal.path must be set when journal.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
