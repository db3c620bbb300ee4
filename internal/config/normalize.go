package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIndex()
	c.normalizeMedia()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DownloadDir, err = expandPath(strings.TrimSpace(c.Paths.DownloadDir)); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIndex() {
	c.Index.BaseURL = strings.TrimRight(strings.TrimSpace(c.Index.BaseURL), "/")
	if c.Index.BaseURL == "" {
		c.Index.BaseURL = defaultIndexBaseURL
	}
	if value, ok := os.LookupEnv("SUBFETCH_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Index.UserAgent = value
	}
	c.Index.UserAgent = strings.TrimSpace(c.Index.UserAgent)
	if c.Index.UserAgent == "" {
		c.Index.UserAgent = defaultIndexUserAgent
	}
	c.Index.Language = strings.ToLower(strings.TrimSpace(c.Index.Language))
	if c.Index.Language == "" {
		c.Index.Language = defaultIndexLanguage
	}
	if c.Index.TimeoutSeconds == 0 {
		c.Index.TimeoutSeconds = defaultIndexTimeoutSeconds
	}
}

func (c *Config) normalizeMedia() {
	if len(c.Media.Extensions) == 0 {
		c.Media.Extensions = append([]string(nil), defaultMediaExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Media.Extensions))
	seen := make(map[string]struct{}, len(c.Media.Extensions))
	for _, ext := range c.Media.Extensions {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Media.Extensions = exts
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
