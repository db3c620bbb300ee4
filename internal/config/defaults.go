package config

const (
	defaultIndexBaseURL        = "https://rest.opensubtitles.org/search"
	defaultIndexUserAgent      = "TemporaryUserAgent"
	defaultIndexLanguage       = "pob"
	defaultIndexTimeoutSeconds = 45
	defaultLogDir              = "~/.local/share/subfetch/logs"
	defaultJournalPath         = "~/.local/share/subfetch/journal.db"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultConfigLocation      = "~/.config/subfetch/config.toml"
	projectConfigName          = "subfetch.toml"
)

// defaultMediaExtensions lists the video suffixes discovered when no
// allow-list is configured.
var defaultMediaExtensions = []string{"mp4", "mkv", "avi", "mov", "wmv", "flv"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Index: Index{
			BaseURL:        defaultIndexBaseURL,
			UserAgent:      defaultIndexUserAgent,
			Language:       defaultIndexLanguage,
			TimeoutSeconds: defaultIndexTimeoutSeconds,
		},
		Media: Media{
			Extensions: append([]string(nil), defaultMediaExtensions...),
		},
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Journal: Journal{
			Path: defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
