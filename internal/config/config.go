package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for timeclock, stored in
// ~/.timeclock/config.yaml.
type Config struct {
	// Spreadsheet is the title of the backing Google spreadsheet.
	Spreadsheet string `yaml:"spreadsheet"`
	// Timezone is the IANA zone used to stamp records (default Europe/Berlin).
	Timezone string `yaml:"timezone"`
	// FallbackSheet receives records from users not listed in Operators.
	FallbackSheet string `yaml:"fallback_sheet"`
	// Operators maps chat user ids to sheet labels. A listed user clocks
	// into Timesheet_<label>; everyone else shares FallbackSheet.
	Operators map[int64]string `yaml:"operators"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Media configures the voice and photo side pipelines.
	Media MediaConfig `yaml:"media"`
}

// MediaConfig holds settings for the transcription and table-scan services.
type MediaConfig struct {
	// TranscribeModel is the speech-to-text model name.
	TranscribeModel string `yaml:"transcribe_model"`
	// Language hints the spoken language for transcription and scans.
	Language string `yaml:"language"`
}

// Secrets are credentials read from the environment, never from the
// config file.
type Secrets struct {
	// BotToken authenticates the chat transport. Required.
	BotToken string
	// SheetKeyPath points at the service-account JSON key file.
	SheetKeyPath string
	// TranscribeAPIKey authorizes the speech-to-text service.
	TranscribeAPIKey string
	// ScanAPIKey authorizes the document parse service.
	ScanAPIKey string
}

const (
	DefaultSpreadsheet   = "Launch_Time_Tracker"
	DefaultFallbackSheet = "Timesheet_Unknown"
	DefaultLogLevel      = "info"
	DefaultModel         = "whisper-1"
	DefaultLanguage      = "de"
)

func defaultConfig() Config {
	return Config{
		Spreadsheet:   DefaultSpreadsheet,
		Timezone:      "Europe/Berlin",
		FallbackSheet: DefaultFallbackSheet,
		Operators:     map[int64]string{},
		LogLevel:      DefaultLogLevel,
		Media: MediaConfig{
			TranscribeModel: DefaultModel,
			Language:        DefaultLanguage,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# timeclock configuration – ~/.timeclock/config.yaml
#
# All settings are optional; the defaults below work against a spreadsheet
# named Launch_Time_Tracker. Credentials never live here – they come from
# the environment:
#   TELEGRAM_TOKEN        bot token (required)
#   GSHEET_KEY_PATH       service-account JSON key file
#   OPENAI_API_KEY        voice transcription (optional)
#   LLAMA_PARSE_API_KEY   photo table scans (optional)

# Title of the backing spreadsheet.
spreadsheet: Launch_Time_Tracker

# IANA timezone used to stamp clock records.
timezone: Europe/Berlin

# Worksheet receiving records from users not listed under operators.
fallback_sheet: Timesheet_Unknown

# Known operators: chat user id -> sheet label. Each operator clocks into
# a dedicated worksheet named Timesheet_<label>.
operators: {}
#  1794622246: Shane_Hill
#  495992751: Dmitry_Pozdniakov

# Logging: debug, info, warn or error.
log_level: info

media:
  # Speech-to-text model for voice notes.
  transcribe_model: whisper-1
  # Language hint for transcription.
  language: de
`

// Path returns the config file location, honoring TIMECLOCK_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("TIMECLOCK_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timeclock", "config.yaml"), nil
}

// Load reads the config file, creating it with annotated defaults on first
// run. Zero-value fields are filled with built-in defaults so callers
// always get a usable Config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.Spreadsheet == "" {
		cfg.Spreadsheet = DefaultSpreadsheet
	}
	if cfg.FallbackSheet == "" {
		cfg.FallbackSheet = DefaultFallbackSheet
	}
	if cfg.Operators == nil {
		cfg.Operators = map[int64]string{}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Media.TranscribeModel == "" {
		cfg.Media.TranscribeModel = DefaultModel
	}
	if cfg.Media.Language == "" {
		cfg.Media.Language = DefaultLanguage
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated
// default config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// SecretsFromEnv collects credentials. An empty bot token is a fatal
// startup condition for serve; the caller decides when to enforce it.
func SecretsFromEnv() Secrets {
	return Secrets{
		BotToken:         os.Getenv("TELEGRAM_TOKEN"),
		SheetKeyPath:     os.Getenv("GSHEET_KEY_PATH"),
		TranscribeAPIKey: os.Getenv("OPENAI_API_KEY"),
		ScanAPIKey:       os.Getenv("LLAMA_PARSE_API_KEY"),
	}
}
