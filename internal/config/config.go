package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the panelgap configuration.
type Config struct {
	Format      string            `json:"format"`
	FailOn      string            `json:"failOn"`
	MaxListed   int               `json:"maxListed"`
	Experts     []string          `json:"experts,omitempty"`
	MappingFile string            `json:"mappingFile,omitempty"`
	Workers     int               `json:"workers"`
	LogLevel    string            `json:"logLevel,omitempty"`
	Lens        LensConfig        `json:"lens"`
	Transcripts TranscriptsConfig `json:"transcripts"`
	Redis       RedisConfig       `json:"redis"`
	Cache       CacheConfig       `json:"cache"`
	Privacy     PrivacyConfig     `json:"privacy"`
}

// LensConfig locates analyzer output and the analyzer CLI.
type LensConfig struct {
	Glob    string `json:"glob,omitempty"`
	CLIPath string `json:"cliPath,omitempty"`
}

// TranscriptsConfig selects panel transcripts in a directory.
type TranscriptsConfig struct {
	Glob       string   `json:"glob,omitempty"`
	ReviewFile string   `json:"reviewFile,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
}

// RedisConfig points at the saga event store.
type RedisConfig struct {
	Addr         string `json:"addr,omitempty"`
	Password     string `json:"password,omitempty"`
	DB           int    `json:"db"`
	StreamPrefix string `json:"streamPrefix,omitempty"`
	EventType    string `json:"eventType,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:    "text",
		FailOn:    "none",
		MaxListed: 10,
		Experts:   []string{"Trace", "Rook", "Patch", "Sprocket", "Nova", "Ledger"},
		Workers:   4,
		LogLevel:  "warn",
		Lens: LensConfig{
			Glob:    "ao-lens-*.json",
			CLIPath: "dist/cli.js",
		},
		Transcripts: TranscriptsConfig{
			Glob:       "claude-wp-*.txt",
			ReviewFile: "ao-panel-review.txt",
		},
		Redis: RedisConfig{
			Addr:         "redis:6379",
			StreamPrefix: "dev_team:saga_events:",
			EventType:    "ao_panel_completed",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for panelgap.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "panelgap"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "panelgap"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "panelgap"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "panelgap"), nil
	default:
		return filepath.Join(home, ".config", "panelgap"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// loadFile loads config from the config file. Returns nil and nil error if
// the file doesn't exist.
func loadFile() (*fileConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &fc, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadDotEnv loads .env from the working directory and the file named by
// PANELGAP_ENV_FILE. Variables already set in the environment win. Missing
// files are ignored.
func LoadDotEnv() error {
	paths := []string{".env"}
	if p := os.Getenv("PANELGAP_ENV_FILE"); p != "" {
		paths = append(paths, p)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the effective config by merging: defaults <- file <- .env/env
// <- overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fc, err := loadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fc)

	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(&cfg, k, v); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// LoadSaved returns defaults merged with the config file only, so that
// editing and saving it never persists environment values.
func LoadSaved() (Config, error) {
	cfg := Default()
	fc, err := loadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fc)
	return cfg, nil
}

// fileConfig mirrors Config with pointer booleans so an explicit false in
// the file can be told apart from an absent key.
type fileConfig struct {
	Config
	Cache struct {
		Enabled    *bool  `json:"enabled"`
		Dir        string `json:"dir,omitempty"`
		TTLSeconds int    `json:"ttlSeconds"`
	} `json:"cache"`
	Privacy struct {
		RedactSecrets *bool `json:"redactSecrets"`
	} `json:"privacy"`
}

func mergeFile(dst *Config, fc *fileConfig) {
	if fc == nil {
		return
	}
	src := fc.Config
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.MaxListed > 0 {
		dst.MaxListed = src.MaxListed
	}
	if len(src.Experts) > 0 {
		dst.Experts = src.Experts
	}
	if src.MappingFile != "" {
		dst.MappingFile = src.MappingFile
	}
	if src.Workers > 0 {
		dst.Workers = src.Workers
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Lens.Glob != "" {
		dst.Lens.Glob = src.Lens.Glob
	}
	if src.Lens.CLIPath != "" {
		dst.Lens.CLIPath = src.Lens.CLIPath
	}
	if src.Transcripts.Glob != "" {
		dst.Transcripts.Glob = src.Transcripts.Glob
	}
	if src.Transcripts.ReviewFile != "" {
		dst.Transcripts.ReviewFile = src.Transcripts.ReviewFile
	}
	if len(src.Transcripts.Exclude) > 0 {
		dst.Transcripts.Exclude = src.Transcripts.Exclude
	}
	if src.Redis.Addr != "" {
		dst.Redis.Addr = src.Redis.Addr
	}
	if src.Redis.Password != "" {
		dst.Redis.Password = src.Redis.Password
	}
	if src.Redis.DB > 0 {
		dst.Redis.DB = src.Redis.DB
	}
	if src.Redis.StreamPrefix != "" {
		dst.Redis.StreamPrefix = src.Redis.StreamPrefix
	}
	if src.Redis.EventType != "" {
		dst.Redis.EventType = src.Redis.EventType
	}
	if fc.Cache.Enabled != nil {
		dst.Cache.Enabled = *fc.Cache.Enabled
	}
	if fc.Cache.Dir != "" {
		dst.Cache.Dir = fc.Cache.Dir
	}
	if fc.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = fc.Cache.TTLSeconds
	}
	if fc.Privacy.RedactSecrets != nil {
		dst.Privacy.RedactSecrets = *fc.Privacy.RedactSecrets
	}
}

// envKeys maps environment variables to config keys understood by SetField.
var envKeys = []struct {
	env string
	key string
}{
	{"PANELGAP_FORMAT", "format"},
	{"PANELGAP_FAIL_ON", "failOn"},
	{"PANELGAP_EXPERTS", "experts"},
	{"PANELGAP_MAPPING_FILE", "mappingFile"},
	{"PANELGAP_LOG_LEVEL", "logLevel"},
	{"PANELGAP_WORKERS", "workers"},
	{"REDIS_ADDR", "redis.addr"},
	{"REDIS_PASSWORD", "redis.password"},
	{"REDIS_DB", "redis.db"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "maxListed":
		return setInt(&cfg.MaxListed, key, value)
	case "experts":
		cfg.Experts = splitList(value)
	case "mappingFile":
		cfg.MappingFile = value
	case "workers":
		return setInt(&cfg.Workers, key, value)
	case "logLevel":
		cfg.LogLevel = value
	case "lens.glob":
		cfg.Lens.Glob = value
	case "lens.cliPath":
		cfg.Lens.CLIPath = value
	case "transcripts.glob":
		cfg.Transcripts.Glob = value
	case "transcripts.reviewFile":
		cfg.Transcripts.ReviewFile = value
	case "transcripts.exclude":
		cfg.Transcripts.Exclude = splitList(value)
	case "redis.addr":
		cfg.Redis.Addr = value
	case "redis.password":
		cfg.Redis.Password = value
	case "redis.db":
		return setInt(&cfg.Redis.DB, key, value)
	case "redis.streamPrefix":
		cfg.Redis.StreamPrefix = value
	case "redis.eventType":
		cfg.Redis.EventType = value
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Redacted returns a copy of cfg safe to print.
func (c Config) Redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "********"
	}
	c.Experts = append([]string(nil), c.Experts...)
	return c
}
