// Package config loads and saves the finburn TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/finburn/internal/classify"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

// Environment overrides applied by Load.
const (
	EnvDataDir  = "FINBURN_DATA_DIR"
	EnvLogLevel = "FINBURN_LOG_LEVEL"
	EnvConfig   = "FINBURN_CONFIG"
)

// Config holds all finburn configuration.
type Config struct {
	General        GeneralConfig        `toml:"general"`
	Report         ReportConfig         `toml:"report"`
	Appearance     AppearanceConfig     `toml:"appearance"`
	Classification ClassificationConfig `toml:"classification"`
	Daemon         DaemonConfig         `toml:"daemon"`
	TUI            TUIConfig            `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir     string `toml:"data_dir,omitempty"`
	DefaultDays int    `toml:"default_days"`
	Currency    string `toml:"currency"`
	LogLevel    string `toml:"log_level,omitempty"`
}

// ReportConfig controls how metrics are computed for reports.
type ReportConfig struct {
	// TrendWindow is "calendar" (month-to-date vs last month) or "range".
	TrendWindow string `toml:"trend_window"`
	// Granularity forces daily/weekly/monthly buckets; empty selects automatically.
	Granularity string `toml:"granularity,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ClassificationConfig holds user keyword rules evaluated before the built-ins.
type ClassificationConfig struct {
	Rules []RuleConfig `toml:"rules,omitempty"`
}

// RuleConfig is one user classification rule.
type RuleConfig struct {
	Name           string   `toml:"name"`
	Field          string   `toml:"field,omitempty"`
	Contains       []string `toml:"contains"`
	AccountingType string   `toml:"accounting_type"`
	Category       string   `toml:"category"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Interval     string `toml:"interval"`
	EventsBuffer int    `toml:"events_buffer"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 30,
			Currency:    "VND",
		},
		Report: ReportConfig{
			TrendWindow: string(pipeline.WindowCalendar),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			Interval:     "1m",
			EventsBuffer: 200,
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finburn")
}

// Path returns the full path to the config file. FINBURN_CONFIG takes precedence.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top of the file.
func Load() (Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads a config from path without applying environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.General.DataDir = dir
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.General.LogLevel = lvl
	}
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path, creating parent directories.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-selected config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate checks the values that cannot fall back to a default silently.
func (c Config) Validate() error {
	if _, err := pipeline.ParseTrendWindow(c.Report.TrendWindow); err != nil {
		return err
	}
	if _, ok := pipeline.ParseGranularity(c.Report.Granularity); !ok {
		return fmt.Errorf("unknown granularity %q", c.Report.Granularity)
	}
	if c.Daemon.Interval != "" {
		if _, err := time.ParseDuration(c.Daemon.Interval); err != nil {
			return fmt.Errorf("daemon interval: %w", err)
		}
	}
	for i, r := range c.Classification.Rules {
		if len(r.Contains) == 0 {
			return fmt.Errorf("classification rule %d (%s): contains is empty", i+1, r.Name)
		}
		if _, ok := classify.ParseAccountingType(r.AccountingType); !ok {
			return fmt.Errorf("classification rule %d (%s): unknown accounting type %q", i+1, r.Name, r.AccountingType)
		}
		switch classify.Field(strings.ToLower(r.Field)) {
		case "", classify.FieldAny, classify.FieldType, classify.FieldCategory:
		default:
			return fmt.Errorf("classification rule %d (%s): unknown field %q", i+1, r.Name, r.Field)
		}
	}
	return nil
}

// TrendWindow returns the configured growth window, defaulting to calendar.
func (c Config) TrendWindow() pipeline.TrendWindow {
	w, err := pipeline.ParseTrendWindow(c.Report.TrendWindow)
	if err != nil {
		return pipeline.WindowCalendar
	}
	return w
}

// DaemonInterval returns the configured poll interval, at least one second.
func (c Config) DaemonInterval() time.Duration {
	d, err := time.ParseDuration(c.Daemon.Interval)
	if err != nil || d < time.Second {
		return time.Minute
	}
	return d
}

// Keywords converts the user rules into classifier keywords.
func (c Config) Keywords() []classify.Keyword {
	out := make([]classify.Keyword, 0, len(c.Classification.Rules))
	for _, r := range c.Classification.Rules {
		t, _ := classify.ParseAccountingType(r.AccountingType)
		out = append(out, classify.Keyword{
			Name:     r.Name,
			Field:    classify.Field(strings.ToLower(r.Field)),
			Tokens:   r.Contains,
			Type:     t,
			Category: r.Category,
		})
	}
	return out
}

// Classifier builds a classifier with the user rules ahead of the built-ins.
func (c Config) Classifier() *classify.Classifier {
	if len(c.Classification.Rules) == 0 {
		return classify.Default()
	}
	return classify.New(c.Keywords()...)
}

// Engine builds a metrics engine from the configuration.
func (c Config) Engine() *pipeline.Engine {
	g, _ := pipeline.ParseGranularity(c.Report.Granularity)
	return &pipeline.Engine{
		Classifier:  c.Classifier(),
		Now:         time.Now,
		Window:      c.TrendWindow(),
		Granularity: g,
	}
}

// ResolveDataDir picks the data directory: flag, then config/env, then the
// XDG data home.
func (c Config) ResolveDataDir(flag string) string {
	if flag != "" {
		return flag
	}
	if c.General.DataDir != "" {
		return expandHome(c.General.DataDir)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "finburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "finburn")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
