package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"updatescout/internal/domain"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "UPDATESCOUT_CONFIG"
	versionEnv        = "UPDATESCOUT_VERSION"
	buildEnv          = "UPDATESCOUT_BUILD"
	searchPatternEnv  = "UPDATESCOUT_SEARCH_PATTERN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Query         QueryConfig        `yaml:"query"`
	Catalog       CatalogConfig      `yaml:"catalog"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// QueryConfig selects which update the pipeline resolves.
type QueryConfig struct {
	Version       string `yaml:"version"`
	Build         string `yaml:"build"`
	SearchPattern string `yaml:"searchPattern"`
}

// CatalogConfig describes the public update catalog endpoints.
type CatalogConfig struct {
	SearchURL         string `yaml:"searchUrl"`
	DownloadDialogURL string `yaml:"downloadDialogUrl"`
	// UseOuterMarkup is set on hosts whose renderer exposes only the outer
	// markup of page anchors instead of their parsed inner text.
	UseOuterMarkup bool `yaml:"useOuterMarkup"`
}

// SchedulerConfig defines when watch-mode runs execute; empty means run once.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(versionEnv); v != "" {
		c.Query.Version = v
	}

	if v := os.Getenv(buildEnv); v != "" {
		c.Query.Build = v
	}

	if v := os.Getenv(searchPatternEnv); v != "" {
		c.Query.SearchPattern = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Query.Version != "" {
		base.Query.Version = override.Query.Version
	}
	if override.Query.Build != "" {
		base.Query.Build = override.Query.Build
	}
	if override.Query.SearchPattern != "" {
		base.Query.SearchPattern = override.Query.SearchPattern
	}

	if override.Catalog.SearchURL != "" {
		base.Catalog.SearchURL = override.Catalog.SearchURL
	}
	if override.Catalog.DownloadDialogURL != "" {
		base.Catalog.DownloadDialogURL = override.Catalog.DownloadDialogURL
	}
	if override.Catalog.UseOuterMarkup {
		base.Catalog.UseOuterMarkup = true
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Query:   QueryConfig{Version: VersionWindows10},
		Catalog: CatalogConfig{
			SearchURL:         defaultSearchURL,
			DownloadDialogURL: defaultDownloadDialogURL,
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
	}
}

// ResolveProfile validates the configured query and maps it onto a concrete
// version profile. It runs before the pipeline starts; an invalid version,
// build, or search pattern never reaches a network call.
func (q QueryConfig) ResolveProfile() (domain.VersionProfile, error) {
	profile, err := resolveVersion(q)
	if err != nil {
		return domain.VersionProfile{}, err
	}

	if q.SearchPattern != "" {
		profile.SearchPattern = q.SearchPattern
	}

	if _, err := regexp.Compile("(?i)" + profile.SearchPattern); err != nil {
		return domain.VersionProfile{}, fmt.Errorf("invalid search pattern %q: %w", profile.SearchPattern, err)
	}

	return profile, nil
}
