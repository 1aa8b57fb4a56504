package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const DefaultPath = "config.yaml"

type Config struct {
	CatalogPath  string `yaml:"catalog_path"`
	CatalogSheet string `yaml:"catalog_sheet"`

	ClinicName  string `yaml:"clinic_name"`
	ReportTitle string `yaml:"report_title"`
	ExportDir   string `yaml:"export_dir"`

	DBPath         string `yaml:"db_path"`
	HistoryPersist *bool  `yaml:"history_persist"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	Timezone string `yaml:"timezone"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
	DigestSchedule string `yaml:"digest_schedule"`

	LLMSummaryEnabled bool   `yaml:"llm_summary_enabled"`
	LLMModel          string `yaml:"llm_model"`
	AnthropicAPIKey   string `yaml:"anthropic_api_key"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// Load reads the YAML file at path (CONFIG_PATH wins when set, a missing file
// is fine), applies env overrides and defaults, then validates.
func Load(path string) (Config, error) {
	var cfg Config

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		path = envPath
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	envOverride(&c.CatalogPath, "CATALOG_PATH")
	envOverride(&c.CatalogSheet, "CATALOG_SHEET")
	envOverride(&c.ClinicName, "CLINIC_NAME")
	envOverride(&c.ReportTitle, "REPORT_TITLE")
	envOverride(&c.ExportDir, "EXPORT_DIR")
	envOverride(&c.DBPath, "DB_PATH")
	envOverride(&c.LogLevel, "LOG_LEVEL")
	envOverride(&c.LogFile, "LOG_FILE")
	envOverride(&c.Timezone, "TIMEZONE")
	envOverride(&c.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&c.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverrideAllowEmpty(&c.DigestSchedule, "DIGEST_SCHEDULE")
	envOverride(&c.LLMModel, "LLM_MODEL")
	envOverride(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverrideBool(&c.LLMSummaryEnabled, "LLM_SUMMARY_ENABLED")
	if val := os.Getenv("HISTORY_PERSIST"); val != "" {
		persist := parseBool(val)
		c.HistoryPersist = &persist
	}
	return envOverrideInt(&c.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
}

func (c *Config) applyDefaults() {
	if c.CatalogPath == "" {
		c.CatalogPath = "./Unified_Food_Compatibility_Table_With_Resonance.xlsx"
	}
	if c.ClinicName == "" {
		c.ClinicName = "Resonance Clinic"
	}
	if c.ReportTitle == "" {
		c.ReportTitle = "Personalized Food Resonance Report"
	}
	if c.ExportDir == "" {
		c.ExportDir = "./exports"
	}
	if c.DBPath == "" {
		c.DBPath = "./resonance.db"
	}
	if c.HistoryPersist == nil {
		persist := true
		c.HistoryPersist = &persist
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = "./resonance.log"
	}
	if c.LLMModel == "" {
		c.LLMModel = "claude-3-5-haiku-latest"
	}
	if c.ExternalHTTPTimeoutSeconds == 0 {
		c.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
}

func (c *Config) validate() error {
	if (c.SlackBotToken == "") != (c.SlackChannelID == "") {
		return errors.New("slack_bot_token and slack_channel_id must be set together")
	}
	if c.LLMSummaryEnabled && c.AnthropicAPIKey == "" {
		return errors.New("anthropic_api_key is required when llm_summary_enabled=true")
	}
	if schedule := strings.TrimSpace(c.DigestSchedule); schedule != "" {
		if !c.SlackConfigured() {
			return errors.New("digest_schedule requires slack_bot_token and slack_channel_id")
		}
		if !c.PersistHistory() {
			return errors.New("digest_schedule requires history_persist=true")
		}
		if _, err := ParseSchedule(schedule); err != nil {
			return fmt.Errorf("invalid digest_schedule '%s': %w", schedule, err)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level '%s': want debug, info, warn or error", c.LogLevel)
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", c.ExternalHTTPTimeoutSeconds)
	}

	if strings.EqualFold(c.Timezone, "Local") {
		c.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

// ParseSchedule parses a standard 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(strings.TrimSpace(expr))
}

func (c Config) PersistHistory() bool {
	return c.HistoryPersist == nil || *c.HistoryPersist
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func (c Config) DigestEnabled() bool {
	return strings.TrimSpace(c.DigestSchedule) != ""
}

func (c Config) ExternalHTTPTimeout() time.Duration {
	return time.Duration(c.ExternalHTTPTimeoutSeconds) * time.Second
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = parseBool(val)
	}
}

func parseBool(val string) bool {
	return strings.EqualFold(val, "true") || val == "1"
}
