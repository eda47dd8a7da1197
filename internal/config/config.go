package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docfinder/internal/domain"
)

// Config holds the docfinder API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	LLM      LLMConfig      `yaml:"llm"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API keys to the company (tenant) they belong to.
// No entries disables auth: the tenant comes from the X-Company-Name header.
type AuthConfig struct {
	Tenants map[string]string `yaml:"tenants"`
}

// Enabled reports whether bearer authentication is required.
func (a AuthConfig) Enabled() bool { return len(a.Tenants) > 0 }

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
	DefaultPageSize int      `yaml:"default_page_size"`
	MaxPageSize     int      `yaml:"max_page_size"`
	MaxBatchSize    int      `yaml:"max_batch_size"`
}

// DatabaseConfig holds database connection settings (Redis protocol).
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds ranking and rate-limit settings.
type SearchConfig struct {
	RatePerSec float64          `yaml:"rate_per_sec"` // per tenant, 0 = unlimited
	Burst      int              `yaml:"burst"`
	Documents  CollectionConfig `yaml:"documents"`
	Manual     CollectionConfig `yaml:"manual"`
}

// CollectionConfig tunes ranking for one collection.
type CollectionConfig struct {
	Weights    WeightsConfig `yaml:"weights"`
	TieBreak   string        `yaml:"tie_break"` // recency, none
	DetectType *bool         `yaml:"detect_type"`
}

// WeightsConfig overrides scoring weights. Unset fields keep defaults.
type WeightsConfig struct {
	Title              *float64 `yaml:"title"`
	Tag                *float64 `yaml:"tag"`
	Section            *float64 `yaml:"section"`
	IntentSection      *float64 `yaml:"intent_section"`
	HighPriorityFactor *float64 `yaml:"high_priority_factor"`
}

// LLMConfig holds the chat-completion provider settings.
type LLMConfig struct {
	APIKey             string  `yaml:"api_key"`
	BaseURL            string  `yaml:"base_url"`
	Model              string  `yaml:"model"`
	Temperature        float32 `yaml:"temperature"`
	TimeoutSec         int     `yaml:"timeout_sec"`
	SummaryCacheTTLSec int     `yaml:"summary_cache_ttl_sec"`
	DailyTokenLimit    int64   `yaml:"daily_token_limit"`   // per tenant, 0 = unlimited
	MonthlyTokenLimit  int64   `yaml:"monthly_token_limit"` // per tenant, 0 = unlimited
	ClassifyOnIngest   bool    `yaml:"classify_on_ingest"`
}

// Enabled reports whether an LLM provider is configured.
func (l LLMConfig) Enabled() bool { return l.APIKey != "" }

// IngestConfig configures the optional directory watcher.
type IngestConfig struct {
	WatchDir   string `yaml:"watch_dir"`
	Tenant     string `yaml:"tenant"`
	Collection string `yaml:"collection"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.DefaultPageSize <= 0 {
		c.HTTP.DefaultPageSize = 20
	}
	if c.HTTP.MaxPageSize <= 0 {
		c.HTTP.MaxPageSize = 100
	}
	if c.HTTP.MaxBatchSize <= 0 {
		c.HTTP.MaxBatchSize = 100
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.RatePerSec > 0 && c.Search.Burst <= 0 {
		c.Search.Burst = max(1, int(c.Search.RatePerSec))
	}
	if c.Search.Documents.TieBreak == "" {
		c.Search.Documents.TieBreak = "recency"
	}
	if c.Search.Manual.TieBreak == "" {
		c.Search.Manual.TieBreak = "none"
	}
	if c.Search.Documents.DetectType == nil {
		on := true
		c.Search.Documents.DetectType = &on
	}
	if c.Search.Manual.DetectType == nil {
		off := false
		c.Search.Manual.DetectType = &off
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 20
	}
	if c.LLM.SummaryCacheTTLSec <= 0 {
		c.LLM.SummaryCacheTTLSec = 3600
	}
	if c.Ingest.Tenant == "" {
		c.Ingest.Tenant = "default"
	}
	if c.Ingest.Collection == "" {
		c.Ingest.Collection = "documents"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "docfinder:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.RatePerSec < 0 {
		return fmt.Errorf("search.rate_per_sec must be non-negative, got %v", c.Search.RatePerSec)
	}
	for name, cc := range map[string]CollectionConfig{"documents": c.Search.Documents, "manual": c.Search.Manual} {
		if err := cc.validate("search." + name); err != nil {
			return err
		}
	}
	if c.LLM.DailyTokenLimit < 0 || c.LLM.MonthlyTokenLimit < 0 {
		return fmt.Errorf("llm token limits must be non-negative")
	}
	switch c.Ingest.Collection {
	case "documents", "manual":
	default:
		return fmt.Errorf("ingest.collection must be \"documents\" or \"manual\", got %q", c.Ingest.Collection)
	}
	for key, tenant := range c.Auth.Tenants {
		if key == "" || strings.TrimSpace(tenant) == "" {
			return fmt.Errorf("auth.tenants entries need a non-empty key and company name")
		}
		if err := domain.ValidateTenant(tenant); err != nil {
			return fmt.Errorf("auth.tenants: %w", err)
		}
	}
	if err := domain.ValidateTenant(c.Ingest.Tenant); err != nil {
		return fmt.Errorf("ingest.tenant: %w", err)
	}
	return nil
}

func (cc CollectionConfig) validate(path string) error {
	switch cc.TieBreak {
	case "recency", "none":
	default:
		return fmt.Errorf("%s.tie_break must be \"recency\" or \"none\", got %q", path, cc.TieBreak)
	}
	w := cc.Weights
	for name, v := range map[string]*float64{
		"title": w.Title, "tag": w.Tag, "section": w.Section,
		"intent_section": w.IntentSection, "high_priority_factor": w.HighPriorityFactor,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s.weights.%s must be non-negative, got %v", path, name, *v)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
