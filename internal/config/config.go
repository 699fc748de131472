package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "mailcraft.yaml"

// DefaultLLMEndpoint is the generation service used when none is configured.
const DefaultLLMEndpoint = "https://vaismodel.valasys.ai/api/generate"

// Config represents the mailcraft configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Uploads UploadsConfig `yaml:"uploads"`
	API     *APIConfig    `yaml:"api,omitempty"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port  int    `yaml:"port"`
	Host  string `yaml:"host"`
	Debug bool   `yaml:"debug"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMConfig configures the template generation service
type LLMConfig struct {
	Endpoint string         `yaml:"endpoint"`           // Generation endpoint URL (env vars expanded)
	Model    string         `yaml:"model"`              // Model name sent with each request
	APIKey   string         `yaml:"api_key,omitempty"`  // Optional bearer token (env vars expanded)
	Timeout  string         `yaml:"timeout,omitempty"`  // Request timeout (e.g., "30s"). Default: 60s
	Retry    *RetryConfig   `yaml:"retry,omitempty"`    // Retry configuration
	Breaker  *BreakerConfig `yaml:"breaker,omitempty"`  // When to stop calling an unreachable service
	Disabled bool           `yaml:"disabled,omitempty"` // Skip the service and always use keyword templates
}

// BreakerConfig decides when the generation service is treated as down and
// every prompt goes straight to the keyword templates.
type BreakerConfig struct {
	Trips    int    `yaml:"trips,omitempty"`    // Unavailable answers within a minute before going down (default: 5)
	Cooldown string `yaml:"cooldown,omitempty"` // How long to stay down before a trial call (e.g., "30s"). Default: 30s
}

// RetryConfig configures retry behavior for the generation service
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries,omitempty"` // Maximum retry attempts (default: 2)
	BaseDelay  string `yaml:"base_delay,omitempty"`  // Initial delay (e.g., "200ms"). Default: 200ms
	MaxDelay   string `yaml:"max_delay,omitempty"`   // Maximum delay (e.g., "5s"). Default: 5s
}

// GetEndpoint returns the endpoint with environment variable expansion
func (c LLMConfig) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultLLMEndpoint
	}
	return os.ExpandEnv(c.Endpoint)
}

// GetModel returns the model name (default: llama3)
func (c LLMConfig) GetModel() string {
	if c.Model == "" {
		return "llama3"
	}
	return c.Model
}

// GetAPIKey returns the API key with environment variable expansion
func (c LLMConfig) GetAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	return os.ExpandEnv(c.APIKey)
}

// GetTimeout returns the parsed timeout duration (default: 60s)
func (c LLMConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 60*time.Second)
}

// GetRetryMaxRetries returns the max retries (default: 2, set to 0 to disable retries)
func (c LLMConfig) GetRetryMaxRetries() int {
	if c.Retry == nil || c.Retry.MaxRetries < 0 {
		return 2
	}
	return c.Retry.MaxRetries
}

// GetRetryBaseDelay returns the base delay (default: 200ms)
func (c LLMConfig) GetRetryBaseDelay() time.Duration {
	if c.Retry == nil {
		return 200 * time.Millisecond
	}
	return parseDuration(c.Retry.BaseDelay, 200*time.Millisecond)
}

// GetRetryMaxDelay returns the max delay (default: 5s)
func (c LLMConfig) GetRetryMaxDelay() time.Duration {
	if c.Retry == nil {
		return 5 * time.Second
	}
	return parseDuration(c.Retry.MaxDelay, 5*time.Second)
}

// GetBreakerTrips returns how many unavailable answers mark the service down (default: 5)
func (c LLMConfig) GetBreakerTrips() int {
	if c.Breaker == nil || c.Breaker.Trips <= 0 {
		return 5
	}
	return c.Breaker.Trips
}

// GetBreakerCooldown returns how long the service stays down before a trial call (default: 30s)
func (c LLMConfig) GetBreakerCooldown() time.Duration {
	if c.Breaker == nil {
		return 30 * time.Second
	}
	return parseDuration(c.Breaker.Cooldown, 30*time.Second)
}

// CatalogConfig points at the fallback template catalog
type CatalogConfig struct {
	File  string `yaml:"file,omitempty"` // YAML catalog file; empty uses the built-in catalog
	Watch bool   `yaml:"watch"`          // Reload the file when it changes
}

// StorageConfig selects the document store
type StorageConfig struct {
	Driver   string `yaml:"driver"`              // "memory", "sqlite", "postgres" or "redis"
	DSN      string `yaml:"dsn,omitempty"`       // Driver-specific connection string (env vars expanded)
	CacheTTL string `yaml:"cache_ttl,omitempty"` // Read-through cache TTL for remote stores (e.g., "30s"). Default: disabled
}

// GetDriver returns the storage driver (default: memory)
func (c StorageConfig) GetDriver() string {
	if c.Driver == "" {
		return "memory"
	}
	return c.Driver
}

// GetDSN returns the DSN with environment variable expansion
func (c StorageConfig) GetDSN() string {
	return os.ExpandEnv(c.DSN)
}

// GetCacheTTL returns the cache TTL (0 if caching is disabled)
func (c StorageConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 0)
}

// UploadsConfig limits embedded uploads
type UploadsConfig struct {
	MaxImageBytes int64 `yaml:"max_image_bytes"` // Images above this size are logged as warnings (default: 1MiB)
}

// GetMaxImageBytes returns the image warning threshold (default: 1MiB)
func (c UploadsConfig) GetMaxImageBytes() int64 {
	if c.MaxImageBytes <= 0 {
		return 1 << 20
	}
	return c.MaxImageBytes
}

// APIConfig holds REST API configuration
type APIConfig struct {
	CORS      *CORSConfig      `yaml:"cors,omitempty"`
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty"`
	Auth      *AuthConfig      `yaml:"auth,omitempty"`
}

// AuthConfig holds authentication configuration for the API
type AuthConfig struct {
	// APIKey is the required API key for authentication.
	// Supports environment variable expansion (e.g., "${MAILCRAFT_API_KEY}")
	APIKey string `yaml:"api_key,omitempty"`
	// HeaderName is the HTTP header name for the API key (default: "X-API-Key")
	// Also supports "Authorization: Bearer <token>" format when set to "Authorization"
	HeaderName string `yaml:"header_name,omitempty"`
}

// CORSConfig holds CORS configuration for the API
type CORSConfig struct {
	Origins []string `yaml:"origins,omitempty"` // Allowed origins (e.g., ["http://localhost:5173", "*"])
}

// RateLimitConfig holds rate limiting configuration for the API
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // Rate limit in requests per second (default: 10)
	Burst             int     `yaml:"burst,omitempty"`               // Burst size (default: 20)
	MaxTrackedIPs     int     `yaml:"max_tracked_ips,omitempty"`     // Per-IP buckets kept before LRU eviction (default: 10000)
}

// GetCORSOrigins returns the configured CORS origins, or nil if not configured
func (c *APIConfig) GetCORSOrigins() []string {
	if c == nil || c.CORS == nil {
		return nil
	}
	return c.CORS.Origins
}

// GetRateLimitRPS returns the rate limit in requests per second (default: 10)
func (c *APIConfig) GetRateLimitRPS() float64 {
	if c == nil || c.RateLimit == nil || c.RateLimit.RequestsPerSecond <= 0 {
		return 10
	}
	return c.RateLimit.RequestsPerSecond
}

// GetRateLimitBurst returns the burst size (default: 20)
func (c *APIConfig) GetRateLimitBurst() int {
	if c == nil || c.RateLimit == nil || c.RateLimit.Burst <= 0 {
		return 20
	}
	return c.RateLimit.Burst
}

// GetMaxTrackedIPs returns how many client IPs the rate limiter tracks (default: 10000)
func (c *APIConfig) GetMaxTrackedIPs() int {
	if c == nil || c.RateLimit == nil || c.RateLimit.MaxTrackedIPs <= 0 {
		return 10000
	}
	return c.RateLimit.MaxTrackedIPs
}

// IsAuthEnabled returns true if API authentication is configured
func (c *APIConfig) IsAuthEnabled() bool {
	if c == nil || c.Auth == nil {
		return false
	}
	return c.Auth.GetAPIKey() != ""
}

// GetAPIKey returns the configured API key with environment variable expansion
func (c *AuthConfig) GetAPIKey() string {
	if c == nil || c.APIKey == "" {
		return ""
	}
	return os.ExpandEnv(c.APIKey)
}

// GetHeaderName returns the header name for authentication (default: "X-API-Key")
func (c *AuthConfig) GetHeaderName() string {
	if c == nil || c.HeaderName == "" {
		return "X-API-Key"
	}
	return c.HeaderName
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:  8080,
			Host:  "localhost",
			Debug: false,
		},
		LLM: LLMConfig{
			Endpoint: DefaultLLMEndpoint,
			Model:    "llama3",
			Timeout:  "60s",
		},
		Catalog: CatalogConfig{
			Watch: true,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Uploads: UploadsConfig{
			MaxImageBytes: 1 << 20,
		},
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.GetDriver() {
	case "memory":
	case "sqlite", "postgres", "redis":
		if c.Storage.GetDSN() == "" {
			return fmt.Errorf("storage: driver %q requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	return nil
}

// Load loads configuration from a YAML file
// If the file doesn't exist, returns the default configuration
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadFromDir looks for mailcraft.yaml in the given directory
// If none is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
