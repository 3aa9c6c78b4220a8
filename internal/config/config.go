package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all client configuration loaded from environment variables.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	CartDB   CartDBConfig
	Session  SessionConfig
	Cache    CacheConfig
	Poller   PollerConfig
	Callback CallbackConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"bundlehub-client"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// BackendConfig holds the storefront backend settings.
type BackendConfig struct {
	BaseURL string        `envconfig:"BACKEND_URL" default:"https://bundlehub-backend.onrender.com"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
}

// CartDBConfig holds local cart partition storage settings.
// sqlite is the default single-device store; mysql supports shared
// agent terminals; memory is for tests.
type CartDBConfig struct {
	Type string `envconfig:"CART_DB_TYPE" default:"sqlite"` // sqlite, mysql, or memory
	Path string `envconfig:"CART_DB_PATH" default:"./data/cart.db"`

	// MySQL settings
	Host     string `envconfig:"CART_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"CART_DB_PORT" default:"3306"`
	Name     string `envconfig:"CART_DB_NAME" default:"bundlehub"`
	User     string `envconfig:"CART_DB_USER" default:"root"`
	Password string `envconfig:"CART_DB_PASS" default:""`
}

// SessionConfig holds access token mirror settings. When the mirror type
// is "none" the token lives in process memory only.
type SessionConfig struct {
	MirrorType string        `envconfig:"SESSION_MIRROR" default:"none"` // redis or none
	TTL        time.Duration `envconfig:"SESSION_TTL" default:"1h"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"1m"`

	RedisHost     string `envconfig:"CACHE_REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"CACHE_REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"CACHE_REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"CACHE_REDIS_DB" default:"1"`
}

// PollerConfig holds order status poller settings.
type PollerConfig struct {
	Interval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
}

// CallbackConfig holds the payment-return listener settings.
type CallbackConfig struct {
	Host string `envconfig:"CALLBACK_HOST" default:"127.0.0.1"`
	Port int    `envconfig:"CALLBACK_PORT" default:"8765"`
}

// DSN returns the MySQL data source name for the cart partition store.
func (c *CartDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// RedisAddress returns the session mirror Redis address in host:port format.
func (s *SessionConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// RedisAddress returns the cache Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Address returns the callback listener address in host:port format.
func (c *CallbackConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
