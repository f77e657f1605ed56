package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverLocal  = "local"
	DriverHosted = "hosted"
)

// Local slot backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Store     StoreConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Realtime  RealtimeConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// StoreConfig selects and configures the persistence adapter
type StoreConfig struct {
	Driver string // local or hosted
	Local  LocalStoreConfig
	Hosted HostedStoreConfig
}

// LocalStoreConfig holds settings of the single-slot local store
type LocalStoreConfig struct {
	Backend      string // file or redis
	DataDir      string
	Slot         string
	ActivitySlot string
}

// HostedStoreConfig holds hosted relational backend settings
type HostedStoreConfig struct {
	URL             string // postgres://host:port/db?sslmode=...
	APIKey          string // used as the role password
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig holds dashboard stats cache settings
type CacheConfig struct {
	StatsTTL time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SchedulerConfig holds the roster refresh schedule
type SchedulerConfig struct {
	Enabled     bool
	RefreshCron string
	JobTimeout  time.Duration
}

// StorageConfig holds S3-compatible object storage settings for recording assets
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	DBSlowQueryThresh time.Duration
}

// RealtimeConfig holds websocket hub settings
type RealtimeConfig struct {
	Enabled        bool
	Heartbeat      time.Duration
	MaxClients     int
	AllowedOrigins []string
}

// Load loads configuration from .env, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with ONBOARD_ prefix (e.g., ONBOARD_STORE_HOSTED_URL)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/onboardd")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("ONBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Store: StoreConfig{
			Driver: v.GetString("store.driver"),
			Local: LocalStoreConfig{
				Backend:      v.GetString("store.local.backend"),
				DataDir:      v.GetString("store.local.data_dir"),
				Slot:         v.GetString("store.local.slot"),
				ActivitySlot: v.GetString("store.local.activity_slot"),
			},
			Hosted: HostedStoreConfig{
				URL:             v.GetString("store.hosted.url"),
				APIKey:          v.GetString("store.hosted.api_key"),
				MaxOpenConns:    v.GetInt("store.hosted.max_open_conns"),
				MaxIdleConns:    v.GetInt("store.hosted.max_idle_conns"),
				ConnMaxLifetime: v.GetInt("store.hosted.conn_max_lifetime"),
				ConnMaxIdleTime: v.GetInt("store.hosted.conn_max_idle_time"),
			},
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			StatsTTL: v.GetDuration("cache.stats_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:     v.GetBool("scheduler.enabled"),
			RefreshCron: v.GetString("scheduler.refresh_cron"),
			JobTimeout:  v.GetDuration("scheduler.job_timeout"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Realtime: RealtimeConfig{
			Enabled:        v.GetBool("realtime.enabled"),
			Heartbeat:      v.GetDuration("realtime.heartbeat"),
			MaxClients:     v.GetInt("realtime.max_clients"),
			AllowedOrigins: v.GetStringSlice("realtime.allowed_origins"),
		},
	}

	// Realtime is on unless explicitly disabled
	if !v.IsSet("realtime.enabled") {
		cfg.Realtime.Enabled = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "onboardd"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverLocal
	}
	if cfg.Store.Local.Backend == "" {
		cfg.Store.Local.Backend = BackendFile
	}
	if cfg.Store.Local.DataDir == "" {
		cfg.Store.Local.DataDir = "./data"
	}
	if cfg.Store.Local.Slot == "" {
		cfg.Store.Local.Slot = "employee_portal_clients"
	}
	if cfg.Store.Local.ActivitySlot == "" {
		cfg.Store.Local.ActivitySlot = "employee_portal_activity"
	}
	if cfg.Store.Hosted.MaxOpenConns == 0 {
		cfg.Store.Hosted.MaxOpenConns = 10
	}
	if cfg.Store.Hosted.MaxIdleConns == 0 {
		cfg.Store.Hosted.MaxIdleConns = 2
	}
	if cfg.Store.Hosted.ConnMaxLifetime == 0 {
		cfg.Store.Hosted.ConnMaxLifetime = 60
	}
	if cfg.Store.Hosted.ConnMaxIdleTime == 0 {
		cfg.Store.Hosted.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.StatsTTL == 0 {
		cfg.Cache.StatsTTL = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty origin list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.RefreshCron == "" {
		cfg.Scheduler.RefreshCron = "@every 5m"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Second
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Realtime.Heartbeat == 0 {
		cfg.Realtime.Heartbeat = 30 * time.Second
	}
	if cfg.Realtime.MaxClients == 0 {
		cfg.Realtime.MaxClients = 256
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverLocal:
		switch c.Store.Local.Backend {
		case BackendFile:
		case BackendRedis:
			if !c.Redis.Enabled {
				return fmt.Errorf("store.local.backend=redis requires redis.enabled=true")
			}
		default:
			return fmt.Errorf("store.local.backend must be %q or %q, got %q", BackendFile, BackendRedis, c.Store.Local.Backend)
		}
	case DriverHosted:
		if c.Store.Hosted.URL == "" {
			return fmt.Errorf("store.hosted.url is required when store.driver=hosted (set ONBOARD_STORE_HOSTED_URL)")
		}
		if c.Store.Hosted.APIKey == "" {
			return fmt.Errorf("store.hosted.api_key is required when store.driver=hosted (set ONBOARD_STORE_HOSTED_API_KEY)")
		}
		if _, err := c.Store.Hosted.DSN(); err != nil {
			return err
		}
		if c.Store.Hosted.MaxOpenConns <= 0 {
			return fmt.Errorf("store.hosted.max_open_conns must be positive")
		}
		if c.Store.Hosted.MaxIdleConns > c.Store.Hosted.MaxOpenConns {
			return fmt.Errorf("store.hosted.max_idle_conns (%d) cannot exceed store.hosted.max_open_conns (%d)",
				c.Store.Hosted.MaxIdleConns, c.Store.Hosted.MaxOpenConns)
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverLocal, DriverHosted, c.Store.Driver)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage.enabled=true")
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the hosted connection string with the API key set as the
// role password. A URL without a user connects as postgres.
func (h *HostedStoreConfig) DSN() (string, error) {
	u, err := url.Parse(h.URL)
	if err != nil {
		return "", fmt.Errorf("store.hosted.url is not a valid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("store.hosted.url must use the postgres scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("store.hosted.url has no host")
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, h.APIKey)
	if u.Query().Get("sslmode") == "" {
		q := u.Query()
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
