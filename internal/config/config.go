// Package config loads service configuration from defaults, an optional
// YAML file and the environment.
package config

import "time"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverBadger   = "badger"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Store   StoreConfig   `koanf:"store"`
	Session SessionConfig `koanf:"session"`
	Auth    AuthConfig    `koanf:"auth"`
	CORS    CORSConfig    `koanf:"cors"`
	SSO     SSOConfig     `koanf:"sso"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	WebDir            string        `koanf:"web_dir"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver        string `koanf:"driver"`
	PostgresURL   string `koanf:"postgres_url"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
	// BadgerPath empty runs badger in memory.
	BadgerPath string `koanf:"badger_path"`
}

// SessionConfig controls session cookies and cleanup.
type SessionConfig struct {
	Secret        string        `koanf:"secret"`
	TTL           time.Duration `koanf:"ttl"`
	CookieName    string        `koanf:"cookie_name"`
	CookieSecure  bool          `koanf:"cookie_secure"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AuthConfig controls password hashing and auth endpoint rate limits.
type AuthConfig struct {
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitEnabled  bool          `koanf:"rate_limit_enabled"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// CORSConfig lists allowed cross-origin callers. Empty disables CORS.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// SSOConfig configures optional OpenID Connect login.
type SSOConfig struct {
	Enabled      bool   `koanf:"enabled"`
	IssuerURL    string `koanf:"issuer_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":3000",
			WebDir:            "public",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Store: StoreConfig{
			Driver:        DriverMemory,
			MongoDatabase: "feedback",
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			CookieName:    "feedback_session",
			CookieSecure:  false,
			SweepInterval: 10 * time.Minute,
		},
		Auth: AuthConfig{
			BcryptCost:        10,
			RateLimitEnabled:  false,
			RateLimitRequests: 20,
			RateLimitWindow:   time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
