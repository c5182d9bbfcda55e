package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	Address  string         `yaml:"address"`
	TLS      TLSConfig      `yaml:"tls"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Jobs     JobsConfig     `yaml:"jobs"`
	CORS     CORSConfig     `yaml:"cors"`
}

// TLSConfig represents TLS settings
type TLSConfig struct {
	Enabled     bool   `yaml:"enabled"`
	CertFile    string `yaml:"cert_file"`
	KeyFile     string `yaml:"key_file"`
	BehindProxy bool   `yaml:"behind_proxy"`
}

// DatabaseConfig represents database settings
type DatabaseConfig struct {
	Type              string `yaml:"type"` // sqlite | mysql | postgres
	Path              string `yaml:"path"` // file path for sqlite, DSN otherwise
	MaxConnections    int    `yaml:"max_connections"`
	ConnectionTimeout int    `yaml:"connection_timeout"`
}

// AuthConfig represents the JWT session subsystem settings
type AuthConfig struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	Audience          string `yaml:"audience"`
	AccessTTLMinutes  int    `yaml:"access_ttl_minutes"`
	RefreshTTLHours   int    `yaml:"refresh_ttl_hours"`
	RotateRefresh     bool   `yaml:"rotate_refresh"`
	ExpiringSoonMins  int    `yaml:"expiring_soon_minutes"`
	MinPasswordLength int    `yaml:"min_password_length"`

	// SessionStore selects where live refresh sessions are tracked:
	// "memory" (default) or "redis"
	SessionStore string `yaml:"session_store"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisDB      int    `yaml:"redis_db"`
}

// LoggingConfig represents logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// JobsConfig represents background job settings
type JobsConfig struct {
	ExpiryScanCron  string `yaml:"expiry_scan_cron"`
	WarnWithinDays  int    `yaml:"warn_within_days"`
	ExpiryScanOnOff bool   `yaml:"expiry_scan_enabled"`
}

// CORSConfig represents CORS settings for the SPA origin
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Address: ":8080",
		TLS: TLSConfig{
			Enabled: false,
		},
		Database: DatabaseConfig{
			Type:              "sqlite",
			Path:              "./pantrypal.db",
			MaxConnections:    25,
			ConnectionTimeout: 30,
		},
		Auth: AuthConfig{
			Issuer:            "pantrypal",
			Audience:          "pantrypal-web",
			AccessTTLMinutes:  15,
			RefreshTTLHours:   24 * 7,
			RotateRefresh:     true,
			ExpiringSoonMins:  5,
			MinPasswordLength: 8,
			SessionStore:      "memory",
			RedisAddr:         "localhost:6379",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Jobs: JobsConfig{
			ExpiryScanCron:  "0 7 * * *",
			WarnWithinDays:  3,
			ExpiryScanOnOff: true,
		},
		CORS: CORSConfig{
			AllowedOrigin: "*",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*ServerConfig, error) {
	config := DefaultConfig()

	// Load from file if provided
	if configPath != "" {
		if err := loadFromFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	applyEnvOverrides(config)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string, config *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return err
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(config *ServerConfig) {
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		config.Address = addr
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.Secret = secret
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		config.Auth.RedisAddr = redisAddr
		config.Auth.SessionStore = "redis"
	}

	if tlsEnabled := os.Getenv("TLS_ENABLED"); tlsEnabled != "" {
		config.TLS.Enabled = tlsEnabled == "true"
	}

	if certFile := os.Getenv("TLS_CERT_FILE"); certFile != "" {
		config.TLS.CertFile = certFile
	}

	if keyFile := os.Getenv("TLS_KEY_FILE"); keyFile != "" {
		config.TLS.KeyFile = keyFile
	}

	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		config.CORS.AllowedOrigin = origin
	}

	if maxConns := os.Getenv("DB_MAX_CONNECTIONS"); maxConns != "" {
		if val, err := strconv.Atoi(maxConns); err == nil {
			config.Database.MaxConnections = val
		}
	}
}

// Validate validates the configuration
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret cannot be empty (set auth.secret or JWT_SECRET)")
	}

	if len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 bytes")
	}

	if c.Auth.AccessTTLMinutes < 1 {
		return fmt.Errorf("access token TTL must be at least 1 minute")
	}

	if c.Auth.RefreshTTLHours < 1 {
		return fmt.Errorf("refresh token TTL must be at least 1 hour")
	}

	switch c.Auth.SessionStore {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store: %s", c.Auth.SessionStore)
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert/key files not provided")
		}

		if _, err := os.Stat(c.TLS.CertFile); err != nil {
			return fmt.Errorf("certificate file not found: %w", err)
		}

		if _, err := os.Stat(c.TLS.KeyFile); err != nil {
			return fmt.Errorf("key file not found: %w", err)
		}
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	valid := []string{"debug", "info", "warn", "error"}
	level = strings.ToLower(level)
	for _, v := range valid {
		if level == v {
			return true
		}
	}
	return false
}

// GetDatabasePath returns the absolute database path
func (c *ServerConfig) GetDatabasePath() string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(os.Getenv("PWD"), c.Database.Path)
}

// String returns a string representation of the configuration (for logging).
// The auth secret is never included.
func (c *ServerConfig) String() string {
	return fmt.Sprintf("Config{Address: %s, DB: %s/%s, TLS: %v, LogLevel: %s, SessionStore: %s}",
		c.Address, c.Database.Type, c.Database.Path, c.TLS.Enabled, c.Logging.Level, c.Auth.SessionStore)
}
