package config

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Nats           NatsConfig           `mapstructure:"nats"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Email          EmailConfig          `mapstructure:"email"`
	SMS            SMSConfig            `mapstructure:"sms"`
	Reminder       ReminderConfig       `mapstructure:"reminder"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

type NatsConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type DatabaseConfig struct {
	Host       string                  `mapstructure:"host"`
	Port       int                     `mapstructure:"port"`
	User       string                  `mapstructure:"user"`
	Password   string                  `mapstructure:"password"`
	DBName     string                  `mapstructure:"dbname"`
	SSLMode    string                  `mapstructure:"sslmode"`
	Pool       DatabasePoolConfig      `mapstructure:"pool"`
	Migrations DatabaseMigrationConfig `mapstructure:"migrations"`
	Logging    DatabaseLoggingConfig   `mapstructure:"logging"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type DatabaseMigrationConfig struct {
	AutoMigrate bool `mapstructure:"auto_migrate"`
	SafeMode    bool `mapstructure:"safe_mode"`
}

type DatabaseLoggingConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	SlowQueryThresholdMs int  `mapstructure:"slow_query_threshold_ms"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	TimeoutSeconds int        `mapstructure:"timeout_seconds"`
	Environment    string     `mapstructure:"environment"`
	Domain         string     `mapstructure:"domain"`
	Databases      []string   `mapstructure:"databases"`
	CORS           CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Paseto            PasetoConfig `mapstructure:"paseto"`
	SessionTTLMinutes int          `mapstructure:"session_ttl_minutes"`
}

type PasetoConfig struct {
	Mode             string `mapstructure:"mode"`
	LocalKeyHex      string `mapstructure:"local_key_hex"`
	SecretKeyHex     string `mapstructure:"secret_key_hex"`
	PublicKeyHex     string `mapstructure:"public_key_hex"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SMSConfig struct {
	Enabled       bool        `mapstructure:"enabled"`
	DefaultRegion string      `mapstructure:"default_region"`
	SMSIR         SMSIRConfig `mapstructure:"smsir"`
}

type SMSIRConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SecretKey  string `mapstructure:"secret_key"`
	TemplateID string `mapstructure:"template_id"`
}

// ReminderConfig controls the periodic reminder dispatcher. Each window class
// fires at most once per appointment, gated by a persisted flag.
type ReminderConfig struct {
	Enabled         bool                   `mapstructure:"enabled"`
	IntervalMinutes int                    `mapstructure:"interval_minutes"`
	RunOnStart      bool                   `mapstructure:"run_on_start"`
	LockTTLSeconds  int                    `mapstructure:"lock_ttl_seconds"`
	Windows         []ReminderWindowConfig `mapstructure:"windows"`
}

type ReminderWindowConfig struct {
	Class     string `mapstructure:"class"`      // e.g. "24h", "1h"
	FromHours int    `mapstructure:"from_hours"` // lower bound of hours-until, inclusive
	ToHours   int    `mapstructure:"to_hours"`   // upper bound of hours-until, inclusive
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	Username string `mapstructure:"username"` // for Grafana Cloud basic auth
	Password string `mapstructure:"password"`
}

func (c *Config) Validate() error {
	return nil
}
