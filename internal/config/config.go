package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Redis     RedisConfig     `yaml:"redis"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"         env:"AUTH_JWT_SECRET"         env-required:"true"`
	JWTIssuer        string        `yaml:"jwt_issuer"         env:"AUTH_JWT_ISSUER"         env-default:"couplefine"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"   env:"AUTH_ACCESS_TOKEN_TTL"   env-default:"15m"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"  env:"AUTH_REFRESH_TOKEN_TTL"  env-default:"720h"`
	PasswordHashCost int           `yaml:"password_hash_cost" env:"AUTH_PASSWORD_HASH_COST" env-default:"12"`
	ResetTokenTTL    time.Duration `yaml:"reset_token_ttl"    env:"AUTH_RESET_TOKEN_TTL"    env-default:"1h"`
	ResetURLBase     string        `yaml:"reset_url_base"     env:"AUTH_RESET_URL_BASE"     env-default:"http://localhost:5173/reset-password"`
}

// LogConfig holds logging settings. When File is set, logs are also written
// to a size-rotated file.
type LogConfig struct {
	Level      string `yaml:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Format     string `yaml:"format"       env:"LOG_FORMAT"       env-default:"json"`
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"50"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"14"`
}

// RateLimitConfig holds per-IP limits for the auth endpoints.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RPS     float64 `yaml:"rps"     env:"RATE_LIMIT_RPS"     env-default:"1"`
	Burst   int     `yaml:"burst"   env:"RATE_LIMIT_BURST"   env-default:"10"`
}

// RealtimeConfig holds websocket change-feed settings.
type RealtimeConfig struct {
	Broker           string        `yaml:"broker"            env:"REALTIME_BROKER"            env-default:"memory"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout" env:"REALTIME_HEARTBEAT_TIMEOUT" env-default:"75s"`
	WriteTimeout     time.Duration `yaml:"write_timeout"     env:"REALTIME_WRITE_TIMEOUT"     env-default:"10s"`
	SendBuffer       int           `yaml:"send_buffer"       env:"REALTIME_SEND_BUFFER"       env-default:"64"`
}

// RedisConfig is used when Realtime.Broker is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
	Channel  string `yaml:"channel"  env:"REDIS_CHANNEL"  env-default:"couplefine:changes"`
}

// CleanupConfig schedules expired-token cleanup.
type CleanupConfig struct {
	Enabled  bool   `yaml:"enabled"  env:"CLEANUP_ENABLED"  env-default:"true"`
	Schedule string `yaml:"schedule" env:"CLEANUP_SCHEDULE" env-default:"@every 1h"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + itoa(s.Port)
}

// Origins splits AllowedOrigins into a trimmed list.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
