package config

import (
	"fmt"
	"strconv"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

const (
	BrokerMemory = "memory"
	BrokerRedis  = "redis"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("auth token TTLs must be > 0")
	}
	if c.Auth.AccessTokenTTL >= c.Auth.RefreshTokenTTL {
		return fmt.Errorf("auth.access_token_ttl (%s) must be shorter than auth.refresh_token_ttl (%s)",
			c.Auth.AccessTokenTTL, c.Auth.RefreshTokenTTL)
	}
	if c.Auth.PasswordHashCost < bcrypt.MinCost || c.Auth.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.password_hash_cost must be in [%d, %d] (got %d)",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.PasswordHashCost)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}

	switch c.Realtime.Broker {
	case BrokerMemory:
	case BrokerRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when realtime.broker is %q", BrokerRedis)
		}
	default:
		return fmt.Errorf("realtime.broker must be %q or %q (got %q)", BrokerMemory, BrokerRedis, c.Realtime.Broker)
	}
	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("realtime.send_buffer must be > 0 (got %d)", c.Realtime.SendBuffer)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit rps and burst must be > 0")
	}

	if c.Cleanup.Enabled {
		if _, err := cron.ParseStandard(c.Cleanup.Schedule); err != nil {
			return fmt.Errorf("cleanup.schedule: %w", err)
		}
	}

	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
