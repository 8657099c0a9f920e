package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port     string
	RedisURL string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	OtpTTL time.Duration

	// RateLimits maps policy names from the route table to attempt counts.
	RateLimits     map[string]int
	CooldownWindow time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	HasherWorkers int
	BcryptCost    int
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() Config {
	return Config{
		Port:     envStr("PORT", "9000"),
		RedisURL: envStr("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret:  envStr("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:  time.Duration(envInt("ACCESS_TTL_MS", 15*60*1000)) * time.Millisecond,
		RefreshTTL: time.Duration(envInt("REFRESH_TTL_MS", 120*60*60*1000)) * time.Millisecond,

		OtpTTL: time.Duration(envInt("OTP_TTL_SECONDS", 600)) * time.Second,

		RateLimits: map[string]int{
			"login-attempts":   envInt("RATE_LIMIT_LOGIN_ATTEMPTS", 3),
			"otp-attempts":     envInt("RATE_LIMIT_OTP_ATTEMPTS", 3),
			"refresh-attempts": envInt("RATE_LIMIT_REFRESH_ATTEMPTS", 5),
		},
		CooldownWindow: time.Duration(envInt("RATE_LIMIT_COOLDOWN_MIN", 15)) * time.Minute,

		SMTPHost:     envStr("SMTP_HOST", ""),
		SMTPPort:     envStr("SMTP_PORT", "587"),
		SMTPUsername: envStr("SMTP_USERNAME", ""),
		SMTPPassword: envStr("SMTP_PASSWORD", ""),
		SMTPFrom:     envStr("SMTP_FROM", "no-reply@edushare.local"),

		HasherWorkers: envInt("HASHER_WORKERS", 4),
		BcryptCost:    envInt("BCRYPT_COST", 0),
	}
}

func envStr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
