package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageDatabase = "database"
	StorageMemory   = "memory"
	StorageRedis    = "redis"

	minSecretLength = 32
)

// devSessionSecret is only ever used outside production.
const devSessionSecret = "dev-only-session-secret-change-me-0000"

var ErrMissingSecret = errors.New("SESSION_SECRET must be set to at least 32 bytes in production")

type Config struct {
	AppEnv  string
	AppName string
	Port    string

	// Storage selects the user store, OTPStore the one-time code store
	Storage  string
	DBDriver string
	DBURL    string
	OTPStore string
	Redis    RedisConfig

	SessionSecret  []byte
	UsingDevSecret bool
	SessionTTL     time.Duration
	CookieDomain   string

	CaptchaLength int
	CaptchaTTL    time.Duration

	OTPTTL            time.Duration
	OTPResetTTL       time.Duration
	OTPResendCooldown time.Duration
	OTPPurgeGrace     time.Duration
	OTPMaxAttempts    int
	VerifiedWindow    time.Duration

	SMTP SMTPConfig

	CleanupInterval   time.Duration
	MinPasswordLength int
	LogLevel          string

	// Fallbacks lists keys that were left unset or rejected and got their default
	Fallbacks []Fallback
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads the process environment (after .env has been applied) into a Config.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	env := newEnvReader(v)
	cfg := Config{
		AppEnv:       strings.ToLower(env.GetEnvAsStr("APP_ENV", EnvDevelopment)),
		AppName:      env.GetEnvAsStr("APP_NAME", "Clothing Shop"),
		Port:         env.GetEnvAsStr("PORT", "8080"),
		Storage:      strings.ToLower(env.GetEnvAsStr("STORAGE", StorageDatabase)),
		DBDriver:     strings.ToLower(env.GetEnvAsStr("DB_DRIVER", "sqlite")),
		DBURL:        env.GetEnvAsStr("DB_URL", "shop.db"),
		CookieDomain: env.GetEnvAsStr("COOKIE_DOMAIN", ""),
		LogLevel:     strings.ToLower(env.GetEnvAsStr("LOG_LEVEL", "info")),
		Redis: RedisConfig{
			Addr:     env.GetEnvAsStr("REDIS_ADDR", ""),
			Password: env.GetEnvAsStr("REDIS_PASSWORD", ""),
		},
		SMTP: SMTPConfig{
			Host:     env.GetEnvAsStr("SMTP_HOST", ""),
			User:     env.GetEnvAsStr("SMTP_USER", ""),
			Password: env.GetEnvAsStr("SMTP_PASSWORD", ""),
		},
	}
	cfg.OTPStore = strings.ToLower(env.GetEnvAsStr("OTP_STORE", cfg.Storage))
	cfg.SMTP.From = env.GetEnvAsStr("SMTP_FROM", cfg.SMTP.User)

	var err error
	ints := []struct {
		key      string
		dst      *int
		fallback int
		positive bool
	}{
		{"REDIS_DB", &cfg.Redis.DB, 0, false},
		{"SMTP_PORT", &cfg.SMTP.Port, 587, true},
		{"CAPTCHA_LENGTH", &cfg.CaptchaLength, 5, true},
		{"MIN_PASSWORD_LENGTH", &cfg.MinPasswordLength, 8, true},
		{"OTP_MAX_ATTEMPTS", &cfg.OTPMaxAttempts, 5, true},
	}
	for _, item := range ints {
		if *item.dst, err = env.GetEnvAsInt(item.key, item.fallback, item.positive); err != nil {
			return Config{}, err
		}
	}

	cleanupMinutes, err := env.GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 30, true)
	if err != nil {
		return Config{}, err
	}
	cfg.CleanupInterval = time.Duration(cleanupMinutes) * time.Minute

	durations := []struct {
		key      string
		dst      *time.Duration
		fallback time.Duration
	}{
		{"SESSION_TTL", &cfg.SessionTTL, 7 * 24 * time.Hour},
		{"CAPTCHA_TTL", &cfg.CaptchaTTL, 5 * time.Minute},
		{"OTP_TTL", &cfg.OTPTTL, 10 * time.Minute},
		{"OTP_RESET_TTL", &cfg.OTPResetTTL, 15 * time.Minute},
		{"OTP_RESEND_COOLDOWN", &cfg.OTPResendCooldown, 0},
		{"OTP_PURGE_GRACE", &cfg.OTPPurgeGrace, time.Hour},
		{"VERIFIED_WINDOW", &cfg.VerifiedWindow, 10 * time.Minute},
	}
	for _, item := range durations {
		if *item.dst, err = env.GetEnvAsDuration(item.key, item.fallback); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.resolveSecret(env.GetEnvAsStr("SESSION_SECRET", "")); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.Fallbacks = env.fallbacks
	return cfg, nil
}

// resolveSecret fails closed in production. Elsewhere a fixed development
// secret is used and UsingDevSecret is set so startup can warn about it.
func (c *Config) resolveSecret(secret string) error {
	if len(secret) >= minSecretLength {
		c.SessionSecret = []byte(secret)
		return nil
	}
	if c.IsProduction() {
		return ErrMissingSecret
	}
	if secret != "" {
		c.SessionSecret = []byte(secret)
	} else {
		c.SessionSecret = []byte(devSessionSecret)
	}
	c.UsingDevSecret = true
	return nil
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageDatabase, StorageMemory:
	default:
		return fmt.Errorf("STORAGE: unsupported value %q", c.Storage)
	}
	switch c.OTPStore {
	case StorageDatabase, StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("OTP_STORE: unsupported value %q", c.OTPStore)
	}
	if c.OTPStore == StorageDatabase && c.Storage != StorageDatabase {
		return errors.New("OTP_STORE=database requires STORAGE=database")
	}
	if c.OTPStore == StorageRedis && c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required when OTP_STORE=redis")
	}
	if c.Storage == StorageDatabase && c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER: unsupported value %q", c.DBDriver)
	}
	if c.IsProduction() {
		if c.SMTP.Host == "" {
			return errors.New("SMTP_HOST is required in production")
		}
		if c.Storage == StorageMemory {
			return errors.New("STORAGE=memory is not allowed in production")
		}
	}
	if c.OTPResendCooldown < 0 || c.OTPPurgeGrace < 0 {
		return errors.New("OTP durations must not be negative")
	}
	return nil
}
