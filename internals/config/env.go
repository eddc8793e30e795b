package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Fallback records a key that was missing or rejected and replaced by its default.
type Fallback struct {
	Key    string
	Reason string
}

const (
	reasonNotSet      = "not set"
	reasonNotPositive = "not positive"
)

// envReader reads keys through viper and remembers every fallback it hands out,
// so they can be logged once a logger exists.
type envReader struct {
	v         *viper.Viper
	fallbacks []Fallback
}

func newEnvReader(v *viper.Viper) *envReader {
	return &envReader{v: v}
}

func (e *envReader) fallback(key, reason string) {
	e.fallbacks = append(e.fallbacks, Fallback{Key: key, Reason: reason})
}

func (e *envReader) lookup(key string) string {
	return strings.TrimSpace(e.v.GetString(key))
}

// GetEnvAsStr fetches a key or returns the fallback value
func (e *envReader) GetEnvAsStr(key string, fallback string) string {
	if value := e.lookup(key); value != "" {
		return value
	}
	e.fallback(key, reasonNotSet)
	return fallback
}

// GetEnvAsInt fetches a key as integer; with ensurePositive a zero or negative value falls back
func (e *envReader) GetEnvAsInt(key string, fallback int, ensurePositive bool) (int, error) {
	raw := e.lookup(key)
	if raw == "" {
		e.fallback(key, reasonNotSet)
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if ensurePositive && value <= 0 {
		e.fallback(key, reasonNotPositive)
		return fallback, nil
	}
	return value, nil
}

// GetEnvAsDuration accepts Go durations ("15m") and whole days ("7d")
func (e *envReader) GetEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := e.lookup(key)
	if raw == "" {
		e.fallback(key, reasonNotSet)
		return fallback, nil
	}
	d, err := parseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
