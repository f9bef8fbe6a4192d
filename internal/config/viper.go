// Package config provides Viper lookups shared by the CLI.
//
// Keys are dotted (trakt.client_id). Every key can also be set through the
// environment by upper-casing it and replacing dots with underscores
// (TRAKT_CLIENT_ID).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/watchsync/internal/auth"
)

// EnvName returns the environment variable bound to a dotted key.
func EnvName(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// GetString is a helper to get string values from Viper.
// It falls back to the OS environment when Viper has no value.
func GetString(key string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(EnvName(key))
}

// GetStringDefault returns the value of key, or def when unset.
func GetStringDefault(key, def string) string {
	if v := GetString(key); v != "" {
		return v
	}
	return def
}

// GetDuration returns the duration at key, or def when unset or invalid.
func GetDuration(key string, def time.Duration) time.Duration {
	if !viper.IsSet(key) {
		return def
	}
	d := viper.GetDuration(key)
	if d < 0 {
		return def
	}
	return d
}

// GetFloat returns the float at key, or def when unset or non-positive.
func GetFloat(key string, def float64) float64 {
	if v := viper.GetFloat64(key); v > 0 {
		return v
	}
	return def
}

// GetInt returns the integer at key, or def when unset or non-positive.
func GetInt(key string, def int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return def
}

// Credentials reads the OAuth client settings under prefix
// (prefix.client_id, prefix.client_secret, prefix.token_url).
func Credentials(prefix string) auth.Credentials {
	return auth.Credentials{
		ClientID:     GetString(prefix + ".client_id"),
		ClientSecret: GetString(prefix + ".client_secret"),
		TokenURL:     GetString(prefix + ".token_url"),
	}
}
