package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/internal/config"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store/driver"
	"github.com/agentstation/watchsync/pkg/store/redis"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Catalog services
	Trakt  TraktConfig
	MAL    MALConfig
	IDsMoe IDsMoeConfig

	// Persistent store
	Store driver.Config

	// Sync behaviour
	OperationDelay time.Duration
	Scores         bool
	MappingTTL     time.Duration
	Threshold      float64
	AltThreshold   float64

	// Logging configuration
	LogLevel    string // --log-level flag
	EnvLogLevel string // LOG_LEVEL environment variable
	LogFormat   string
	LogOutput   string
}

// TraktConfig holds Trakt API settings.
type TraktConfig struct {
	auth.Credentials
	BaseURL  string
	Username string
}

// MALConfig holds MyAnimeList API settings.
type MALConfig struct {
	auth.Credentials
	BaseURL string
}

// IDsMoeConfig holds ids.moe settings. Cross-referencing is off without an API key.
type IDsMoeConfig struct {
	APIKey  string
	BaseURL string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.watchsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	return LoadConfigFile(viper.GetString("config"))
}

// LoadConfigFile loads configuration using the given config file. An empty
// path searches $HOME and the working directory for .watchsync.yaml, and a
// missing file there is not an error.
func LoadConfigFile(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".watchsync")
		_ = viper.ReadInConfig()
	}

	cfg := &Config{
		Verbose:    viper.GetBool("verbose"),
		Quiet:      viper.GetBool("quiet"),
		NoColor:    viper.GetBool("no-color"),
		Format:     viper.GetString("format"),
		ConfigFile: viper.ConfigFileUsed(),

		Trakt: TraktConfig{
			Credentials: config.Credentials("trakt"),
			BaseURL:     config.GetString("trakt.base_url"),
			Username:    config.GetString("trakt.username"),
		},
		MAL: MALConfig{
			Credentials: config.Credentials("mal"),
			BaseURL:     config.GetString("mal.base_url"),
		},
		IDsMoe: IDsMoeConfig{
			APIKey:  config.GetString("idsmoe.api_key"),
			BaseURL: config.GetString("idsmoe.base_url"),
		},

		Store: driver.Config{
			Driver: config.GetStringDefault("store.driver", driver.SQLite),
			Path:   config.GetString("store.path"),
			Redis: redis.Config{
				Host:     config.GetString("store.redis.host"),
				Port:     config.GetInt("store.redis.port", 0),
				Password: config.GetString("store.redis.password"),
				DB:       config.GetInt("store.redis.db", 0),
				Prefix:   config.GetString("store.redis.prefix"),
			},
		},

		OperationDelay: config.GetDuration("sync.delay", constants.OperationDelay),
		Scores:         viper.GetBool("sync.scores"),
		MappingTTL:     config.GetDuration("resolver.mapping_ttl", constants.MappingTTL),
		Threshold:      config.GetFloat("resolver.threshold", constants.MatchThreshold),
		AltThreshold:   config.GetFloat("resolver.alt_threshold", constants.AlternativeMatchThreshold),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return cfg, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded last; godotenv never overrides variables already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
