package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is read when no path is given
const ConfigPath = "config.yaml"

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                  string `yaml:"port"`
	LogLevel              string `yaml:"logLevel"`
	StoreDriver           string `yaml:"storeDriver"`
	DatabaseDSN           string `yaml:"databaseDSN"`
	JWTSecret             string `yaml:"jwtSecret"`
	JWTIssuer             string `yaml:"jwtIssuer"`
	JWTLeeway             string `yaml:"jwtLeeway"`
	RedisAddr             string `yaml:"redisAddr"`
	RedisPassword         string `yaml:"redisPassword"`
	NatsURL               string `yaml:"natsURL"`
	NatsSubjectPrefix     string `yaml:"natsSubjectPrefix"`
	BidRateLimitPerMinute int    `yaml:"bidRateLimitPerMinute"`
	BidMaxRetries         int    `yaml:"bidMaxRetries"`
	LockTTL               string `yaml:"lockTTL"`
	SeedAuctioneerRating  bool   `yaml:"seedAuctioneerRating"`
	MinOpenWindow         string `yaml:"minOpenWindow"`
	ShutdownTimeout       string `yaml:"shutdownTimeout"`
}

// Defaults returns the configuration used for keys absent from the file
func Defaults() FileConfig {
	return FileConfig{
		Port:              "8080",
		LogLevel:          "info",
		StoreDriver:       StoreMemory,
		JWTIssuer:         "auction-marketplace",
		NatsSubjectPrefix: "auctions",
		BidMaxRetries:     3,
		LockTTL:           "5s",
		MinOpenWindow:     "360h",
		ShutdownTimeout:   "10s",
	}
}

// Load reads config from path (defaults to config.yaml). A missing file keeps the defaults;
// environment variables override both.
func Load(path string) (FileConfig, error) {
	cfg := Defaults()
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("JWT_LEEWAY"); v != "" {
		cfg.JWTLeeway = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NatsURL = v
	}
	if v := os.Getenv("BID_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.BidRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("BID_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.BidMaxRetries = n
		}
	}
	if v := os.Getenv("LOCK_TTL"); v != "" {
		cfg.LockTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SEED_AUCTIONEER_RATING"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.SeedAuctioneerRating = b
		}
	}
	if v := os.Getenv("MIN_OPEN_WINDOW"); v != "" {
		cfg.MinOpenWindow = strings.TrimSpace(v)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return errors.New("config: jwtSecret is required (set in config.yaml or JWT_SECRET)")
	}
	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres, StoreMySQL:
		if strings.TrimSpace(cfg.DatabaseDSN) == "" {
			return fmt.Errorf("config: databaseDSN is required for storeDriver %s", cfg.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unsupported storeDriver %q", cfg.StoreDriver)
	}
	if cfg.BidRateLimitPerMinute < 0 {
		return errors.New("config: bidRateLimitPerMinute must be >= 0")
	}
	if cfg.BidRateLimitPerMinute > 0 && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for distributed rate limiting")
	}
	if cfg.BidMaxRetries < 0 {
		return errors.New("config: bidMaxRetries must be >= 0")
	}
	for name, value := range map[string]string{
		"lockTTL":         cfg.LockTTL,
		"minOpenWindow":   cfg.MinOpenWindow,
		"shutdownTimeout": cfg.ShutdownTimeout,
		"jwtLeeway":       cfg.JWTLeeway,
	} {
		if _, err := parseDuration(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c FileConfig) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	return ":" + port
}

// LockTTLDuration is how long a Redis bid lock lives without release
func (c FileConfig) LockTTLDuration() time.Duration {
	d, _ := parseDuration("lockTTL", c.LockTTL)
	return d
}

// MinOpenWindowDuration is the shortest time an auction must stay open
func (c FileConfig) MinOpenWindowDuration() time.Duration {
	d, _ := parseDuration("minOpenWindow", c.MinOpenWindow)
	return d
}

// ShutdownTimeoutDuration bounds graceful shutdown
func (c FileConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := parseDuration("shutdownTimeout", c.ShutdownTimeout)
	return d
}

// JWTLeewayDuration is the clock skew tolerated on token timestamps
func (c FileConfig) JWTLeewayDuration() time.Duration {
	d, _ := parseDuration("jwtLeeway", c.JWTLeeway)
	return d
}

// parseDuration accepts an empty value as zero
func parseDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s duration: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", name)
	}
	return d, nil
}
