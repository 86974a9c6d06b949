package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// JWTSecret signs admin tokens. The default is for local development only.
	JWTSecret string        `env:"JWT_SECRET" envDefault:"restaurant_admin_dev_secret_change_me"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	PrimaryDSN      string `env:"PRIMARY_DSN" envDefault:"restaurant_admin.db"`
	PrimaryEnabled  bool   `env:"PRIMARY_ENABLED" envDefault:"true"`
	FallbackEnabled bool   `env:"FALLBACK_ENABLED" envDefault:"true"`

	MappingFile       string `env:"MAPPING_FILE"`
	ExternalDefaultDB string `env:"EXTERNAL_DEFAULT_DB" envDefault:"maharajafeast"`

	Pool    PoolConfig    `envPrefix:"POOL_"`
	Timeout TimeoutConfig `envPrefix:"TIMEOUT_"`
	Log     LogConfig     `envPrefix:"LOG_"`
}

// PoolConfig sizes the external database connection pool.
type PoolConfig struct {
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2s"`
	DialTimeout    time.Duration `env:"DIAL_TIMEOUT" envDefault:"3s"`
	PingTimeout    time.Duration `env:"PING_TIMEOUT" envDefault:"1s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
	MaxSize        int           `env:"MAX_SIZE" envDefault:"50"`
	DriverMaxPool  uint64        `env:"DRIVER_MAX_POOL" envDefault:"3"`
	DriverMinPool  uint64        `env:"DRIVER_MIN_POOL" envDefault:"1"`
}

// TimeoutConfig bounds each tier attempt, per kind of operation.
type TimeoutConfig struct {
	RestaurantRead    time.Duration `env:"RESTAURANT_READ" envDefault:"1s"`
	RestaurantWrite   time.Duration `env:"RESTAURANT_WRITE" envDefault:"2s"`
	CategoryExtract   time.Duration `env:"CATEGORY_EXTRACT" envDefault:"3s"`
	ExternalItemRead  time.Duration `env:"EXTERNAL_ITEM_READ" envDefault:"3s"`
	ExternalItemWrite time.Duration `env:"EXTERNAL_ITEM_WRITE" envDefault:"5s"`
	PrimaryItem       time.Duration `env:"PRIMARY_ITEM" envDefault:"2s"`
	CategoryRefresh   time.Duration `env:"CATEGORY_REFRESH" envDefault:"5s"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"30"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

// Load reads .env files (if present) into the environment, then parses Config.
// Variables already set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
		log.Infof("📄 Loaded environment from %s", f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if !cfg.PrimaryEnabled && !cfg.FallbackEnabled {
		log.Warn("⚠️ Primary and fallback tiers are both disabled; only external databases will answer")
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
