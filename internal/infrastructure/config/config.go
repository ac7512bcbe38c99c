package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,       default=8080"`
	Env      string `env:"ENV,        default=development"`
	LogLevel string `env:"LOG_LEVEL,  default=info"`

	JWTSecret  string `env:"JWT_SECRET"`
	JWTTTLMS   int64  `env:"JWT_TTL_MS, default=900000"`
	BcryptCost int    `env:"BCRYPT_COST, default=0"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=digiticket"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Validate fails fast on settings that would otherwise break every request:
// issuing tokens with an empty secret or a non-positive TTL must abort
// startup, not surface per call.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must not be empty")
	}
	if c.JWTTTLMS <= 0 {
		return errors.New("config: JWT_TTL_MS must be positive")
	}
	return nil
}

// TokenTTL returns the configured token time-to-live.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLMS) * time.Millisecond
}
