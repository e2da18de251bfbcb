package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"
)

// Config represents the pricing service configuration.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Pricing  PricingConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     int `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30"`
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization,X-Tenant-ID"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// DatabaseConfig contains the SQLite reference-data store settings.
type DatabaseConfig struct {
	Path        string `env:"DB_PATH"         envDefault:"./exportquote.db"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// RedisConfig contains the pricing-config cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"                 envDefault:"0"`
	CacheTTL int    `env:"PRICING_CONFIG_CACHE_TTL" envDefault:"300"` // seconds
}

// TTL returns the cache TTL as a duration.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.CacheTTL) * time.Second
}

// PricingConfig contains engine defaults applied when a tenant has no stored policy.
type PricingConfig struct {
	DefaultTenant    string `env:"PRICING_DEFAULT_TENANT"    envDefault:"default"`
	DefaultCurrency  string `env:"PRICING_DEFAULT_CURRENCY"  envDefault:"USD"`
	DefaultRounding  string `env:"PRICING_DEFAULT_ROUNDING"  envDefault:"HALF_UP"`
	DefaultPrecision int32  `env:"PRICING_DEFAULT_PRECISION" envDefault:"2"`
	MaxBatch         int    `env:"PRICING_MAX_BATCH"         envDefault:"10"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*DatabaseConfig
	*RedisConfig
	*PricingConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Database,
		&cfg.Redis,
		&cfg.Pricing,
	}
}
