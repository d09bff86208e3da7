package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/inventory/pkg/config"
	pkgdb "github.com/Skotchmaster/inventory/pkg/db"
	"github.com/Skotchmaster/inventory/pkg/tokens"
)

const (
	EnvDevelopment = "development"

	devJWTSecret = "dev-insecure-secret-change-me"
	devSQLiteDSN = "inventory.db"
)

type Config struct {
	ServiceName string
	AppEnv      string
	Port        string
	LogLevel    string

	DBDriver       string
	DatabaseURL    string
	MigrateOnStart bool

	JWTSecret []byte
	JWTTTL    time.Duration
	// InsecureSecret is set when the development fallback secret is in use.
	InsecureSecret bool

	AuthCheckActive   bool
	AllowAdminSignup  bool
	AuthRatePerMinute int
	AuthRateBurst     int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// LoadDotEnv loads the given files into the environment without overriding
// variables that are already set. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var errs []error
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("load %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "inventory"),
		AppEnv:      strings.ToLower(pkgconfig.EnvDefault("APP_ENV", "production")),
		Port:        pkgconfig.EnvDefault("SERVER_PORT", pkgconfig.EnvDefault("PORT", "8080")),
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:       strings.ToLower(pkgconfig.EnvDefault("DB_DRIVER", pkgdb.DriverPostgres)),
		DatabaseURL:    pkgconfig.EnvDefault("DATABASE_URL", ""),
		MigrateOnStart: pkgconfig.EnvBoolDefault("MIGRATE_ON_START", true),

		JWTSecret: []byte(pkgconfig.EnvDefault("JWT_SECRET", "")),
		JWTTTL:    pkgconfig.EnvDurationDefault("JWT_TTL", tokens.DefaultTTL),

		AuthCheckActive:   pkgconfig.EnvBoolDefault("AUTH_CHECK_ACTIVE", true),
		AllowAdminSignup:  pkgconfig.EnvBoolDefault("ALLOW_ADMIN_SIGNUP", true),
		AuthRatePerMinute: pkgconfig.EnvIntDefault("AUTH_RATE_PER_MINUTE", 30),
		AuthRateBurst:     pkgconfig.EnvIntDefault("AUTH_RATE_BURST", 10),

		KafkaBrokers: pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),

		ESURL:      pkgconfig.EnvDefault("ES_URL", ""),
		ESUser:     pkgconfig.EnvDefault("ES_USER", ""),
		ESPassword: pkgconfig.EnvDefault("ES_PASSWORD", ""),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "equipment"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case pkgdb.DriverPostgres:
		if err := pkgconfig.NonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
			return err
		}
	case pkgdb.DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = devSQLiteDSN
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if len(c.JWTSecret) == 0 {
		if !c.IsDevelopment() {
			return pkgconfig.NonEmpty("", "JWT_SECRET")
		}
		c.JWTSecret = []byte(devJWTSecret)
		c.InsecureSecret = true
	}

	if c.AuthRatePerMinute <= 0 || c.AuthRateBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	return nil
}
