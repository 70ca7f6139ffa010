package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Gateway       GatewayConfig
	PaymentLock   PaymentLockConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRIPOVIA_APP_ENV" required:"true"`
	Port         string `envconfig:"TRIPOVIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRIPOVIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRIPOVIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRIPOVIA_DB_DSN"`
	Driver string `envconfig:"TRIPOVIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRIPOVIA_DB_HOST"`
	LegacyPort     int    `envconfig:"TRIPOVIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRIPOVIA_DB_USER"`
	LegacyPassword string `envconfig:"TRIPOVIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRIPOVIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRIPOVIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRIPOVIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRIPOVIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRIPOVIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRIPOVIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRIPOVIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRIPOVIA_REDIS_ADDR"`
	Password     string        `envconfig:"TRIPOVIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRIPOVIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRIPOVIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRIPOVIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRIPOVIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRIPOVIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRIPOVIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRIPOVIA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRIPOVIA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRIPOVIA_JWT_EXPIRATION_MINUTES" required:"true"`
}

// GatewayConfig carries the payment gateway credentials and environment.
type GatewayConfig struct {
	APIKey         string        `envconfig:"TRIPOVIA_GATEWAY_API_KEY"`
	Env            string        `envconfig:"TRIPOVIA_GATEWAY_ENV" default:"test"`
	RequestTimeout time.Duration `envconfig:"TRIPOVIA_GATEWAY_REQUEST_TIMEOUT" default:"15s"`
}

// Environment returns the normalized gateway environment (test/live).
func (g GatewayConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(g.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PaymentLockConfig tunes the optional per-hold initiation lock.
type PaymentLockConfig struct {
	Enabled bool          `envconfig:"TRIPOVIA_PAYMENT_LOCK_ENABLED" default:"true"`
	TTL     time.Duration `envconfig:"TRIPOVIA_PAYMENT_LOCK_TTL" default:"30s"`
}

type AuthRateLimitConfig struct {
	PaymentWindow  time.Duration `envconfig:"TRIPOVIA_RATE_LIMIT_PAYMENT_WINDOW" default:"1m"`
	PaymentLimit   int           `envconfig:"TRIPOVIA_RATE_LIMIT_PAYMENT_LIMIT" default:"10"`
	PaymentIPLimit int           `envconfig:"TRIPOVIA_RATE_LIMIT_PAYMENT_IP_LIMIT" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
