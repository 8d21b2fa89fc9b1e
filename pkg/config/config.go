package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/artisanmarket/cart-backend/pkg/enums"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Cart   CartConfig
	HTTP   HTTPConfig
	Events EventsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	backend, err := enums.ParseCartBackend(strings.ToLower(strings.TrimSpace(c.Cart.Backend)))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvCartBackend, err)
	}
	lockMode, err := enums.ParseCartLockMode(strings.ToLower(strings.TrimSpace(c.Cart.LockMode)))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvCartLockMode, err)
	}

	if backend == enums.CartBackendDB {
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	}
	if backend == enums.CartBackendRedis || lockMode == enums.CartLockModeRedis {
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the %s backend", EnvRedisURL, EnvRedisAddr, backend)
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"ARTISAN_APP_ENV" required:"true"`
	Port         string `envconfig:"ARTISAN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ARTISAN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ARTISAN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ARTISAN_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"ARTISAN_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARTISAN_DB_DSN"`
	Driver string `envconfig:"ARTISAN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ARTISAN_DB_HOST"`
	Port     int    `envconfig:"ARTISAN_DB_PORT" default:"5432"`
	User     string `envconfig:"ARTISAN_DB_USER"`
	Password string `envconfig:"ARTISAN_DB_PASSWORD"`
	Name     string `envconfig:"ARTISAN_DB_NAME"`
	SSLMode  string `envconfig:"ARTISAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARTISAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARTISAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARTISAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARTISAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"ARTISAN_REDIS_URL"`
	Address      string        `envconfig:"ARTISAN_REDIS_ADDR"`
	Password     string        `envconfig:"ARTISAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARTISAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARTISAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARTISAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARTISAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARTISAN_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ARTISAN_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether enough settings exist to dial Redis.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig verifies bearer tokens minted by the marketplace auth service.
// Verification is disabled when Secret is empty.
type JWTConfig struct {
	Secret            string `envconfig:"ARTISAN_JWT_SECRET"`
	Issuer            string `envconfig:"ARTISAN_JWT_ISSUER" default:"artisanmarket"`
	ExpirationMinutes int    `envconfig:"ARTISAN_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) Enabled() bool {
	return j.Secret != ""
}

type CartConfig struct {
	Backend           string        `envconfig:"ARTISAN_CART_BACKEND" default:"db"`
	TTL               time.Duration `envconfig:"ARTISAN_CART_TTL" default:"720h"`
	LockMode          string        `envconfig:"ARTISAN_CART_LOCK_MODE" default:"local"`
	LockTTL           time.Duration `envconfig:"ARTISAN_CART_LOCK_TTL" default:"5s"`
	LockRetries       uint64        `envconfig:"ARTISAN_CART_LOCK_RETRIES" default:"40"`
	LockRetryInterval time.Duration `envconfig:"ARTISAN_CART_LOCK_RETRY_INTERVAL" default:"25ms"`
	// SweepInterval paces the expired-cart purge for the db backend; 0 disables it.
	SweepInterval time.Duration `envconfig:"ARTISAN_CART_SWEEP_INTERVAL" default:"1h"`
}

// BackendKind returns the parsed backend; Load has already validated it.
func (c CartConfig) BackendKind() enums.CartBackend {
	return enums.CartBackend(strings.ToLower(strings.TrimSpace(c.Backend)))
}

// LockKind returns the parsed lock mode; Load has already validated it.
func (c CartConfig) LockKind() enums.CartLockMode {
	return enums.CartLockMode(strings.ToLower(strings.TrimSpace(c.LockMode)))
}

type HTTPConfig struct {
	CORSOrigins     []string      `envconfig:"ARTISAN_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	ReadTimeout     time.Duration `envconfig:"ARTISAN_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"ARTISAN_HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"ARTISAN_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	IdempotencyTTL  time.Duration `envconfig:"ARTISAN_IDEMPOTENCY_TTL" default:"24h"`
	RateLimitWindow time.Duration `envconfig:"ARTISAN_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"ARTISAN_RATE_LIMIT_PER_IP" default:"240"`
}

// EventsConfig publishes committed cart mutations to Kafka. Publishing is
// disabled when no brokers are configured.
type EventsConfig struct {
	KafkaBrokers []string      `envconfig:"ARTISAN_EVENTS_KAFKA_BROKERS"`
	Topic        string        `envconfig:"ARTISAN_EVENTS_TOPIC" default:"cart.events"`
	ClientID     string        `envconfig:"ARTISAN_EVENTS_CLIENT_ID" default:"artisanmarket-cart"`
	Timeout      time.Duration `envconfig:"ARTISAN_EVENTS_TIMEOUT" default:"2s"`
}

func (e EventsConfig) Enabled() bool {
	return len(e.KafkaBrokers) > 0
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
