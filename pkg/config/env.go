package config

const EnvPrefix = "ARTISAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:artisanmarket.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv   = "ARTISAN_APP_ENV"
	EnvPort     = "ARTISAN_APP_PORT"
	EnvLogLevel = "ARTISAN_LOG_LEVEL"

	EnvDBDSN    = "ARTISAN_DB_DSN"
	EnvDBDriver = "ARTISAN_DB_DRIVER"
	EnvDBHost   = "ARTISAN_DB_HOST"
	EnvDBUser   = "ARTISAN_DB_USER"
	EnvDBName   = "ARTISAN_DB_NAME"

	EnvRedisURL  = "ARTISAN_REDIS_URL"
	EnvRedisAddr = "ARTISAN_REDIS_ADDR"

	EnvJWTSecret = "ARTISAN_JWT_SECRET"

	EnvCartBackend  = "ARTISAN_CART_BACKEND"
	EnvCartLockMode = "ARTISAN_CART_LOCK_MODE"
	EnvCartTTL      = "ARTISAN_CART_TTL"

	EnvCORSOrigins = "ARTISAN_CORS_ORIGINS"

	EnvEventsKafkaBrokers = "ARTISAN_EVENTS_KAFKA_BROKERS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
