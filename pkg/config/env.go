package config

const (
	EnvPrefix = "LASTROS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "LASTROS_APP_ENV"
	EnvPort                   = "LASTROS_APP_PORT"
	EnvDBDSN                  = "LASTROS_DB_DSN"
	EnvDBHost                 = "LASTROS_DB_HOST"
	EnvDBUser                 = "LASTROS_DB_USER"
	EnvDBName                 = "LASTROS_DB_NAME"
	EnvRedisURL               = "LASTROS_REDIS_URL"
	EnvJWTSecret              = "LASTROS_JWT_SECRET"
	EnvJWTIssuer              = "LASTROS_JWT_ISSUER"
	EnvJWTExpMins             = "LASTROS_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite              = "LASTROS_USE_SQLITE"
	EnvKafkaBrokers           = "LASTROS_KAFKA_BROKERS"
	EnvCORSAllowedOrigins     = "LASTROS_CORS_ALLOWED_ORIGINS"
	EnvDashboardProfitMargin  = "LASTROS_DASHBOARD_PROFIT_MARGIN"
	EnvRefreshTokenTTLMinutes = "LASTROS_REFRESH_TOKEN_TTL_MINUTES"
)

var dbPieceEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
