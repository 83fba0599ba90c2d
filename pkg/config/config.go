package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Uploads       UploadsConfig
	Kafka         KafkaConfig
	Outbox        OutboxConfig
	Dashboard     DashboardConfig
	Maintenance   MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Dashboard.Margin(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env               string `envconfig:"LASTROS_APP_ENV" required:"true"`
	Port              string `envconfig:"LASTROS_APP_PORT" default:"3001"`
	LogLevel          string `envconfig:"LASTROS_LOG_LEVEL" default:"info"`
	LogWarnStack      bool   `envconfig:"LASTROS_LOG_WARN_STACK" default:"false"`
	DefaultTenantSlug string `envconfig:"LASTROS_DEFAULT_TENANT_SLUG" default:"restaurante-demo"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LASTROS_DB_DSN"`
	Driver string `envconfig:"LASTROS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"LASTROS_DB_HOST"`
	Port     int    `envconfig:"LASTROS_DB_PORT" default:"5432"`
	User     string `envconfig:"LASTROS_DB_USER"`
	Password string `envconfig:"LASTROS_DB_PASSWORD"`
	Name     string `envconfig:"LASTROS_DB_NAME"`
	SSLMode  string `envconfig:"LASTROS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LASTROS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LASTROS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LASTROS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LASTROS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LASTROS_REDIS_URL"`
	Address      string        `envconfig:"LASTROS_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"LASTROS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LASTROS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LASTROS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LASTROS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LASTROS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LASTROS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LASTROS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LASTROS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LASTROS_JWT_ISSUER" default:"lastros-pos"`
	ExpirationMinutes      int    `envconfig:"LASTROS_JWT_EXPIRATION_MINUTES" default:"720"`
	RefreshTokenTTLMinutes int    `envconfig:"LASTROS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LASTROS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LASTROS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LASTROS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LASTROS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LASTROS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LASTROS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LASTROS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LASTROS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LASTROS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LASTROS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LASTROS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LASTROS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LASTROS_AUTO_MIGRATE" default:"false"`
	Sessions    bool `envconfig:"LASTROS_ENFORCE_SESSIONS" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LASTROS_CORS_ALLOWED_ORIGINS" default:"*"`
	MaxAgeSeconds  int      `envconfig:"LASTROS_CORS_MAX_AGE" default:"300"`
}

type UploadsConfig struct {
	Dir          string `envconfig:"LASTROS_UPLOADS_DIR" default:"public/uploads"`
	PublicPrefix string `envconfig:"LASTROS_UPLOADS_PUBLIC_PREFIX" default:"/uploads"`
	MaxUploadMB  int    `envconfig:"LASTROS_MAX_UPLOAD_MB" default:"5"`
}

// MaxBytes returns the upload size cap in bytes.
func (u UploadsConfig) MaxBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

type KafkaConfig struct {
	Brokers      []string      `envconfig:"LASTROS_KAFKA_BROKERS"`
	OrdersTopic  string        `envconfig:"LASTROS_KAFKA_ORDERS_TOPIC" default:"pos.orders"`
	WriteTimeout time.Duration `envconfig:"LASTROS_KAFKA_WRITE_TIMEOUT" default:"10s"`
}

// Enabled reports whether at least one broker is configured.
func (k KafkaConfig) Enabled() bool {
	for _, b := range k.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"LASTROS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"LASTROS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"LASTROS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"LASTROS_OUTBOX_METRICS_ADDR" default:":9101"`
}

type MaintenanceConfig struct {
	IntervalMinutes      int    `envconfig:"LASTROS_MAINTENANCE_INTERVAL_MINUTES" default:"60"`
	OutboxRetentionDays  int    `envconfig:"LASTROS_MAINTENANCE_OUTBOX_RETENTION_DAYS" default:"30"`
	OrphanUploadAgeHours int    `envconfig:"LASTROS_MAINTENANCE_ORPHAN_UPLOAD_AGE_HOURS" default:"24"`
	MetricsAddr          string `envconfig:"LASTROS_MAINTENANCE_METRICS_ADDR" default:":9102"`
}

// Interval returns the cadence between maintenance cycles.
func (m MaintenanceConfig) Interval() time.Duration {
	if m.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(m.IntervalMinutes) * time.Minute
}

type DashboardConfig struct {
	ProfitMargin string `envconfig:"LASTROS_DASHBOARD_PROFIT_MARGIN" default:"0.35"`
	Timezone     string `envconfig:"LASTROS_DASHBOARD_TIMEZONE" default:"UTC"`
}

// Margin parses the configured profit margin as a fraction between 0 and 1.
func (d DashboardConfig) Margin() (decimal.Decimal, error) {
	raw := strings.TrimSpace(d.ProfitMargin)
	if raw == "" {
		return decimal.NewFromFloat(0.35), nil
	}
	margin, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvDashboardProfitMargin, raw, err)
	}
	if margin.IsNegative() || margin.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 1", EnvDashboardProfitMargin)
	}
	return margin, nil
}

// Location resolves the dashboard timezone, defaulting to UTC.
func (d DashboardConfig) Location() *time.Location {
	tz := strings.TrimSpace(d.Timezone)
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:lastros.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPieceEnvVars {
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
