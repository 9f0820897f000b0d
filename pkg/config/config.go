package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Notify       NotifyConfig
	Toast        ToastConfig
	Data         DataConfig
	Retention    RetentionConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"ECOTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOTRACK_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"ECOTRACK_APP_TIMEZONE" default:"Asia/Bangkok"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the configured application timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServiceConfig struct {
	Kind string `envconfig:"ECOTRACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ECOTRACK_DB_DSN"`
	Driver string `envconfig:"ECOTRACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ECOTRACK_DB_HOST"`
	Port     int    `envconfig:"ECOTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"ECOTRACK_DB_USER"`
	Password string `envconfig:"ECOTRACK_DB_PASSWORD"`
	Name     string `envconfig:"ECOTRACK_DB_NAME"`
	SSLMode  string `envconfig:"ECOTRACK_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"ECOTRACK_DB_SQLITE_PATH" default:"ecotrack.db"`

	MaxOpenConns    int           `envconfig:"ECOTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ECOTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"ECOTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ECOTRACK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig throttles device traffic with a fixed window.
type RateLimitConfig struct {
	Window time.Duration `envconfig:"ECOTRACK_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"ECOTRACK_RATE_LIMIT_MAX_REQUESTS" default:"120"`
}

// NotifyConfig tunes the notification dispatch pipeline.
type NotifyConfig struct {
	DispatchInterval time.Duration `envconfig:"ECOTRACK_NOTIFY_DISPATCH_INTERVAL" default:"1m"`
	RebuildBatchSize int           `envconfig:"ECOTRACK_NOTIFY_REBUILD_BATCH_SIZE" default:"200"`
	SendMaxRetries   int           `envconfig:"ECOTRACK_NOTIFY_SEND_MAX_RETRIES" default:"3"`
	SendBackoff      time.Duration `envconfig:"ECOTRACK_NOTIFY_SEND_BACKOFF" default:"250ms"`
}

// ToastConfig tunes the in-app toast queue lifecycle.
type ToastConfig struct {
	Tick            time.Duration `envconfig:"ECOTRACK_TOAST_TICK" default:"100ms"`
	ExitSettleDelay time.Duration `envconfig:"ECOTRACK_TOAST_EXIT_SETTLE_DELAY" default:"300ms"`
	MaxVisible      int           `envconfig:"ECOTRACK_TOAST_MAX_VISIBLE" default:"5"`
}

// DataConfig points at the static datasets loaded on startup.
type DataConfig struct {
	QuestionnairePath   string `envconfig:"ECOTRACK_DATA_QUESTIONNAIRE" default:""`
	WasteCategoriesPath string `envconfig:"ECOTRACK_DATA_WASTE_CATEGORIES" default:""`
}

type RetentionConfig struct {
	DeliveryLogDays int `envconfig:"ECOTRACK_RETENTION_DELIVERY_LOG_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ECOTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ECOTRACK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
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
