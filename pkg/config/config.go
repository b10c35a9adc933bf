package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Finance      FinanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Finance.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HAANI_APP_ENV" required:"true"`
	Port         string `envconfig:"HAANI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HAANI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HAANI_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the admin console origins allowed to call the API.
	CORSOrigins []string `envconfig:"HAANI_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HAANI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"HAANI_DB_DSN"`

	LegacyHost     string `envconfig:"HAANI_DB_HOST"`
	LegacyPort     int    `envconfig:"HAANI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HAANI_DB_USER"`
	LegacyPassword string `envconfig:"HAANI_DB_PASSWORD"`
	LegacyName     string `envconfig:"HAANI_DB_NAME"`
	LegacySSLMode  string `envconfig:"HAANI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HAANI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HAANI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HAANI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HAANI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQueryThreshold logs statements slower than this; zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"HAANI_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HAANI_REDIS_URL"`
	Address      string        `envconfig:"HAANI_REDIS_ADDR"`
	Password     string        `envconfig:"HAANI_REDIS_PASSWORD"`
	DB           int           `envconfig:"HAANI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HAANI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HAANI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HAANI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HAANI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HAANI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HAANI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HAANI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HAANI_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HAANI_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"HAANI_GCP_PROJECT_ID"`
	// CredentialsJSON wins over ApplicationCredentials; with neither set the
	// client falls back to ambient credentials.
	CredentialsJSON        string `envconfig:"HAANI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HAANI_GOOGLE_APPLICATION_CREDENTIALS"`
}

// PubSubConfig is optional; notifications are stored in-app when no topic is set.
type PubSubConfig struct {
	NotificationTopic string `envconfig:"HAANI_PUBSUB_NOTIFICATION_TOPIC"`
}

// Enabled reports whether notifications should also be fanned out to Pub/Sub.
func (p PubSubConfig) Enabled(gcp GCPConfig) bool {
	return strings.TrimSpace(p.NotificationTopic) != "" && strings.TrimSpace(gcp.ProjectID) != ""
}

// FinanceConfig holds the holding periods, fee policy and batch tuning for the
// payout finalizers.
type FinanceConfig struct {
	RefundWindow       time.Duration          `envconfig:"HAANI_REFUND_WINDOW" default:"24h"`
	SafetyWindow       time.Duration          `envconfig:"HAANI_SAFETY_WINDOW" default:"24h"`
	PlatformFeePercent decimal.Decimal        `envconfig:"HAANI_PLATFORM_FEE_PERCENT" default:"0"`
	PremiumFeePolicy   enums.PremiumFeePolicy `envconfig:"HAANI_PREMIUM_FEE_POLICY" default:"excluded"`
	Currency           string                 `envconfig:"HAANI_CURRENCY" default:"EGP"`
	WorkerConcurrency  int                    `envconfig:"HAANI_WORKER_CONCURRENCY" default:"4"`
	ItemTimeout        time.Duration          `envconfig:"HAANI_ITEM_TIMEOUT" default:"30s"`
	// BatchLimit caps the candidates one finalizer run loads; 0 loads all.
	BatchLimit         int                    `envconfig:"HAANI_FINALIZER_BATCH_LIMIT" default:"500"`
	DiscountSchedule   string                 `envconfig:"HAANI_DISCOUNT_SCHEDULE" default:"@every 24h"`
	SafetySchedule     string                 `envconfig:"HAANI_SAFETY_SCHEDULE" default:"@every 5m"`
	LockTTL            time.Duration          `envconfig:"HAANI_JOB_LOCK_TTL" default:"30m"`
	CleanupSchedule    string                 `envconfig:"HAANI_CLEANUP_SCHEDULE" default:"@daily"`
	ReadRetention      time.Duration          `envconfig:"HAANI_NOTIFICATION_READ_RETENTION" default:"720h"`
}

func (f FinanceConfig) validate() error {
	if f.RefundWindow <= 0 {
		return fmt.Errorf("%s must be positive", EnvRefundWindow)
	}
	if f.SafetyWindow <= 0 {
		return fmt.Errorf("%s must be positive", EnvSafetyWindow)
	}
	if f.PlatformFeePercent.IsNegative() || f.PlatformFeePercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100", EnvPlatformFeePercent)
	}
	if !f.PremiumFeePolicy.IsValid() {
		return fmt.Errorf("invalid %s %q", EnvPremiumFeePolicy, f.PremiumFeePolicy)
	}
	if f.WorkerConcurrency <= 0 {
		return fmt.Errorf("%s must be positive", EnvWorkerConcurrency)
	}
	if f.BatchLimit < 0 {
		return fmt.Errorf("%s cannot be negative", EnvFinalizerBatchLimit)
	}
	return nil
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
