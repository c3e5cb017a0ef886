package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Engine       EngineConfig
	Cache        CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Engine.Policy(); err != nil {
		return nil, err
	}
	if _, err := cfg.Engine.Tolerance(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPLITWALLET_APP_ENV" required:"true"`
	Port         string `envconfig:"SPLITWALLET_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SPLITWALLET_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SPLITWALLET_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SPLITWALLET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"SPLITWALLET_DB_DSN"`
	SQLitePath string `envconfig:"SPLITWALLET_SQLITE_PATH" default:"splitwallet.db"`

	Host     string `envconfig:"SPLITWALLET_DB_HOST"`
	Port     int    `envconfig:"SPLITWALLET_DB_PORT" default:"5432"`
	User     string `envconfig:"SPLITWALLET_DB_USER"`
	Password string `envconfig:"SPLITWALLET_DB_PASSWORD"`
	Name     string `envconfig:"SPLITWALLET_DB_NAME"`
	SSLMode  string `envconfig:"SPLITWALLET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPLITWALLET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPLITWALLET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPLITWALLET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPLITWALLET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPLITWALLET_REDIS_URL"`
	Address      string        `envconfig:"SPLITWALLET_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"SPLITWALLET_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPLITWALLET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPLITWALLET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPLITWALLET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPLITWALLET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPLITWALLET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPLITWALLET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite    bool `envconfig:"SPLITWALLET_USE_SQLITE" default:"false"`
	AutoMigrate  bool `envconfig:"SPLITWALLET_AUTO_MIGRATE" default:"false"`
	BalanceCache bool `envconfig:"SPLITWALLET_BALANCE_CACHE" default:"true"`
}

// EngineConfig tunes the settlement engine.
type EngineConfig struct {
	RemainderPolicy string `envconfig:"SPLITWALLET_REMAINDER_POLICY" default:"member_order"`
	// SettlementTolerance is the largest imbalance accepted by the planner, as a decimal amount.
	SettlementTolerance string `envconfig:"SPLITWALLET_SETTLEMENT_TOLERANCE" default:"0.01"`
}

func (e EngineConfig) Policy() (enums.RemainderPolicy, error) {
	return enums.ParseRemainderPolicy(e.RemainderPolicy)
}

func (e EngineConfig) Tolerance() (decimal.Decimal, error) {
	tolerance, err := decimal.NewFromString(strings.TrimSpace(e.SettlementTolerance))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", EnvSettlementTolerance, err)
	}
	if tolerance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", EnvSettlementTolerance)
	}
	return tolerance, nil
}

type CacheConfig struct {
	BalanceTTL     time.Duration `envconfig:"SPLITWALLET_BALANCE_CACHE_TTL" default:"10m"`
	IdempotencyTTL time.Duration `envconfig:"SPLITWALLET_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
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
