package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "wiibec"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WIIBEC_DB_DSN"
	EnvDBHost = "WIIBEC_DB_HOST"
	EnvDBUser = "WIIBEC_DB_USER"
	EnvDBName = "WIIBEC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Profile      ProfileConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Sendgrid     SendgridConfig
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
	Env          string `envconfig:"WIIBEC_APP_ENV" required:"true"`
	Port         string `envconfig:"WIIBEC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WIIBEC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WIIBEC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WIIBEC_DB_DSN"`
	Driver string `envconfig:"WIIBEC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WIIBEC_DB_HOST"`
	LegacyPort     int    `envconfig:"WIIBEC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WIIBEC_DB_USER"`
	LegacyPassword string `envconfig:"WIIBEC_DB_PASSWORD"`
	LegacyName     string `envconfig:"WIIBEC_DB_NAME"`
	LegacySSLMode  string `envconfig:"WIIBEC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WIIBEC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WIIBEC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WIIBEC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WIIBEC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WIIBEC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WIIBEC_REDIS_ADDR"`
	Password     string        `envconfig:"WIIBEC_REDIS_PASSWORD"`
	DB           int           `envconfig:"WIIBEC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WIIBEC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WIIBEC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WIIBEC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WIIBEC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WIIBEC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WIIBEC_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WIIBEC_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WIIBEC_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WIIBEC_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WIIBEC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WIIBEC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WIIBEC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WIIBEC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WIIBEC_ARGON_KEY_LEN" default:"32"`
}

// ProfileConfig bounds the post-signup profile fetch backoff.
type ProfileConfig struct {
	FetchMaxAttempts int           `envconfig:"WIIBEC_PROFILE_FETCH_MAX_ATTEMPTS" default:"5"`
	FetchBaseDelay   time.Duration `envconfig:"WIIBEC_PROFILE_FETCH_BASE_DELAY" default:"250ms"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WIIBEC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WIIBEC_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"WIIBEC_STRIPE_API_KEY"`
	Env    string `envconfig:"WIIBEC_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// CheckoutConfig carries the hosted-checkout redirect targets.
type CheckoutConfig struct {
	SuccessURL string `envconfig:"WIIBEC_CHECKOUT_SUCCESS_URL" default:"https://wiibec.org/payment-success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL  string `envconfig:"WIIBEC_CHECKOUT_CANCEL_URL" default:"https://wiibec.org/donate"`
	// VerifyGuardTTL bounds how long an in-flight verification holds the
	// duplicate-suppression key for a checkout session.
	VerifyGuardTTL time.Duration `envconfig:"WIIBEC_CHECKOUT_VERIFY_GUARD_TTL" default:"2m"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"WIIBEC_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"WIIBEC_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"WIIBEC_SENDGRID_FROM_NAME" default:"WIIBEC"`
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
