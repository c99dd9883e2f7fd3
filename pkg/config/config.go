package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig prefix shared by every variable.
	EnvPrefix = "COURSEHIVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "COURSEHIVE_DB_DSN"
	EnvDBHost = "COURSEHIVE_DB_HOST"
	EnvDBUser = "COURSEHIVE_DB_USER"
	EnvDBName = "COURSEHIVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Cloudinary   CloudinaryConfig
	Media        MediaConfig
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
	Env          string `envconfig:"COURSEHIVE_APP_ENV" required:"true"`
	Port         string `envconfig:"COURSEHIVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COURSEHIVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COURSEHIVE_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"COURSEHIVE_FRONTEND_URL"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COURSEHIVE_DB_DSN"`
	Driver string `envconfig:"COURSEHIVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COURSEHIVE_DB_HOST"`
	LegacyPort     int    `envconfig:"COURSEHIVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COURSEHIVE_DB_USER"`
	LegacyPassword string `envconfig:"COURSEHIVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"COURSEHIVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"COURSEHIVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COURSEHIVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COURSEHIVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COURSEHIVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COURSEHIVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COURSEHIVE_REDIS_URL"`
	Address      string        `envconfig:"COURSEHIVE_REDIS_ADDR"`
	Password     string        `envconfig:"COURSEHIVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"COURSEHIVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COURSEHIVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COURSEHIVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COURSEHIVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COURSEHIVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COURSEHIVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COURSEHIVE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COURSEHIVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"COURSEHIVE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey   string        `envconfig:"COURSEHIVE_STRIPE_API_KEY"`
	Env      string        `envconfig:"COURSEHIVE_STRIPE_ENV" default:"test"`
	Currency string        `envconfig:"COURSEHIVE_STRIPE_CURRENCY" default:"usd"`
	Timeout  time.Duration `envconfig:"COURSEHIVE_STRIPE_TIMEOUT" default:"15s"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CloudinaryConfig struct {
	CloudName string        `envconfig:"COURSEHIVE_CLOUDINARY_CLOUD_NAME"`
	APIKey    string        `envconfig:"COURSEHIVE_CLOUDINARY_API_KEY"`
	APISecret string        `envconfig:"COURSEHIVE_CLOUDINARY_API_SECRET"`
	Folder    string        `envconfig:"COURSEHIVE_CLOUDINARY_FOLDER" default:"courses"`
	Timeout   time.Duration `envconfig:"COURSEHIVE_CLOUDINARY_TIMEOUT" default:"30s"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"COURSEHIVE_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured upload cap to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) << 20
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COURSEHIVE_AUTO_MIGRATE" default:"false"`
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
