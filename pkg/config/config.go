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
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Resend        ResendConfig
	Discord       DiscordConfig
	Fulfillment   FulfillmentConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.Driver == DBDriverPostgres {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MAMBA_APP_ENV" required:"true"`
	Port         string `envconfig:"MAMBA_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"MAMBA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MAMBA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Driver selects the storage implementation at boot: postgres or memory.
	Driver string `envconfig:"MAMBA_DB_DRIVER" default:"postgres"`
	DSN    string `envconfig:"MAMBA_DB_DSN"`

	LegacyHost     string `envconfig:"MAMBA_DB_HOST"`
	LegacyPort     int    `envconfig:"MAMBA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MAMBA_DB_USER"`
	LegacyPassword string `envconfig:"MAMBA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MAMBA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MAMBA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MAMBA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAMBA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MAMBA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MAMBA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) UseMemory() bool {
	return strings.EqualFold(db.Driver, DBDriverMemory)
}

type RedisConfig struct {
	URL          string        `envconfig:"MAMBA_REDIS_URL"`
	Address      string        `envconfig:"MAMBA_REDIS_ADDR"`
	Password     string        `envconfig:"MAMBA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MAMBA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MAMBA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MAMBA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MAMBA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MAMBA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MAMBA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"MAMBA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"MAMBA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"MAMBA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"MAMBA_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"MAMBA_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"MAMBA_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MAMBA_FEATURE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MAMBA_STRIPE_API_KEY"`
	Secret string `envconfig:"MAMBA_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"MAMBA_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type ResendConfig struct {
	APIKey      string `envconfig:"MAMBA_RESEND_API_KEY"`
	DefaultFrom string `envconfig:"MAMBA_RESEND_FROM_EMAIL" default:"onboarding@resend.dev"`
}

type DiscordConfig struct {
	Token   string `envconfig:"MAMBA_DISCORD_TOKEN"`
	GuildID string `envconfig:"MAMBA_DISCORD_GUILD_ID"`
	RoleID  string `envconfig:"MAMBA_DISCORD_ROLE_ID"`
}

// Enabled reports whether outbound Discord calls are configured at all.
func (d DiscordConfig) Enabled() bool {
	return d.Token != "" && d.GuildID != "" && d.RoleID != ""
}

type FulfillmentConfig struct {
	GeneratorLink     string `envconfig:"MAMBA_FULFILLMENT_GENERATOR_LINK" default:"https://mambagen.up.railway.app/gen.html"`
	DefaultAccessDays int    `envconfig:"MAMBA_FULFILLMENT_DEFAULT_ACCESS_DAYS" default:"31"`
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
