package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. GOALMATE_DB_HOST.
const EnvPrefix = "GOALMATE"

var (
	ErrMissingJWTSecret = errors.New("config: jwt.secret must be set")
	ErrInvalidDailyGoal = errors.New("config: analytics.daily_goal must be positive")
	ErrInvalidTimezone  = errors.New("config: analytics.timezone is not a known zone")
)

type Config struct {
	Port      string          `mapstructure:"port"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Mail      MailConfig      `mapstructure:"mail"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromName       string `mapstructure:"from_name"`
	FromAddress    string `mapstructure:"from_address"`
	FrontendURL    string `mapstructure:"frontend_url"`
	QueueSize      int    `mapstructure:"queue_size"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
}

type AnalyticsConfig struct {
	Timezone  string `mapstructure:"timezone"`
	DailyGoal int    `mapstructure:"daily_goal"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "goalmate")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 25)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "goalmate-api")
	v.SetDefault("jwt.ttl", 72*time.Hour)

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("mail.sendgrid_api_key", "")
	v.SetDefault("mail.from_name", "GoalMate")
	v.SetDefault("mail.from_address", "no-reply@goalmate.local")
	v.SetDefault("mail.frontend_url", "http://localhost:5173")
	v.SetDefault("mail.queue_size", 100)
	v.SetDefault("mail.max_attempts", 3)

	v.SetDefault("analytics.timezone", "Local")
	v.SetDefault("analytics.daily_goal", 5)

	v.SetDefault("cache.ttl", 30*time.Minute)
}

// Load reads configuration from, in increasing priority: defaults, the
// config file at cfgFile (or ./config.yaml when present), a .env file in the
// working directory and GOALMATE_* environment variables.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Analytics.DailyGoal <= 0 {
		return ErrInvalidDailyGoal
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DSN is the Postgres connection URL for the pgx driver.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

// Location resolves analytics.timezone. "Local" or empty means the server zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Analytics.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	return loc, nil
}
