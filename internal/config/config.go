package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	ErrMissingDSN           = errors.New("postgres.dsn is required")
	ErrMissingSessionSecret = errors.New("security.sessionsecret is required")
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	PublicURL     string
	AccessKey     string
	SecretKey     string
	BucketAvatars string
	UseSSL        bool
	Region        string
	MaxAvatarSize int64
}

// SecurityConfig holds the session signing secret and the lifetimes of the
// two token kinds issued by the service.
type SecurityConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	ResetTTL      time.Duration
	CookieName    string
	CookieDomain  string
	CookieSecure  bool
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type WorkerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	PurgeSchedule string
	MetricsAddr   string
}

type AppConfig struct {
	Environment      string
	FrontendURL      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Mail             MailConfig
	Worker           WorkerConfig
	AllowCORSOrigins []string
}

// Load reads config.yaml (when present) and ACCOUNTSVC_* environment
// variables, e.g. ACCOUNTSVC_POSTGRES_DSN.
func Load() (*AppConfig, error) {
	return LoadFile("")
}

func LoadFile(path string) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ACCOUNTSVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports settings the process cannot start without.
func (c *AppConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		errs = append(errs, ErrMissingDSN)
	}
	if c.Security.SessionSecret == "" {
		errs = append(errs, ErrMissingSessionSecret)
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("frontendurl", "http://localhost:3000")
	v.SetDefault("allowcorsorigins", []string{})

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 5000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	// Registered so AutomaticEnv can populate them during Unmarshal.
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", false)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "127.0.0.1:9000")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketavatars", "avatars")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.maxavatarsize", 5<<20)

	v.SetDefault("security.sessionsecret", "")
	v.SetDefault("security.sessionttl", "24h")
	v.SetDefault("security.resetttl", "15m")
	v.SetDefault("security.cookiename", "token")
	v.SetDefault("security.cookiedomain", "")
	v.SetDefault("security.cookiesecure", true)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")

	v.SetDefault("worker.stream", "account:maintenance")
	v.SetDefault("worker.group", "account-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "30s")
	v.SetDefault("worker.purgeschedule", "0 */15 * * * *")
	v.SetDefault("worker.metricsaddr", ":9091")
}
