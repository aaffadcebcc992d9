package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	MySQL     MySQLConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Queue     QueueConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name              string `env:"APP_NAME" env-default:"todo-api"`
	Version           string `env:"APP_VERSION" env-default:"dev"`
	Env               string `env:"APP_ENV" env-default:"dev"`
	Storage           string `env:"STORAGE_DRIVER" env-default:"mysql"`
	TranslationFolder string `env:"TRANSLATION_FOLDER" env-default:"pkg/translator/translation"`
}

type HTTPConfig struct {
	Port            string        `env:"APP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	TrustedProxies  ProxyList     `env:"TRUSTED_PROXIES"`
}

type MySQLConfig struct {
	Host        string `env:"MYSQL_HOST" env-default:"db"`
	Port        string `env:"MYSQL_PORT" env-default:"3306"`
	User        string `env:"MYSQL_USER" env-default:"todo"`
	Password    string `env:"MYSQL_PASSWORD" env-default:"todo"`
	Database    string `env:"MYSQL_DATABASE" env-default:"todo"`
	Params      string `env:"MYSQL_PARAMS" env-default:"parseTime=true&multiStatements=true"`
	AutoMigrate bool   `env:"MYSQL_AUTO_MIGRATE" env-default:"true"`
}

// DSN renders the go-sql-driver/mysql connection string.
func (c MySQLConfig) DSN() string {
	params := c.Params
	if params == "" {
		params = "parseTime=true&multiStatements=true"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Database, params)
}

type RedisConfig struct {
	// Addr is "host:port". Notifications are only logged when empty.
	Addr     string `env:"REDIS_ADDR" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Channel  string `env:"REDIS_NOTIFY_CHANNEL" env-default:"todo:notifications"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	Issuer    string        `env:"JWT_ISSUER" env-default:"todo-api"`
	TokenTTL  time.Duration `env:"JWT_TTL" env-default:"24h"`
}

type CacheConfig struct {
	TTL       time.Duration `env:"CACHE_TTL" env-default:"5m"`
	Capacity  int           `env:"CACHE_CAPACITY" env-default:"10000"`
	NumShards int           `env:"CACHE_SHARDS" env-default:"16"`
}

type QueueConfig struct {
	ProcessDelay time.Duration `env:"QUEUE_PROCESS_DELAY" env-default:"1s"`
}

type TelemetryConfig struct {
	// OTLPEndpoint enables trace and metric export when set.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
}

// ProxyList reads a comma separated list of trusted proxies.
type ProxyList []string

func (p *ProxyList) SetValue(value string) error {
	*p = parseTrustedProxies(value)
	return nil
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	switch cfg.App.Storage {
	case StorageMySQL, StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMySQL, StorageMemory, cfg.App.Storage)
	}
	return &cfg, nil
}

func parseTrustedProxies(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	proxies := make([]string, 0, len(parts))
	for _, part := range parts {
		proxy := strings.TrimSpace(part)
		if proxy == "" {
			continue
		}
		proxies = append(proxies, proxy)
	}

	if len(proxies) == 0 {
		return nil
	}

	return proxies
}
