package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"console"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address             string   `envconfig:"ASSET_CONSOLE_ADDRESS" default:":3443"`
	MetricsAddress      string   `envconfig:"ASSET_CONSOLE_METRICS_ADDRESS" default:":8080"`
	BaseUrl             string   `envconfig:"ASSET_CONSOLE_BASE_URL" default:"https://localhost:3443"`
	JobApiUrl           string   `envconfig:"ASSET_CONSOLE_JOB_API_URL" default:"http://localhost:9090"`
	PollIntervalSeconds int      `envconfig:"ASSET_CONSOLE_POLL_INTERVAL_SECONDS" default:"15"`
	LogLevel            string   `envconfig:"ASSET_CONSOLE_LOG_LEVEL" default:"info"`
	CorsAllowedOrigins  []string `envconfig:"ASSET_CONSOLE_CORS_ALLOWED_ORIGINS" default:"https://console.mediakit.local"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault builds a config without consulting the usual environment
// variables. Tests use it to get an in-memory sqlite store.
func NewDefault() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("asset_console_test", cfg); err != nil {
		return nil, err
	}
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "file::memory:?cache=shared"
	return cfg, nil
}
