package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when a command needs platform credentials and none are configured
var ErrMissingCredentials = errors.New("missing artemis credentials: set artemis.app_key and artemis.app_secret (ARTEMIS_ARTEMIS_APP_KEY / ARTEMIS_ARTEMIS_APP_SECRET) or pass --appKey/--appSecret")

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Artemis ArtemisConfig `mapstructure:"artemis"`
	Inbox   InboxConfig   `mapstructure:"inbox"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	TLSPort         int           `mapstructure:"tls_port"`
	CertFile        string        `mapstructure:"cert_file"`
	KeyFile         string        `mapstructure:"key_file"`
	ReceiveTimeout  time.Duration `mapstructure:"receive_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ArtemisConfig struct {
	BaseURL            string  `mapstructure:"base_url"`
	AppKey             string  `mapstructure:"app_key"`
	AppSecret          string  `mapstructure:"app_secret"`
	InsecureSkipVerify bool    `mapstructure:"insecure_skip_verify"`
	EventDest          string  `mapstructure:"event_dest"`
	EventTypes         []int64 `mapstructure:"event_types"`
}

// Validate checks the settings needed to call the platform
func (a ArtemisConfig) Validate() error {
	if strings.TrimSpace(a.AppKey) == "" || strings.TrimSpace(a.AppSecret) == "" {
		return ErrMissingCredentials
	}
	if strings.TrimSpace(a.BaseURL) == "" {
		return fmt.Errorf("artemis.base_url is required")
	}
	return nil
}

type InboxConfig struct {
	Capacity       int    `mapstructure:"capacity"`
	QueueSize      int    `mapstructure:"queue_size"`
	EventTypesFile string `mapstructure:"event_types_file"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: ARTEMIS_.
// Nested keys use underscore: ARTEMIS_SERVER_PORT, ARTEMIS_REDIS_ADDR, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8082)
	v.SetDefault("server.tls_port", 443)
	v.SetDefault("server.cert_file", "./cert.pem")
	v.SetDefault("server.key_file", "./key.pem")
	v.SetDefault("server.receive_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("artemis.base_url", "")
	v.SetDefault("artemis.app_key", "")
	v.SetDefault("artemis.app_secret", "")
	v.SetDefault("artemis.insecure_skip_verify", false)
	v.SetDefault("artemis.event_dest", "")
	v.SetDefault("artemis.event_types", []int64{196893})
	v.SetDefault("inbox.capacity", 100)
	v.SetDefault("inbox.queue_size", 1024)
	v.SetDefault("inbox.event_types_file", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "artemis:inbox:entries")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARTEMIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the file is optional, env vars and flags can suffice
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}

	return &cfg, nil
}

// GetConfig loads configuration from the default search paths
func GetConfig() (*Config, error) {
	return Load("")
}
