package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64
	RateBurst int
}

type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

type CacheConfig struct {
	DayTTL   time.Duration
	MonthTTL time.Duration
	UserTTL  time.Duration
}

type SessionConfig struct {
	Timeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type StateConfig struct {
	FilePath   string
	Passphrase string
}

type AppConfig struct {
	Environment string
	API         APIConfig
	Retry       RetryConfig
	Cache       CacheConfig
	Session     SessionConfig
	Redis       RedisConfig
	State       StateConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.classbook")

	v.SetEnvPrefix("CLASSBOOK")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.baseurl", "http://localhost:3000")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.useragent", "classbook-client/1.0")
	v.SetDefault("api.ratelimit", 10.0)
	v.SetDefault("api.rateburst", 20)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.basedelay", "1s")

	v.SetDefault("cache.dayttl", "5m")
	v.SetDefault("cache.monthttl", "10m")
	v.SetDefault("cache.userttl", "5m")

	v.SetDefault("session.timeout", "24h")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "classbook")

	v.SetDefault("state.filepath", "classbook-state.bin")
	v.SetDefault("state.passphrase", "")
}
