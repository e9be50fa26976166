package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting daosignd needs. The EIP-712 domain
// is not here: it is fixed by attestation.DefaultDomain, not configurable.
type Config struct {
	Redis  RedisConfig
	Log    LogConfig
	Server ServerConfig
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	_ = v.ReadInConfig()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"redis.addr":     "REDIS_ADDR",
		"redis.password": "REDIS_PASSWORD",
		"log.level":      "LOG_LEVEL",
		"server.port":    "PORT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("required config missing: REDIS_ADDR")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.Log.Level)
	}
	return nil
}
