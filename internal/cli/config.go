package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the configuration of the configurine command.
type Config struct {
	// Base URL of the Configurine service.
	Host      string `mapstructure:"host" validate:"required,url"`
	ClientID  string `mapstructure:"client_id" validate:"required"`
	SharedKey string `mapstructure:"shared_key" validate:"required"`

	// debug, info, warn or error (default: warn).
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	// json or text (default: text).
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	// HTTP timeout of each request (default: 10s).
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

const envPrefix = "CONFIGURINE"

var configKeys = []string{"host", "client_id", "shared_key", "log_level", "log_format", "timeout"}

// LoadConfig reads the configuration from flags already bound to v, the
// CONFIGURINE_* environment and the optional config file, in that order of
// precedence.
func LoadConfig(v *viper.Viper, configFile string) (Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("timeout", 10*time.Second)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
