package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. MISE_DATABASE_URL or MISE_LLM_GEMINI_API_KEY.
const EnvPrefix = "MISE"

// Load configuration from defaults, an optional config.yaml and environment
// variables, in increasing order of precedence.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load with a caller-supplied viper instance, used by tests to
// inject values without touching the process environment.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 10*time.Minute)

	v.SetDefault("llm.text_model", "gemini-2.0-flash")
	v.SetDefault("llm.image_model", "imagen-3.0-generate-002")

	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("scheduler.shutdown_timeout", 30*time.Second)
	v.SetDefault("scheduler.sweep_spec", "@every 1m")
	v.SetDefault("scheduler.image_delay", time.Second)
	v.SetDefault("scheduler.pairing_delay", 2*time.Second)
	v.SetDefault("scheduler.starch_image_delay", 10*time.Second)

	v.SetDefault("generation.max_attempts", 5)
	v.SetDefault("generation.retry_delay", 5*time.Second)
	v.SetDefault("generation.call_timeout", 30*time.Second)
}

// bindEnvs registers keys that have no default so AutomaticEnv picks them up
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"redis.addr",
		"redis.password",
		"llm.gemini_api_key",
		"storage.bucket",
		"storage.endpoint",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.public_base_url",
		"storage.use_path_style",
	} {
		_ = v.BindEnv(key)
	}
}
