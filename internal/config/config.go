package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage"    validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"  validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains the ops HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig configures the optional job execution lock.
// When Addr is empty, jobs run without a cross-process lock.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"       validate:"gte=0"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// Enabled reports whether a redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LLMConfig contains the generation backend settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	TextModel    string `mapstructure:"text_model"     validate:"required"`
	ImageModel   string `mapstructure:"image_model"    validate:"required"`
}

// StorageConfig describes the S3-compatible bucket generated images are written to.
type StorageConfig struct {
	Bucket          string `mapstructure:"bucket"            validate:"required"`
	Region          string `mapstructure:"region"            validate:"required"`
	Endpoint        string `mapstructure:"endpoint"          validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"   validate:"omitempty,url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// SchedulerConfig tunes the delayed job scheduler.
type SchedulerConfig struct {
	// ShutdownTimeout bounds how long Stop waits for in-flight jobs.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
	// SweepSpec is a robfig/cron spec for the persisted-job reconcile sweep.
	SweepSpec        string        `mapstructure:"sweep_spec"         validate:"required"`
	ImageDelay       time.Duration `mapstructure:"image_delay"`
	PairingDelay     time.Duration `mapstructure:"pairing_delay"`
	StarchImageDelay time.Duration `mapstructure:"starch_image_delay"`
}

// GenerationConfig controls retries against the external generation service.
type GenerationConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"required,gte=1"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"required"`
}
