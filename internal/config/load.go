package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces all environment variables read by Load.
const envPrefix = "VIVA"

// keys lists every configuration key so that environment variables are bound
// even when no config file mentions them.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.ai_requests_per_minute",
	"server.ai_burst",
	"database.url",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.refresh_token_lifetime_minutes",
	"auth.bcrypt_cost",
	"llm.provider",
	"llm.gemini_api_key",
	"llm.anthropic_api_key",
	"llm.model_name",
	"llm.max_tokens",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"llm.max_concurrent_calls",
	"llm.timeout_seconds",
	"examiner.turns_per_phase",
	"examiner.max_drills",
	"examiner.case_library_dir",
	"task.worker_count",
	"task.queue_size",
	"task.stuck_task_age_minutes",
	"task.max_attempts",
	"task.retry_delay_seconds",
	"task.debrief_grace_seconds",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.ai_requests_per_minute", 20)
	v.SetDefault("server.ai_burst", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.max_concurrent_calls", 4)
	v.SetDefault("llm.timeout_seconds", 60)

	v.SetDefault("examiner.turns_per_phase", 2)
	v.SetDefault("examiner.max_drills", 3)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
	v.SetDefault("task.max_attempts", 3)
	v.SetDefault("task.retry_delay_seconds", 5)
	v.SetDefault("task.debrief_grace_seconds", 60)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom behaves like Load but searches for config.yaml in dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
