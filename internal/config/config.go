package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Examiner ExaminerConfig `mapstructure:"examiner" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// AIRequestsPerMinute limits calls to the AI chat proxy per user.
	AIRequestsPerMinute int `mapstructure:"ai_requests_per_minute" validate:"gte=1,lte=600"`
	AIBurst             int `mapstructure:"ai_burst"               validate:"gte=1,lte=100"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=525600,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider           string `mapstructure:"provider"             validate:"required,oneof=gemini anthropic none"`
	GeminiAPIKey       string `mapstructure:"gemini_api_key"       validate:"required_if=Provider gemini"`
	AnthropicAPIKey    string `mapstructure:"anthropic_api_key"    validate:"required_if=Provider anthropic"`
	ModelName          string `mapstructure:"model_name"`
	MaxTokens          int    `mapstructure:"max_tokens"           validate:"gte=64,lte=32768"`
	MaxRetries         int    `mapstructure:"max_retries"          validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds"  validate:"gte=1,lte=60"`
	MaxConcurrentCalls int    `mapstructure:"max_concurrent_calls" validate:"gte=1,lte=64"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"      validate:"gte=1,lte=300"`
}

// ExaminerConfig tunes the rule-based examiner.
type ExaminerConfig struct {
	TurnsPerPhase  int    `mapstructure:"turns_per_phase"  validate:"gte=1,lte=10"`
	MaxDrills      int    `mapstructure:"max_drills"       validate:"gte=0,lte=20"`
	CaseLibraryDir string `mapstructure:"case_library_dir" validate:"omitempty,dir"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"gte=1,lte=64"`
	QueueSize           int `mapstructure:"queue_size"             validate:"gte=1,lte=10000"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"gte=1"`
	MaxAttempts         int `mapstructure:"max_attempts"           validate:"gte=1,lte=10"`
	RetryDelaySeconds   int `mapstructure:"retry_delay_seconds"    validate:"gte=1,lte=600"`
	// DebriefGraceSeconds is how long a finished session may wait for its
	// background debrief before a feedback request builds it inline.
	DebriefGraceSeconds int `mapstructure:"debrief_grace_seconds" validate:"gte=1"`
}
