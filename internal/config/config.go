package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Generation GenerationConfig
	Pipeline   PipelineConfig
	Output     OutputConfig
	Email      EmailConfig
}

// GenerationProviderConfig holds settings for a single LLM generation provider.
type GenerationProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// GenerationConfig holds the primary provider and an optional fallback provider.
type GenerationConfig struct {
	Primary  GenerationProviderConfig `mapstructure:"primary"`
	Fallback GenerationProviderConfig `mapstructure:"fallback"`
}

// FallbackConfig returns the fallback provider config, or nil if not configured.
func (g *GenerationConfig) FallbackConfig() *GenerationProviderConfig {
	if g.Fallback.Provider != "" {
		return &g.Fallback
	}
	return nil
}

// PipelineConfig holds the chunking, batching, retry and verification knobs.
type PipelineConfig struct {
	ChunkMaxChars        int           `mapstructure:"chunk_max_chars"`
	BatchTokenBudget     int           `mapstructure:"batch_token_budget"`
	MaxOutputTokens      int           `mapstructure:"max_output_tokens"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	BackoffBase          time.Duration `mapstructure:"backoff_base"`
	InterBatchDelay      time.Duration `mapstructure:"inter_batch_delay"`
	AuditDocMaxChars     int           `mapstructure:"audit_doc_max_chars"`
	AuditMaxOutputTokens int           `mapstructure:"audit_max_output_tokens"`
	VerifyFailFast       bool          `mapstructure:"verify_fail_fast"`
	RulesPath            string        `mapstructure:"rules_path"`
}

// OutputConfig holds local artifact settings.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// EmailConfig holds run-notification delivery settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	NotifyAddress string `mapstructure:"notify_address"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DBConfig holds run-history database settings. An empty Driver disables persistence.
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Enabled reports whether run history should be persisted.
func (d *DBConfig) Enabled() bool {
	return d.Driver != ""
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds artifact publishing settings. An empty Bucket disables publishing.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Prefix        string `mapstructure:"prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings. Format is console, utc or plain; Level is
// info or debug.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MEDCHRON_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDCHRON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// DB defaults (disabled unless a driver is set)
	v.SetDefault("db.driver", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "medchron")
	v.SetDefault("db.password", "medchron_secret")
	v.SetDefault("db.name", "medchron_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)
	v.SetDefault("db.sqlite_path", "data/medchron.db")

	// S3 defaults (disabled unless a bucket is set)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "chronologies")
	v.SetDefault("s3.presign_expiry", 86400)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Generation defaults
	v.SetDefault("generation.primary.provider", "claude")
	v.SetDefault("generation.primary.api_key", "")
	v.SetDefault("generation.primary.model", "")
	v.SetDefault("generation.primary.base_url", "")
	v.SetDefault("generation.primary.timeout_secs", 300)
	v.SetDefault("generation.fallback.provider", "")
	v.SetDefault("generation.fallback.api_key", "")
	v.SetDefault("generation.fallback.model", "")
	v.SetDefault("generation.fallback.base_url", "")
	v.SetDefault("generation.fallback.timeout_secs", 300)

	// Pipeline defaults
	v.SetDefault("pipeline.chunk_max_chars", 100000)
	v.SetDefault("pipeline.batch_token_budget", 120000)
	v.SetDefault("pipeline.max_output_tokens", 16000)
	v.SetDefault("pipeline.max_attempts", 5)
	v.SetDefault("pipeline.backoff_base", "2s")
	v.SetDefault("pipeline.inter_batch_delay", "5s")
	v.SetDefault("pipeline.audit_doc_max_chars", 15000)
	v.SetDefault("pipeline.audit_max_output_tokens", 4096)
	v.SetDefault("pipeline.verify_fail_fast", false)
	v.SetDefault("pipeline.rules_path", ".claude/CLAUDE.md")

	// Output defaults
	v.SetDefault("output.dir", "data/output")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@medchron.local")
	v.SetDefault("email.from_name", "Medical Chronology")
	v.SetDefault("email.notify_address", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "MEDCHRON_SERVER_PORT",
		"server.read_timeout":              "MEDCHRON_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "MEDCHRON_SERVER_WRITE_TIMEOUT",
		"server.environment":               "MEDCHRON_SERVER_ENVIRONMENT",
		"server.cors_origins":              "MEDCHRON_SERVER_CORS_ORIGINS",
		"db.driver":                        "MEDCHRON_DB_DRIVER",
		"db.host":                          "MEDCHRON_DB_HOST",
		"db.port":                          "MEDCHRON_DB_PORT",
		"db.user":                          "MEDCHRON_DB_USER",
		"db.password":                      "MEDCHRON_DB_PASSWORD",
		"db.name":                          "MEDCHRON_DB_NAME",
		"db.sslmode":                       "MEDCHRON_DB_SSLMODE",
		"db.max_open":                      "MEDCHRON_DB_MAX_OPEN",
		"db.max_idle":                      "MEDCHRON_DB_MAX_IDLE",
		"db.sqlite_path":                   "MEDCHRON_DB_SQLITE_PATH",
		"s3.region":                        "MEDCHRON_S3_REGION",
		"s3.bucket":                        "MEDCHRON_S3_BUCKET",
		"s3.endpoint":                      "MEDCHRON_S3_ENDPOINT",
		"s3.access_key":                    "MEDCHRON_S3_ACCESS_KEY",
		"s3.secret_key":                    "MEDCHRON_S3_SECRET_KEY",
		"s3.prefix":                        "MEDCHRON_S3_PREFIX",
		"s3.presign_expiry":                "MEDCHRON_S3_PRESIGN_EXPIRY",
		"log.level":                        "MEDCHRON_LOG_LEVEL",
		"log.format":                       "MEDCHRON_LOG_FORMAT",
		"generation.primary.provider":      "MEDCHRON_GENERATION_PRIMARY_PROVIDER",
		"generation.primary.api_key":       "MEDCHRON_GENERATION_PRIMARY_API_KEY",
		"generation.primary.model":         "MEDCHRON_GENERATION_PRIMARY_MODEL",
		"generation.primary.base_url":      "MEDCHRON_GENERATION_PRIMARY_BASE_URL",
		"generation.primary.timeout_secs":  "MEDCHRON_GENERATION_PRIMARY_TIMEOUT_SECS",
		"generation.fallback.provider":     "MEDCHRON_GENERATION_FALLBACK_PROVIDER",
		"generation.fallback.api_key":      "MEDCHRON_GENERATION_FALLBACK_API_KEY",
		"generation.fallback.model":        "MEDCHRON_GENERATION_FALLBACK_MODEL",
		"generation.fallback.base_url":     "MEDCHRON_GENERATION_FALLBACK_BASE_URL",
		"generation.fallback.timeout_secs": "MEDCHRON_GENERATION_FALLBACK_TIMEOUT_SECS",
		"pipeline.chunk_max_chars":         "MEDCHRON_PIPELINE_CHUNK_MAX_CHARS",
		"pipeline.batch_token_budget":      "MEDCHRON_PIPELINE_BATCH_TOKEN_BUDGET",
		"pipeline.max_output_tokens":       "MEDCHRON_PIPELINE_MAX_OUTPUT_TOKENS",
		"pipeline.max_attempts":            "MEDCHRON_PIPELINE_MAX_ATTEMPTS",
		"pipeline.backoff_base":            "MEDCHRON_PIPELINE_BACKOFF_BASE",
		"pipeline.inter_batch_delay":       "MEDCHRON_PIPELINE_INTER_BATCH_DELAY",
		"pipeline.audit_doc_max_chars":     "MEDCHRON_PIPELINE_AUDIT_DOC_MAX_CHARS",
		"pipeline.audit_max_output_tokens": "MEDCHRON_PIPELINE_AUDIT_MAX_OUTPUT_TOKENS",
		"pipeline.verify_fail_fast":        "MEDCHRON_PIPELINE_VERIFY_FAIL_FAST",
		"pipeline.rules_path":              "MEDCHRON_PIPELINE_RULES_PATH",
		"output.dir":                       "MEDCHRON_OUTPUT_DIR",
		"email.provider":                   "MEDCHRON_EMAIL_PROVIDER",
		"email.region":                     "MEDCHRON_EMAIL_REGION",
		"email.from_address":               "MEDCHRON_EMAIL_FROM_ADDRESS",
		"email.from_name":                  "MEDCHRON_EMAIL_FROM_NAME",
		"email.notify_address":             "MEDCHRON_EMAIL_NOTIFY_ADDRESS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosted platforms set a PORT env var. Use it if MEDCHRON_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDCHRON_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		CORSOrigins:  splitList(v.GetString("server.cors_origins")),
	}
	cfg.DB = DBConfig{
		Driver:     v.GetString("db.driver"),
		Host:       v.GetString("db.host"),
		Port:       v.GetInt("db.port"),
		User:       v.GetString("db.user"),
		Password:   v.GetString("db.password"),
		Name:       v.GetString("db.name"),
		SSLMode:    v.GetString("db.sslmode"),
		MaxOpen:    v.GetInt("db.max_open"),
		MaxIdle:    v.GetInt("db.max_idle"),
		SQLitePath: v.GetString("db.sqlite_path"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		Prefix:        v.GetString("s3.prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Generation = GenerationConfig{
		Primary:  providerConfig(v, "generation.primary"),
		Fallback: providerConfig(v, "generation.fallback"),
	}
	cfg.Pipeline = PipelineConfig{
		ChunkMaxChars:        v.GetInt("pipeline.chunk_max_chars"),
		BatchTokenBudget:     v.GetInt("pipeline.batch_token_budget"),
		MaxOutputTokens:      v.GetInt("pipeline.max_output_tokens"),
		MaxAttempts:          v.GetInt("pipeline.max_attempts"),
		BackoffBase:          v.GetDuration("pipeline.backoff_base"),
		InterBatchDelay:      v.GetDuration("pipeline.inter_batch_delay"),
		AuditDocMaxChars:     v.GetInt("pipeline.audit_doc_max_chars"),
		AuditMaxOutputTokens: v.GetInt("pipeline.audit_max_output_tokens"),
		VerifyFailFast:       v.GetBool("pipeline.verify_fail_fast"),
		RulesPath:            v.GetString("pipeline.rules_path"),
	}
	cfg.Output = OutputConfig{
		Dir: v.GetString("output.dir"),
	}
	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		FromName:      v.GetString("email.from_name"),
		NotifyAddress: v.GetString("email.notify_address"),
	}

	if err := cfg.Pipeline.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) GenerationProviderConfig {
	return GenerationProviderConfig{
		Provider:    v.GetString(prefix + ".provider"),
		APIKey:      v.GetString(prefix + ".api_key"),
		Model:       v.GetString(prefix + ".model"),
		BaseURL:     v.GetString(prefix + ".base_url"),
		TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *PipelineConfig) validate() error {
	switch {
	case p.ChunkMaxChars <= 0:
		return fmt.Errorf("pipeline.chunk_max_chars must be positive, got %d", p.ChunkMaxChars)
	case p.BatchTokenBudget <= 0:
		return fmt.Errorf("pipeline.batch_token_budget must be positive, got %d", p.BatchTokenBudget)
	case p.MaxAttempts <= 0:
		return fmt.Errorf("pipeline.max_attempts must be positive, got %d", p.MaxAttempts)
	case p.MaxOutputTokens <= 0:
		return fmt.Errorf("pipeline.max_output_tokens must be positive, got %d", p.MaxOutputTokens)
	}
	return nil
}
