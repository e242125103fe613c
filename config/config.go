package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// MaxInlineResults is the Bot API cap on results per inline answer.
const MaxInlineResults = 50

type (
	// Config -.
	Config struct {
		App    `yaml:"app"`
		Bot    `yaml:"bot"`
		Inline `yaml:"inline"`
		DB     `yaml:"db"`
		Log    `yaml:"logger"`
		HTTP   `yaml:"http"`
		OTEL   `yaml:"otel"`
		S3     `yaml:"s3"`
		Backup `yaml:"backup"`
		RMQ    `yaml:"rabbitmq"`
		MYSQL  `yaml:"mysql"`
		Audio  `yaml:"audio"`
	}

	// App -.
	App struct {
		Name    string `env-default:"voice-relay" yaml:"name"    env:"APP_NAME"`
		Version string `env-default:"dev"         yaml:"version" env:"APP_VERSION"`
	}

	// Bot -.
	Bot struct {
		Token       string `yaml:"token"        env:"BOT_TOKEN"`
		AdminID     int64  `yaml:"admin_id"     env:"ADMIN_ID"`
		Debug       bool   `env-default:"false" yaml:"debug"        env:"BOT_DEBUG"`
		PollTimeout int    `env-default:"60"    yaml:"poll_timeout" env:"BOT_POLL_TIMEOUT"`
	}

	// Inline -.
	Inline struct {
		Limit     int `env-default:"50" yaml:"limit"      env:"INLINE_LIMIT"`
		CacheTime int `env-default:"0"  yaml:"cache_time" env:"INLINE_CACHE_TIME"`
	}

	// DB -.
	DB struct {
		Path        string `env-default:"database/voices.db" yaml:"path"        env:"DB_PATH"`
		Bucket      string `env-default:"voices"             yaml:"bucket"      env:"DB_BUCKET"`
		Compression bool   `env-default:"true"               yaml:"compression" env:"DB_COMPRESSION"`
	}

	// Log -.
	Log struct {
		Level string `env-default:"info" yaml:"log_level" env:"LOG_LEVEL"`
	}

	// HTTP -.
	HTTP struct {
		Port     string `yaml:"port"      env:"HTTP_PORT"`
		APIToken string `yaml:"api_token" env:"HTTP_API_TOKEN"`
	}

	// OTEL -.
	OTEL struct {
		Exporter string `env-default:"none" yaml:"exporter" env:"OTEL_EXPORTER"`
		Endpoint string `yaml:"endpoint" env:"OTEL_ENDPOINT"`
	}

	// S3 -.
	S3 struct {
		Endpoint  string `yaml:"endpoint"   env:"S3_ENDPOINT"`
		Region    string `env-default:"us-east-1" yaml:"region" env:"S3_REGION"`
		AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
		SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
		Bucket    string `yaml:"bucket"     env:"S3_BUCKET"`
		Prefix    string `env-default:"backups/" yaml:"prefix" env:"S3_PREFIX"`
	}

	// Backup -.
	Backup struct {
		Format string `env-default:"tar.gz" yaml:"format" env:"BACKUP_FORMAT"`
	}

	// RMQ -.
	RMQ struct {
		URL      string `yaml:"url" env:"RMQ_URL"`
		Exchange string `env-default:"voice_relay"   yaml:"exchange" env:"RMQ_EXCHANGE"`
		Queue    string `env-default:"voice_catalog" yaml:"queue"    env:"RMQ_QUEUE"`
	}

	// MYSQL -.
	MYSQL struct {
		Host     string `yaml:"host"     env:"MYSQL_HOST"`
		Port     string `env-default:"3306" yaml:"port" env:"MYSQL_PORT"`
		Username string `yaml:"username" env:"MYSQL_USERNAME"`
		Password string `yaml:"password" env:"MYSQL_PASSWORD"`
		Dbname   string `yaml:"dbname"   env:"MYSQL_DBNAME"`
	}

	// Audio -.
	Audio struct {
		FFmpegEnabled bool `env-default:"false" yaml:"ffmpeg_enabled" env:"FFMPEG_ENABLED"`
	}
)

// NewConfig returns app config.
// A .env file in the working directory is loaded first when present. When
// CONFIG_PATH names a YAML file it is read and environment variables override it.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg := &Config{}

	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// Normalize clamps limits and canonicalises free-form values.
func (c *Config) Normalize() {
	if c.Inline.Limit <= 0 || c.Inline.Limit > MaxInlineResults {
		c.Inline.Limit = MaxInlineResults
	}
	if c.Inline.CacheTime < 0 {
		c.Inline.CacheTime = 0
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.OTEL.Exporter = strings.ToLower(strings.TrimSpace(c.OTEL.Exporter))
	c.Backup.Format = strings.ToLower(strings.TrimSpace(c.Backup.Format))
	if c.S3.Prefix != "" && !strings.HasSuffix(c.S3.Prefix, "/") {
		c.S3.Prefix += "/"
	}
}

// Validate checks the settings shared by every process.
func (c *Config) Validate() error {
	switch c.OTEL.Exporter {
	case "", "none":
	case "otlp", "jaeger":
		if c.OTEL.Endpoint == "" {
			return fmt.Errorf("OTEL_ENDPOINT is required for exporter %q", c.OTEL.Exporter)
		}
	default:
		return fmt.Errorf("OTEL_EXPORTER must be none, otlp or jaeger")
	}

	switch c.Backup.Format {
	case "tar", "tar.gz":
	default:
		return fmt.Errorf("BACKUP_FORMAT must be tar or tar.gz")
	}

	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}

	return nil
}

// ValidateBot checks the settings the bot process needs on top of Validate.
func (c *Config) ValidateBot() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return fmt.Errorf("BOT_TOKEN is required by the bot")
	}
	if c.Bot.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required by the bot")
	}
	if c.Bot.PollTimeout < 0 {
		return fmt.Errorf("BOT_POLL_TIMEOUT must not be negative")
	}
	if c.DB.Path == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.DB.Bucket == "" {
		return fmt.Errorf("DB_BUCKET must not be empty")
	}
	return nil
}

// ValidateWorker checks the settings the catalog mirror worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	if c.RMQ.URL == "" {
		return fmt.Errorf("RMQ_URL is required by the worker")
	}
	if c.MYSQL.Host == "" || c.MYSQL.Username == "" || c.MYSQL.Dbname == "" {
		return fmt.Errorf("MYSQL_HOST, MYSQL_USERNAME and MYSQL_DBNAME are required by the worker")
	}
	return nil
}

// BackupsEnabled reports whether backups are uploaded to object storage.
func (c *Config) BackupsEnabled() bool {
	return c.S3.Bucket != ""
}

// EventsEnabled reports whether voice events are published to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RMQ.URL != ""
}
