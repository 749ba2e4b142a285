package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	Worker   WorkerConfig   `mapstructure:"worker"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Compiler CompilerConfig `mapstructure:"compiler"`
}

// WorkerConfig contains task-processing and ops endpoint settings.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	OpsPort     int `mapstructure:"ops_port"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port for go-redis and asynq.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AssetsConfig selects where theme CSS sections and published stylesheets live.
// Driver "fs" writes under Root on local disk, "minio" writes to the MinIO bucket.
type AssetsConfig struct {
	Driver        string `mapstructure:"driver"`
	Root          string `mapstructure:"root"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	BlueprintDir  string `mapstructure:"blueprint_dir"`
}

// CompilerConfig tunes token resolution and responsive CSS output.
type CompilerConfig struct {
	MaxAliasDepth int `mapstructure:"max_alias_depth"`
	TabletPx      int `mapstructure:"tablet_px"`
	DesktopPx     int `mapstructure:"desktop_px"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.ops_port", 9090)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "cms")
	v.SetDefault("database.user", "cms")
	v.SetDefault("database.password", "cms")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "public")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("assets.driver", "fs")
	v.SetDefault("assets.root", "./public")
	v.SetDefault("assets.public_base_url", "/")
	v.SetDefault("assets.blueprint_dir", "./themes")
	v.SetDefault("compiler.max_alias_depth", 10)
	v.SetDefault("compiler.tablet_px", 768)
	v.SetDefault("compiler.desktop_px", 1024)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"worker.concurrency":       "WORKER_CONCURRENCY",
		"worker.ops_port":          "WORKER_OPS_PORT",
		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.name":            "POSTGRES_DB",
		"database.user":            "POSTGRES_USER",
		"database.password":        "POSTGRES_PASSWORD",
		"database.sslmode":         "DATABASE_SSLMODE",
		"redis.host":               "REDIS_HOST",
		"redis.port":               "REDIS_PORT",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.region":             "MINIO_REGION",
		"minio.bucket_lookup":      "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"assets.driver":            "ASSETS_DRIVER",
		"assets.root":              "ASSETS_ROOT",
		"assets.public_base_url":   "ASSETS_PUBLIC_BASE_URL",
		"assets.blueprint_dir":     "THEME_BLUEPRINT_DIR",
		"compiler.max_alias_depth": "COMPILER_MAX_ALIAS_DEPTH",
		"compiler.tablet_px":       "COMPILER_TABLET_PX",
		"compiler.desktop_px":      "COMPILER_DESKTOP_PX",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	if cfg.Worker.OpsPort <= 0 {
		return errors.New("worker ops port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Assets.Driver)) {
	case "fs":
		if cfg.Assets.Root == "" {
			return errors.New("assets root is required for fs driver")
		}
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unsupported assets driver %q", cfg.Assets.Driver)
	}

	if cfg.Compiler.MaxAliasDepth <= 0 {
		return errors.New("compiler max alias depth must be positive")
	}
	if cfg.Compiler.TabletPx <= 0 || cfg.Compiler.DesktopPx <= cfg.Compiler.TabletPx {
		return errors.New("compiler breakpoints must be positive and ascending")
	}
	return nil
}
