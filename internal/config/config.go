package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	DB     DBConfig
	Redis  RedisConfig
	S3     S3Config
	Log    LogConfig
	Export ExportConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// StoreConfig selects where the invoice collection is persisted.
type StoreConfig struct {
	Backend  string        `mapstructure:"backend"`
	Key      string        `mapstructure:"key"`
	FilePath string        `mapstructure:"file_path"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExportConfig holds document export settings.
type ExportConfig struct {
	PrintDelay     time.Duration `mapstructure:"print_delay"`
	Concurrency    int           `mapstructure:"concurrency"`
	ArchiveStorage string        `mapstructure:"archive_storage"`
	ArchiveDir     string        `mapstructure:"archive_dir"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	MaxSnapshotMB  int64         `mapstructure:"max_snapshot_mb"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the TMSBILL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TMSBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// Store defaults
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.key", "tms_billing_store")
	v.SetDefault("store.file_path", "data")
	v.SetDefault("store.lock_ttl", "10s")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tmsbilling")
	v.SetDefault("db.password", "tmsbilling_secret")
	v.SetDefault("db.name", "tmsbilling_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "tms-billing")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Export defaults
	v.SetDefault("export.print_delay", "300ms")
	v.SetDefault("export.concurrency", 2)
	v.SetDefault("export.archive_storage", "local")
	v.SetDefault("export.archive_dir", "exports")
	v.SetDefault("export.key_prefix", "invoices")
	v.SetDefault("export.max_snapshot_mb", 20)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "TMSBILL_SERVER_PORT",
		"server.read_timeout":    "TMSBILL_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "TMSBILL_SERVER_WRITE_TIMEOUT",
		"server.environment":     "TMSBILL_SERVER_ENVIRONMENT",
		"store.backend":          "TMSBILL_STORE_BACKEND",
		"store.key":              "TMSBILL_STORE_KEY",
		"store.file_path":        "TMSBILL_STORE_FILE_PATH",
		"store.lock_ttl":         "TMSBILL_STORE_LOCK_TTL",
		"db.host":                "TMSBILL_DB_HOST",
		"db.port":                "TMSBILL_DB_PORT",
		"db.user":                "TMSBILL_DB_USER",
		"db.password":            "TMSBILL_DB_PASSWORD",
		"db.name":                "TMSBILL_DB_NAME",
		"db.sslmode":             "TMSBILL_DB_SSLMODE",
		"db.max_open":            "TMSBILL_DB_MAX_OPEN",
		"db.max_idle":            "TMSBILL_DB_MAX_IDLE",
		"redis.addr":             "TMSBILL_REDIS_ADDR",
		"redis.password":         "TMSBILL_REDIS_PASSWORD",
		"redis.db":               "TMSBILL_REDIS_DB",
		"redis.pool_size":        "TMSBILL_REDIS_POOL_SIZE",
		"s3.region":              "TMSBILL_S3_REGION",
		"s3.bucket":              "TMSBILL_S3_BUCKET",
		"s3.endpoint":            "TMSBILL_S3_ENDPOINT",
		"s3.access_key":          "TMSBILL_S3_ACCESS_KEY",
		"s3.secret_key":          "TMSBILL_S3_SECRET_KEY",
		"s3.presign_expiry":      "TMSBILL_S3_PRESIGN_EXPIRY",
		"log.level":              "TMSBILL_LOG_LEVEL",
		"log.format":             "TMSBILL_LOG_FORMAT",
		"export.print_delay":     "TMSBILL_EXPORT_PRINT_DELAY",
		"export.concurrency":     "TMSBILL_EXPORT_CONCURRENCY",
		"export.archive_storage": "TMSBILL_EXPORT_ARCHIVE_STORAGE",
		"export.archive_dir":     "TMSBILL_EXPORT_ARCHIVE_DIR",
		"export.key_prefix":      "TMSBILL_EXPORT_KEY_PREFIX",
		"export.max_snapshot_mb": "TMSBILL_EXPORT_MAX_SNAPSHOT_MB",
		"cors.allowed_origins":   "TMSBILL_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TMSBILL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TMSBILL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Store = StoreConfig{
		Backend:  strings.ToLower(v.GetString("store.backend")),
		Key:      v.GetString("store.key"),
		FilePath: v.GetString("store.file_path"),
		LockTTL:  v.GetDuration("store.lock_ttl"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		PoolSize: v.GetInt("redis.pool_size"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Export = ExportConfig{
		PrintDelay:     v.GetDuration("export.print_delay"),
		Concurrency:    v.GetInt("export.concurrency"),
		ArchiveStorage: strings.ToLower(v.GetString("export.archive_storage")),
		ArchiveDir:     v.GetString("export.archive_dir"),
		KeyPrefix:      v.GetString("export.key_prefix"),
		MaxSnapshotMB:  v.GetInt64("export.max_snapshot_mb"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	switch cfg.Store.Backend {
	case BackendFile, BackendMemory, BackendPostgres, BackendRedis, BackendS3:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Export.Concurrency <= 0 {
		cfg.Export.Concurrency = 1
	}

	return cfg, nil
}
