package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream  UpstreamConfig
	Redis     RedisConfig
	Reference ReferenceConfig
	CORS      CORSConfig
	Log       LogConfig
	Downloads DownloadConfig
	Imports   ImportConfig
	Admin     AdminConfig
	Docs      DocsConfig
	Metrics   MetricsConfig
}

// UpstreamConfig locates the convocation service and bounds each call type.
type UpstreamConfig struct {
	BaseURL         string
	Timeout         time.Duration
	GenerateTimeout time.Duration
	DownloadTimeout time.Duration
	EmailTimeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ReferenceConfig governs caching of the lookup collections.
type ReferenceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DownloadConfig controls where fetched archives land on disk.
type DownloadConfig struct {
	Dir string
}

// ImportConfig tunes the candidate preview.
type ImportConfig struct {
	PreviewLimit int
}

// AdminConfig gates the reference-data administration endpoints.
type AdminConfig struct {
	AuthEnabled bool
	JWTSecret   string
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL:         strings.TrimRight(strings.TrimSpace(v.GetString("UPSTREAM_BASE_URL")), "/"),
		Timeout:         parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 30*time.Second),
		GenerateTimeout: parseDuration(v.GetString("UPSTREAM_GENERATE_TIMEOUT"), 5*time.Minute),
		DownloadTimeout: parseDuration(v.GetString("UPSTREAM_DOWNLOAD_TIMEOUT"), 2*time.Minute),
		EmailTimeout:    parseDuration(v.GetString("UPSTREAM_EMAIL_TIMEOUT"), 2*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Reference = ReferenceConfig{
		CacheEnabled: v.GetBool("ENABLE_REFDATA_CACHE"),
		CacheTTL:     parseDuration(v.GetString("REFDATA_CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Downloads = DownloadConfig{Dir: v.GetString("DOWNLOAD_DIR")}

	previewLimit := v.GetInt("IMPORT_PREVIEW_LIMIT")
	if previewLimit <= 0 {
		previewLimit = 40
	}
	cfg.Imports = ImportConfig{PreviewLimit: previewLimit}

	cfg.Admin = AdminConfig{
		AuthEnabled: v.GetBool("ENABLE_ADMIN_AUTH"),
		JWTSecret:   v.GetString("JWT_SECRET"),
	}

	cfg.Docs = DocsConfig{Enabled: v.GetBool("ENABLE_DOCS")}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8081/api")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("UPSTREAM_GENERATE_TIMEOUT", "5m")
	v.SetDefault("UPSTREAM_DOWNLOAD_TIMEOUT", "2m")
	v.SetDefault("UPSTREAM_EMAIL_TIMEOUT", "2m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_REFDATA_CACHE", false)
	v.SetDefault("REFDATA_CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOWNLOAD_DIR", "./downloads")
	v.SetDefault("IMPORT_PREVIEW_LIMIT", 40)

	v.SetDefault("ENABLE_ADMIN_AUTH", false)
	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ENABLE_DOCS", true)
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
