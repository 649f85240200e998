package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	HTTP     HTTPConfig     `toml:"http"`
	LLM      LLMConfig      `toml:"llm"`
	MySQL    MySQLConfig    `toml:"mysql"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Session  SessionConfig  `toml:"session"`
	Storage  StorageConfig  `toml:"storage"`
	Upload   UploadConfig   `toml:"upload"`
	OCR      OCRConfig      `toml:"ocr"`
	Log      LogConfig      `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type HTTPConfig struct {
	CORSOrigins []string `toml:"cors_origins"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig configures the exchange audit queue. An empty URL disables it.
type RabbitMQConfig struct {
	URL           string `toml:"url"`
	ExchangeQueue string `toml:"exchange_queue"`
}

type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SessionConfig struct {
	Backend   string `toml:"backend"`
	KeyPrefix string `toml:"key_prefix"`
}

type StorageConfig struct {
	Backend   string `toml:"backend"`
	LocalDir  string `toml:"local_dir"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PathStyle bool   `toml:"path_style"`
}

type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

type OCRConfig struct {
	Enabled       bool   `toml:"enabled"`
	TesseractPath string `toml:"tesseract_path"`
	PdftoppmPath  string `toml:"pdftoppm_path"`
	Language      string `toml:"language"`
	DPI           int    `toml:"dpi"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Load() (*Config, error) {
	// .env is optional; real environment variables still win.
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	switch c.Storage.Backend {
	case StorageBackendLocal:
		if strings.TrimSpace(c.Storage.LocalDir) == "" {
			return fmt.Errorf("storage.local_dir required for local backend")
		}
	case StorageBackendS3:
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return fmt.Errorf("storage.bucket required for s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "pdfqa",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8000,
			GinMode: "debug",
		},
		HTTP: HTTPConfig{
			CORSOrigins: []string{"http://localhost:3000"},
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKey:         "",
			Model:          "gpt-3.5-turbo",
			TimeoutSeconds: 120,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "pdfqa",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		RabbitMQ: RabbitMQConfig{
			URL:           "",
			ExchangeQueue: "qa.exchange.persist",
		},
		Session: SessionConfig{
			Backend:   SessionBackendMemory,
			KeyPrefix: "qa:session:",
		},
		Storage: StorageConfig{
			Backend:  StorageBackendLocal,
			LocalDir: "data/uploads",
			Region:   "eu-north-1",
		},
		Upload: UploadConfig{
			MaxBytes: 20 << 20,
		},
		OCR: OCRConfig{
			Enabled:       true,
			TesseractPath: "tesseract",
			PdftoppmPath:  "pdftoppm",
			Language:      "eng",
			DPI:           200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.HTTP.CORSOrigins = getEnvAsList("HTTP_CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ExchangeQueue = getEnv("RABBITMQ_EXCHANGE_QUEUE", cfg.RabbitMQ.ExchangeQueue)

	cfg.Session.Backend = getEnv("SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.KeyPrefix = getEnv("SESSION_KEY_PREFIX", cfg.Session.KeyPrefix)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.LocalDir = getEnv("STORAGE_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.Bucket = getEnv("S3_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = getEnv("S3_REGION", cfg.Storage.Region)
	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.PathStyle = getEnvAsBool("S3_PATH_STYLE", cfg.Storage.PathStyle)

	cfg.Upload.MaxBytes = int64(getEnvAsInt("UPLOAD_MAX_BYTES", int(cfg.Upload.MaxBytes)))

	cfg.OCR.Enabled = getEnvAsBool("OCR_ENABLED", cfg.OCR.Enabled)
	cfg.OCR.TesseractPath = getEnv("OCR_TESSERACT_PATH", cfg.OCR.TesseractPath)
	cfg.OCR.PdftoppmPath = getEnv("OCR_PDFTOPPM_PATH", cfg.OCR.PdftoppmPath)
	cfg.OCR.Language = getEnv("OCR_LANGUAGE", cfg.OCR.Language)
	cfg.OCR.DPI = getEnvAsInt("OCR_DPI", cfg.OCR.DPI)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
