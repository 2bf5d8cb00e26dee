package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "change-me-in-production"

type Config struct {
	App struct {
		ENV  string
		Name string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host        string
		Port        string
		CORSOrigins []string
	}

	Auth struct {
		JWTSecret string
	}

	Tracing struct {
		Enabled      bool
		Exporter     string
		OTLPEndpoint string
		SampleRatio  float64
	}
}

// New loads configuration from the environment (and an optional .env file).
// Missing keys fall back to development defaults.
func New() *Config {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}

	// App
	cfg.App.ENV = v.GetString("APP_ENV")
	cfg.App.Name = v.GetString("APP_NAME")

	// Logger
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.Component = v.GetString("LOG_COMPONENT")
	cfg.Log.Source = isTruthy(v.GetString("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.DSN = v.GetString("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	// gRPC
	cfg.GRPC.Host = v.GetString("GRPC_HOST")
	cfg.GRPC.Port = v.GetString("GRPC_PORT")

	// HTTP
	cfg.HTTP.Host = v.GetString("HTTP_HOST")
	cfg.HTTP.Port = v.GetString("HTTP_PORT")
	cfg.HTTP.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	// Auth
	cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")

	// Tracing
	cfg.Tracing.Enabled = isTruthy(v.GetString("TRACING_ENABLED"))
	cfg.Tracing.Exporter = v.GetString("TRACING_EXPORTER")
	cfg.Tracing.OTLPEndpoint = v.GetString("OTLP_ENDPOINT")
	cfg.Tracing.SampleRatio = v.GetFloat64("TRACING_SAMPLE_RATIO")

	return cfg
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTP.Port == "" {
		return errors.New("HTTP_PORT is required")
	}
	if c.GRPC.Port == "" {
		return errors.New("GRPC_PORT is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default value in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.App.ENV)
	return env == "production" || env == "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "blinder")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_COMPONENT", "blinder")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "blinder")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GRPC_HOST", "127.0.0.1")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("JWT_SECRET", DefaultJWTSecret)

	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "postgres":
		port := cfg.DB.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	case "sqlite":
		return cfg.DB.Name + ".db"
	default:
		port := cfg.DB.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, port, cfg.DB.Name,
		)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
