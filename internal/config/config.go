package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	ContentBackendSanity = "sanity"
	ContentBackendMySQL  = "mysql"
	ContentBackendSeed   = "seed"
)

var (
	ErrInvalidPort           = errors.New("server port must be between 1 and 65535")
	ErrInvalidContentBackend = errors.New("content backend must be one of sanity, mysql, seed")
	ErrMissingSanityProject  = errors.New("sanity backend requires SANITY_PROJECT_ID and SANITY_DATASET")
	ErrInvalidCartTTL        = errors.New("cart TTL must be positive")
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Content    ContentConfig
	Sanity     SanityConfig
	SendGrid   SendGridConfig
	CustomerIO CustomerIOConfig
	Auth       AuthConfig
	Cart       CartConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ContentConfig struct {
	Backend    string
	SeedSecret string
}

type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	ReadToken  string
	WriteToken string
	UseCDN     bool
	Timeout    time.Duration
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Host      string
}

type CustomerIOConfig struct {
	AppAPIKey string
	BaseURL   string
}

type AuthConfig struct {
	SessionURL string
	CookieName string
	Timeout    time.Duration
}

type CartConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

type LogConfig struct {
	Level string
}

// Load reads configuration from the environment, optionally layered over a
// YAML file. Environment variables always win.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "repairflow")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "repairflow")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CONTENT_BACKEND", ContentBackendSeed)
	v.SetDefault("SANITY_API_VERSION", "2023-05-03")
	v.SetDefault("SANITY_USE_CDN", false)
	v.SetDefault("CMS_TIMEOUT", "5s")
	v.SetDefault("SENDGRID_HOST", "https://api.sendgrid.com")
	v.SetDefault("SENDGRID_FROM_NAME", "Repairflow")
	v.SetDefault("CUSTOMERIO_BASE_URL", "https://api.customer.io")
	v.SetDefault("AUTH_COOKIE_NAME", "next-auth.session-token")
	v.SetDefault("AUTH_TIMEOUT", "3s")
	v.SetDefault("CART_KEY_PREFIX", "repairflow")
	v.SetDefault("CART_TTL", "72h")
	v.SetDefault("LOG_LEVEL", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{"SERVER_SHUTDOWN_TIMEOUT", "DB_CONN_MAX_LIFETIME", "CMS_TIMEOUT", "AUTH_TIMEOUT", "CART_TTL"} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: durations["SERVER_SHUTDOWN_TIMEOUT"],
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Content: ContentConfig{
			Backend:    v.GetString("CONTENT_BACKEND"),
			SeedSecret: v.GetString("SEED_SECRET"),
		},
		Sanity: SanityConfig{
			ProjectID:  v.GetString("SANITY_PROJECT_ID"),
			Dataset:    v.GetString("SANITY_DATASET"),
			APIVersion: v.GetString("SANITY_API_VERSION"),
			ReadToken:  v.GetString("SANITY_READ_TOKEN"),
			WriteToken: v.GetString("SANITY_WRITE_TOKEN"),
			UseCDN:     v.GetBool("SANITY_USE_CDN"),
			Timeout:    durations["CMS_TIMEOUT"],
		},
		SendGrid: SendGridConfig{
			APIKey:    v.GetString("SENDGRID_API_KEY"),
			FromEmail: v.GetString("SENDGRID_FROM_EMAIL"),
			FromName:  v.GetString("SENDGRID_FROM_NAME"),
			Host:      v.GetString("SENDGRID_HOST"),
		},
		CustomerIO: CustomerIOConfig{
			AppAPIKey: v.GetString("CUSTOMERIO_APP_API_KEY"),
			BaseURL:   v.GetString("CUSTOMERIO_BASE_URL"),
		},
		Auth: AuthConfig{
			SessionURL: v.GetString("AUTH_SESSION_URL"),
			CookieName: v.GetString("AUTH_COOKIE_NAME"),
			Timeout:    durations["AUTH_TIMEOUT"],
		},
		Cart: CartConfig{
			KeyPrefix: v.GetString("CART_KEY_PREFIX"),
			TTL:       durations["CART_TTL"],
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings the server cannot start without. Provider
// credentials are not checked here: a missing email key surfaces per request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	switch c.Content.Backend {
	case ContentBackendSanity:
		if c.Sanity.ProjectID == "" || c.Sanity.Dataset == "" {
			return ErrMissingSanityProject
		}
	case ContentBackendMySQL, ContentBackendSeed:
	default:
		return ErrInvalidContentBackend
	}
	if c.Cart.TTL <= 0 {
		return ErrInvalidCartTTL
	}
	return nil
}
