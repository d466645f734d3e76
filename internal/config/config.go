package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Env            string
	Port           string
	FEURL          string
	APIURL         string
	StaticDir      string
	RequestTimeout time.Duration
}

type DataBaseConfig struct {
	URL          string
	MaxOpenConns int
}

type RedisConfig struct {
	URI string
}

type AuthConfig struct {
	JWTSecret          string
	AdminEmails        []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type UploadConfig struct {
	Dir string
}

type Config struct {
	Server   ServerConfig
	Database DataBaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Email    EmailConfig
	Upload   UploadConfig
	IsDev    bool
}

var requiredEnvironmentVariables = []string{
	// server
	"ENV",
	"PORT",
	// database
	"DB_URL",
	// auth
	"JWT_SECRET",
}

func validateEnv() error {
	var missing []string
	for _, env := range requiredEnvironmentVariables {
		if os.Getenv(env) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// New loads the configuration and exits the process when it is incomplete.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	if err := validateEnv(); err != nil {
		return nil, err
	}

	emailPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	requestTimeout, err := durationEnv("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Env:            os.Getenv("ENV"),
			Port:           os.Getenv("PORT"),
			FEURL:          stringEnv("FE_URL", "http://localhost:3000"),
			APIURL:         stringEnv("API_URL", "http://localhost:"+os.Getenv("PORT")),
			StaticDir:      os.Getenv("STATIC_DIR"),
			RequestTimeout: requestTimeout,
		},
		Database: DataBaseConfig{
			URL:          os.Getenv("DB_URL"),
			MaxOpenConns: maxOpenConns,
		},
		Redis: RedisConfig{
			URI: stringEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Auth: AuthConfig{
			JWTSecret:          os.Getenv("JWT_SECRET"),
			AdminEmails:        splitList(os.Getenv("ADMIN_EMAILS")),
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		Email: EmailConfig{
			Host:     stringEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     emailPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     stringEnv("EMAIL_FROM", "no-reply@localhost"),
		},
		Upload: UploadConfig{
			Dir: stringEnv("UPLOAD_DIR", "./uploads"),
		},

		IsDev: os.Getenv("ENV") == "development",
	}, nil
}

// GoogleEnabled reports whether the Google sign-in flow is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Auth.GoogleClientID != "" && c.Auth.GoogleClientSecret != "" && c.Auth.GoogleRedirectURL != ""
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
