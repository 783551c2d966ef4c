package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Coach providers.
const (
	ProviderNone   = "none"
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// DefaultConversationRetention is how long idle coach conversations are kept.
const DefaultConversationRetention = 30 * 24 * time.Hour

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Coach     CoachConfig     `yaml:"coach"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	WebDir    string `yaml:"web_dir"`
	PublicURL string `yaml:"public_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig protects the server. APIKey guards machine-to-machine routes;
// Issuer and Audience enable ID-token verification against the identity
// provider's JWKS.
type AuthConfig struct {
	APIKey   string `yaml:"api_key"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// CoachConfig selects the language model used for conversations, workout
// generation and transcription.
type CoachConfig struct {
	Provider                string        `yaml:"provider"`
	Endpoint                string        `yaml:"endpoint"`
	APIKey                  string        `yaml:"api_key"`
	ChatDeployment          string        `yaml:"chat_deployment"`
	TranscriptionDeployment string        `yaml:"transcription_deployment"`
	ConversationRetention   time.Duration `yaml:"conversation_retention"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file in the working directory, if present, is loaded into the
// environment first without replacing variables that are already set.
// Env vars use the prefix FITCOACH_ and underscore-separated paths:
//
//	FITCOACH_SERVER_HOST, FITCOACH_SERVER_PORT, FITCOACH_SERVER_WEB_DIR,
//	FITCOACH_SERVER_PUBLIC_URL,
//	FITCOACH_DB_HOST, FITCOACH_DB_PORT, FITCOACH_DB_NAME,
//	FITCOACH_DB_USER, FITCOACH_DB_PASSWORD, FITCOACH_DB_SSLMODE,
//	FITCOACH_AUTH_API_KEY, FITCOACH_AUTH_ISSUER, FITCOACH_AUTH_AUDIENCE,
//	FITCOACH_COACH_PROVIDER, FITCOACH_COACH_ENDPOINT, FITCOACH_COACH_API_KEY,
//	FITCOACH_COACH_CHAT_DEPLOYMENT, FITCOACH_COACH_TRANSCRIPTION_DEPLOYMENT
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "FITCOACH_SERVER_HOST")
	setInt(&cfg.Server.Port, "FITCOACH_SERVER_PORT")
	setString(&cfg.Server.WebDir, "FITCOACH_SERVER_WEB_DIR")
	setString(&cfg.Server.PublicURL, "FITCOACH_SERVER_PUBLIC_URL")

	setString(&cfg.Database.Host, "FITCOACH_DB_HOST")
	setInt(&cfg.Database.Port, "FITCOACH_DB_PORT")
	setString(&cfg.Database.Name, "FITCOACH_DB_NAME")
	setString(&cfg.Database.User, "FITCOACH_DB_USER")
	setString(&cfg.Database.Password, "FITCOACH_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "FITCOACH_DB_SSLMODE")

	setString(&cfg.Auth.APIKey, "FITCOACH_AUTH_API_KEY")
	setString(&cfg.Auth.Issuer, "FITCOACH_AUTH_ISSUER")
	setString(&cfg.Auth.Audience, "FITCOACH_AUTH_AUDIENCE")

	setString(&cfg.Coach.Provider, "FITCOACH_COACH_PROVIDER")
	setString(&cfg.Coach.Endpoint, "FITCOACH_COACH_ENDPOINT")
	setString(&cfg.Coach.APIKey, "FITCOACH_COACH_API_KEY")
	setString(&cfg.Coach.ChatDeployment, "FITCOACH_COACH_CHAT_DEPLOYMENT")
	setString(&cfg.Coach.TranscriptionDeployment, "FITCOACH_COACH_TRANSCRIPTION_DEPLOYMENT")
}

func (c *Config) applyDefaults() {
	if c.Server.PublicURL == "" {
		host := c.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		c.Server.PublicURL = fmt.Sprintf("http://%s:%d", host, c.Server.Port)
	}
	if c.Coach.Provider == "" {
		c.Coach.Provider = ProviderNone
	}
	if c.Coach.ConversationRetention == 0 {
		c.Coach.ConversationRetention = DefaultConversationRetention
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "fitcoach"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Auth.Audience != "" && c.Auth.Issuer == "" {
		return fmt.Errorf("auth.issuer is required when auth.audience is set")
	}

	switch c.Coach.Provider {
	case ProviderNone:
	case ProviderAzure:
		if c.Coach.Endpoint == "" {
			return fmt.Errorf("coach.endpoint is required for provider %q", c.Coach.Provider)
		}
		if c.Coach.ChatDeployment == "" {
			return fmt.Errorf("coach.chat_deployment is required for provider %q", c.Coach.Provider)
		}
		fallthrough
	case ProviderOpenAI:
		if c.Coach.APIKey == "" {
			return fmt.Errorf("coach.api_key is required for provider %q", c.Coach.Provider)
		}
	default:
		return fmt.Errorf("coach.provider %q is not one of none, azure, openai", c.Coach.Provider)
	}
	if c.Coach.ConversationRetention < 0 {
		return fmt.Errorf("coach.conversation_retention must be positive")
	}
	return nil
}
