package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
	Storage   StorageConfig   `yaml:"storage"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Email     EmailConfig     `yaml:"email"`
	Digest    DigestConfig    `yaml:"digest"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AIConfig struct {
	GeminiAPIKey      string `yaml:"gemini_api_key"`
	Model             string `yaml:"model"`
	// RequestsPerMinute paces AI calls; 0 takes the default, -1 disables pacing.
	RequestsPerMinute int    `yaml:"requests_per_minute" validate:"gte=-1"`
	RecommendCount    int    `yaml:"recommend_count" validate:"gte=1,lte=20"`
}

type CatalogueConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=file badger sqlite memory"`
	Path   string `yaml:"path"`
}

type YouTubeConfig struct {
	APIKey       string `yaml:"api_key"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenFile    string `yaml:"token_file"`
}

// Enabled reports whether any YouTube credentials are configured.
func (y YouTubeConfig) Enabled() bool {
	return y.APIKey != "" || (y.ClientID != "" && y.ClientSecret != "")
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port" validate:"gte=0,lte=65535"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromEmail  string `yaml:"from_email" validate:"omitempty,email"`
	ToEmail    string `yaml:"to_email" validate:"omitempty,email"`
}

type DigestConfig struct {
	Schedule string   `yaml:"schedule"`
	Queries  []string `yaml:"queries"`
}

type ServerConfig struct {
	ListenAddr         string   `yaml:"listen_addr"`
	HealthPort         int      `yaml:"health_port" validate:"gte=0,lte=65535"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Load reads .env, then CONFIG_FILE (default config.yaml). A missing config
// file is not an error; defaults and environment values are used instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	return LoadFile(configFile)
}

// LoadFile is Load for an explicit path.
func LoadFile(configFile string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	envFallback(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	envFallback(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	envFallback(&c.YouTube.ClientID, "GOOGLE_CLIENT_ID")
	envFallback(&c.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET")
	envFallback(&c.Email.Username, "EMAIL_USERNAME")
	envFallback(&c.Email.Password, "EMAIL_PASSWORD")
}

func (c *Config) applyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.RecommendCount == 0 {
		c.AI.RecommendCount = 8
	}
	if c.AI.RequestsPerMinute == 0 {
		c.AI.RequestsPerMinute = 30
	}
	if c.Catalogue.Path == "" {
		c.Catalogue.Path = "data/catalogue.csv"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" && c.Storage.Driver != "memory" {
		c.Storage.Path = "data"
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 0 18 * * 5" // Fridays at 6 PM
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 120
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

var validate = validator.New()

func (c *Config) validate() error {
	return validate.Struct(c)
}

// ValidateAI checks the credentials needed to reach the AI backend.
func (c *Config) ValidateAI() error {
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	return nil
}

// ValidateDigest checks what the scheduled digest needs on top of ValidateAI.
func (c *Config) ValidateDigest() error {
	if err := c.ValidateAI(); err != nil {
		return err
	}
	if len(c.Digest.Queries) == 0 {
		return fmt.Errorf("at least one digest query is required (digest.queries)")
	}
	if c.Email.SMTPServer == "" {
		return fmt.Errorf("SMTP server is required (email.smtp_server)")
	}
	if c.Email.Username == "" {
		return fmt.Errorf("Email username is required (set EMAIL_USERNAME or email.username)")
	}
	if c.Email.Password == "" {
		return fmt.Errorf("Email password is required (set EMAIL_PASSWORD or email.password)")
	}
	if c.Email.ToEmail == "" || c.Email.FromEmail == "" {
		return fmt.Errorf("email.from_email and email.to_email are required")
	}
	return nil
}

func envFallback(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}
