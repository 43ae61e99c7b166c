// Package platform provides configuration for the dispute platform.
package platform

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete platform configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	Chatbot  ChatbotConfig  `yaml:"chatbot"`
	Dispute  DisputeConfig  `yaml:"dispute"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Name            string        `yaml:"name"`
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// RedisConfig configures the optional Redis conversation store.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig configures token issuance and verification.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// MailConfig configures outbound email.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	BankName string `yaml:"bank_name"`
	Helpline string `yaml:"helpline"`
}

// ChatbotConfig configures the dispute chatbot.
type ChatbotConfig struct {
	// SessionTTL is how long an idle conversation survives before eviction.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// CleanupInterval is how often expired conversations are swept.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DisputeConfig configures the dispute workflow.
type DisputeConfig struct {
	// RefundDelay is the delay before a failed-transaction dispute is
	// auto-approved and the refund notice is sent.
	RefundDelay time.Duration `yaml:"refund_delay"`
}

// LoadConfig reads and parses the YAML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration populated from defaults and
// environment variables. Used when no config file is supplied.
func DefaultConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{
			DSN:         os.Getenv("DATABASE_URL"),
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
	}
	applyDefaults(cfg)
	return cfg
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "dispute-platform"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 8 * time.Hour
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.BankName == "" {
		cfg.Mail.BankName = "Brillian Bank"
	}
	if cfg.Chatbot.SessionTTL == 0 {
		cfg.Chatbot.SessionTTL = 30 * time.Minute
	}
	if cfg.Chatbot.CleanupInterval == 0 {
		cfg.Chatbot.CleanupInterval = 5 * time.Minute
	}
	if cfg.Dispute.RefundDelay == 0 {
		cfg.Dispute.RefundDelay = 20 * time.Second
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	return nil
}
