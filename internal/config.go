package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/casedesk/internal/seed"
)

// Revocation backends.
const (
	RevocationMemory = "memory"
	RevocationRedis  = "redis"
)

const minSecretLength = 16

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Auth        AuthConfig        `yaml:"auth"`
	Revocation  RevocationConfig  `yaml:"revocation"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Events      EventsConfig      `yaml:"events"`
	Seed        SeedConfig        `yaml:"seed"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Revocation.Validate(); err != nil {
		return err
	}
	return c.Attachments.Validate()
}

// Redacted returns a copy with secrets masked, safe to print.
func (c Config) Redacted() *Config {
	const mask = "********"
	if c.Auth.JWTSecret != "" {
		c.Auth.JWTSecret = mask
	}
	if c.Revocation.RedisURL != "" {
		c.Revocation.RedisURL = mask
	}
	c.Seed.Admin.Password = mask
	c.Seed.General.Password = mask
	return &c
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds access token configuration.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret,
			validation.Required.Error("auth: jwt_secret is required"),
			validation.RuneLength(minSecretLength, 0).Error(fmt.Sprintf("auth: jwt_secret must be at least %d characters", minSecretLength)),
		),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Minute)),
	)
}

// RevocationConfig selects where revoked token ids are kept.
//
// Backend is one of:
//   - "memory" (default): per-process map, lost on restart.
//   - "redis": shared store at RedisURL, survives restarts and scales out.
type RevocationConfig struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
}

// Validate validates the revocation configuration.
func (c *RevocationConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = RevocationMemory
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(RevocationMemory, RevocationRedis)),
		validation.Field(&c.RedisURL, is.RequestURL),
	); err != nil {
		return err
	}
	if c.Backend == RevocationRedis && c.RedisURL == "" {
		return fmt.Errorf("revocation: backend is %q but redis_url is empty", RevocationRedis)
	}
	return nil
}

// AttachmentsConfig holds the root directory for case attachments.
type AttachmentsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the attachments configuration.
func (c *AttachmentsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EventsConfig tunes the SSE broker.
type EventsConfig struct {
	DashboardThrottle time.Duration `yaml:"dashboard_throttle"`
}

// SeedConfig controls demo data creation.
type SeedConfig struct {
	// OnStart seeds an empty database when the server starts.
	OnStart bool         `yaml:"on_start"`
	Admin   seed.Account `yaml:"admin"`
	General seed.Account `yaml:"general"`
}

// Options converts the section into seeder options.
func (c *SeedConfig) Options() seed.Options {
	opts := seed.DefaultOptions()
	if c.Admin.Username != "" {
		opts.Admin = c.Admin
	}
	if c.General.Username != "" {
		opts.General = c.General
	}
	return opts
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            5000,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./casedesk.db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Revocation: RevocationConfig{
			Backend: RevocationMemory,
		},
		Attachments: AttachmentsConfig{
			Path: "./attachments",
		},
		Events: EventsConfig{
			DashboardThrottle: 2 * time.Second,
		},
		Seed: SeedConfig{
			Admin:   seed.DefaultOptions().Admin,
			General: seed.DefaultOptions().General,
		},
	}
}
