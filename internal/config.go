package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/storagekit/pkg/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig describes the served root and the per-application folders.
//
// AppDataPath and TempPath override the platform locations derived from
// AppName when set.
type StorageConfig struct {
	AppName          string         `yaml:"app_name"`
	Root             string         `yaml:"root"`
	AppDataPath      string         `yaml:"app_data_path"`
	TempPath         string         `yaml:"temp_path"`
	DefaultCollision string         `yaml:"default_collision"`
	Limits           TransferLimits `yaml:"limits"`
}

// TransferLimits bounds copies, moves and streamed content. Zero means
// unlimited.
type TransferLimits struct {
	MaxTransfers       int64 `yaml:"max_transfers"`
	IOLimitBytesPerSec int64 `yaml:"io_bytes_per_sec"`
}

// Validate validates the transfer limits.
func (c TransferLimits) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxTransfers, validation.Min(int64(0))),
		validation.Field(&c.IOLimitBytesPerSec, validation.Min(int64(0))),
	)
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.DefaultCollision == "" {
		c.DefaultCollision = storage.RenameIfExists.String()
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.AppName, validation.Required),
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.DefaultCollision, validation.By(func(v any) error {
			_, err := storage.ParseCollisionOption(v.(string))
			return err
		})),
		validation.Field(&c.Limits),
	)
}

// Collision returns the parsed default collision option.
func (c *StorageConfig) Collision() storage.CollisionOption {
	opt, err := storage.ParseCollisionOption(c.DefaultCollision)
	if err != nil {
		return storage.RenameIfExists
	}
	return opt
}

// CatalogConfig holds the SQLite catalog location.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			AppName:          "storagekit",
			Root:             "./data",
			DefaultCollision: storage.RenameIfExists.String(),
		},
		Catalog: CatalogConfig{
			Path: "./storagekit.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
