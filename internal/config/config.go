package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Related  RelatedConfig  `mapstructure:"related"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Env   string `mapstructure:"env" validate:"oneof=prod local dev docker"`
	Level string `mapstructure:"level"` // debug, info, warn, error (empty = env default)
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required"`
}

// RelatedConfig tunes the related-content resolver.
type RelatedConfig struct {
	DefaultLimit    int                     `mapstructure:"default_limit" validate:"min=1"`
	MaxLimit        int                     `mapstructure:"max_limit" validate:"gtefield=DefaultLimit"`
	LookupTimeoutMs int                     `mapstructure:"lookup_timeout_ms" validate:"min=0"`
	Strategies      []string                `mapstructure:"strategies" validate:"min=1,dive,oneof=location district tags"`
	Sources         map[string]SourceConfig `mapstructure:"sources"`
}

// LookupTimeout returns the per-collection lookup deadline, zero meaning none.
func (r RelatedConfig) LookupTimeout() time.Duration {
	return time.Duration(r.LookupTimeoutMs) * time.Millisecond
}

// SourceConfig overrides the built-in settings of one source content type.
// Empty fields keep the built-in value.
type SourceConfig struct {
	Targets  []string `mapstructure:"targets"`
	Location string   `mapstructure:"location"`
	District string   `mapstructure:"district"`
	Tags     string   `mapstructure:"tags"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	PoolSize int    `mapstructure:"pool_size"`
	Path     string `mapstructure:"path"` // directory for SQLite database files
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "/" + d.Name + ".db"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsSQLite returns true if the driver is sqlite.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tourism")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.path", "./data")
	v.SetDefault("log.env", "local")
	v.SetDefault("log.level", "")
	v.SetDefault("auth.jwt_secret", "changeme-secret")
	v.SetDefault("related.default_limit", 10)
	v.SetDefault("related.max_limit", 50)
	v.SetDefault("related.lookup_timeout_ms", 3000)
	v.SetDefault("related.strategies", []string{"location", "district"})
}

// Load reads app.yaml from the working directory (or two levels up),
// overlays environment variables and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../..")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
