package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "EVENTREG"

type AppConfig struct {
	API    *APIConfig    `mapstructure:"api"`
	Gin    *GinConfig    `mapstructure:"gin"`
	Client *ClientConfig `mapstructure:"client"`
	SQLite *SQLiteConfig `mapstructure:"sqlite"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `mapstructure:"refresh_token_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	SeedDemoData       bool          `mapstructure:"seed_demo_data"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type ClientConfig struct {
	BaseURL         string                `mapstructure:"base_url"`
	Timeout         time.Duration         `mapstructure:"timeout"`
	SignInPath      string                `mapstructure:"sign_in_path"`
	CredentialStore CredentialStoreConfig `mapstructure:"credential_store"`
}

type CredentialStoreConfig struct {
	// Driver is one of "memory", "file" or "sqlite".
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// Load reads the YAML file at path, then applies EVENTREG_* environment
// overrides (EVENTREG_API_PORT overrides api.port).
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.access_token_ttl", 15*time.Minute)
	v.SetDefault("api.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("api.seed_demo_data", true)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("sqlite.path", ":memory:")
	v.SetDefault("client.base_url", "http://localhost:8080/api")
	v.SetDefault("client.timeout", 15*time.Second)
	v.SetDefault("client.sign_in_path", "/signIn")
	v.SetDefault("client.credential_store.driver", "memory")
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.Client == nil || c.Gin == nil {
		return fmt.Errorf("config: api, gin and client sections are required")
	}
	if c.SQLite == nil || c.SQLite.Path == "" {
		return fmt.Errorf("config: sqlite.path is required")
	}
	if c.API.JWTSigningKey == "" {
		return fmt.Errorf("config: api.jwt_signing_key is required")
	}
	switch c.Client.CredentialStore.Driver {
	case "memory":
	case "file", "sqlite":
		if c.Client.CredentialStore.Path == "" {
			return fmt.Errorf("config: client.credential_store.path is required for driver %q", c.Client.CredentialStore.Driver)
		}
	default:
		return fmt.Errorf("config: unknown credential store driver %q", c.Client.CredentialStore.Driver)
	}

	return nil
}
