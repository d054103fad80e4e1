package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Cookie   CookieConfig   `yaml:"cookie"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// JWTConfig carries both signing secrets and token lifetimes. Secrets are
// independent so a leak of one does not compromise the other kind of token.
type JWTConfig struct {
	AccessSecret      string `yaml:"access_secret"`
	RefreshSecret     string `yaml:"refresh_secret"`
	AccessExpireMins  int    `yaml:"access_expire_minutes"`
	RefreshExpireDays int    `yaml:"refresh_expire_days"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
}

// AccessTTL returns the configured access-token lifetime.
func (j *JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessExpireMins) * time.Minute
}

// RefreshTTL returns the configured refresh-token lifetime.
func (j *JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshExpireDays) * 24 * time.Hour
}

type CookieConfig struct {
	Domain string `yaml:"domain"`
	Secure bool   `yaml:"secure"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "vidstream.db",
		},
		JWT: JWTConfig{
			AccessSecret:      "vidstream-access-secret-change-in-production",
			RefreshSecret:     "vidstream-refresh-secret-change-in-production",
			AccessExpireMins:  15,
			RefreshExpireDays: 10,
			BcryptCost:        12,
		},
		Cookie: CookieConfig{
			Domain: "",
			Secure: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("ACCESS_TOKEN_SECRET"); secret != "" {
		c.JWT.AccessSecret = secret
	}
	if secret := os.Getenv("REFRESH_TOKEN_SECRET"); secret != "" {
		c.JWT.RefreshSecret = secret
	}
	if mins := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); mins != "" {
		if v, err := strconv.Atoi(mins); err == nil && v > 0 {
			c.JWT.AccessExpireMins = v
		}
	}
	if days := os.Getenv("REFRESH_TOKEN_EXPIRE_DAYS"); days != "" {
		if v, err := strconv.Atoi(days); err == nil && v > 0 {
			c.JWT.RefreshExpireDays = v
		}
	}
	if domain := os.Getenv("COOKIE_DOMAIN"); domain != "" {
		c.Cookie.Domain = domain
	}
	if secure := os.Getenv("COOKIE_SECURE"); secure != "" {
		c.Cookie.Secure = secure == "true" || secure == "1"
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("jwt secrets must not be empty")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}
	if c.JWT.AccessExpireMins <= 0 {
		c.JWT.AccessExpireMins = 15
	}
	if c.JWT.RefreshExpireDays <= 0 {
		c.JWT.RefreshExpireDays = 10
	}
	return nil
}
