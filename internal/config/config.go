package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AuthConfig struct {
	MaxLoginAttempts int `mapstructure:"max_login_attempts"`
	BcryptCost       int `mapstructure:"bcrypt_cost"`
}

type StorageConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	// Endpoint overrides the AWS endpoint, e.g. for MinIO.
	Endpoint string `mapstructure:"endpoint"`
	// BaseURL is the public prefix attachment keys resolve under.
	// Empty means the bucket's virtual-hosted S3 URL.
	BaseURL string `mapstructure:"base_url"`
}

type CORSConfig struct {
	Origin string `mapstructure:"origin"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// PublicBaseURL returns the base URL attachment keys resolve under,
// falling back to the bucket's virtual-hosted S3 URL. Trailing slashes
// are stripped so key joining stays predictable.
func (s StorageConfig) PublicBaseURL() string {
	base := s.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.Bucket, s.Region)
	}
	return strings.TrimRight(base, "/")
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
// A missing file is not an error: everything can come from PM_* environment
// variables instead (PM_SERVER_PORT, PM_STORAGE_BUCKET, PM_JWT_SECRET, ...).
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. PM_SERVER_PORT=9000
		v.SetEnvPrefix("PM") // photo memo
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetDefault("server.address", "")
		v.SetDefault("server.port", 4000)
		v.SetDefault("database.path", "data/photomemo.db")
		v.SetDefault("jwt.expire_hours", 168) // 7일 유효 토큰
		v.SetDefault("auth.max_login_attempts", 5)
		v.SetDefault("auth.bcrypt_cost", 10)
		v.SetDefault("storage.region", "ap-northeast-2")

		if err = v.ReadInConfig(); err != nil {
			// search-path mode reports ConfigFileNotFoundError, an explicit
			// path surfaces fs.ErrNotExist; both just mean env-only startup
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				err = nil
			} else {
				err = fmt.Errorf("read config: %w", err)
				return
			}
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
