package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "HIREFLOW"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Parser   ParserConfig   `mapstructure:"parser"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow-origins"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ParserConfig struct {
	BaseURL string        `mapstructure:"base-url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RatePerSecond throttles outbound calls; zero disables throttling.
	RatePerSecond float64 `mapstructure:"rate-per-second"`
	Burst         int     `mapstructure:"burst"`
}

type StorageConfig struct {
	Root      string `mapstructure:"root"`
	URLPrefix string `mapstructure:"url-prefix"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max-bytes"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow-origins", []string{"*"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=password dbname=hireflow port=5432 sslmode=disable")
	v.SetDefault("parser.base-url", "http://localhost:8000")
	v.SetDefault("parser.timeout", 30*time.Second)
	v.SetDefault("parser.rate-per-second", 0)
	v.SetDefault("parser.burst", 1)
	v.SetDefault("storage.root", "public")
	v.SetDefault("storage.url-prefix", "/uploads")
	v.SetDefault("upload.max-bytes", 5<<20)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads an optional .env file, an optional config file and HIREFLOW_*
// environment variables, in increasing order of precedence.
func Load(v *viper.Viper, file string) (*Config, error) {
	// .env is a convenience for local runs, its absence is fine.
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("hireflow")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database.driver %q (valid: postgres, sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if c.Parser.BaseURL == "" {
		return errors.New("config: parser.base-url is required")
	}
	if c.Parser.Timeout <= 0 {
		return errors.New("config: parser.timeout must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("config: upload.max-bytes must be positive")
	}
	return nil
}
