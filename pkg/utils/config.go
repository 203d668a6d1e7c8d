package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"boxoffice/pkg/database"
)

const (
	EnvPrefix     = "BOXOFFICE_"
	ConfigPathEnv = "BOXOFFICE_CONFIG"
)

// DefaultConfigPaths are tried in order when BOXOFFICE_CONFIG is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server   ServerConfig    `koanf:"server"`
	Database database.Config `koanf:"database"`
	Model    ModelConfig     `koanf:"model"`
	Lexicon  LexiconConfig   `koanf:"lexicon"`
	Auth     AuthConfig      `koanf:"auth"`
	Log      LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	FeedAddr       string   `koanf:"feed_addr"`
	TrustedProxies []string `koanf:"trusted_proxies"`
	// FeedBacklog is how many recent forecasts new feed subscribers replay.
	FeedBacklog int `koanf:"feed_backlog"`
	// RateLimit is the sustained requests per second allowed per client IP;
	// 0 disables limiting.
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type ModelConfig struct {
	Path string `koanf:"path"`
}

// LexiconConfig.Path empty means the common_words table is the source.
type LexiconConfig struct {
	Path string `koanf:"path"`
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	JWTIssuer     string        `koanf:"jwt_issuer"`
	JWTDuration   time.Duration `koanf:"jwt_duration"`
	AdminUsername string        `koanf:"admin_username"`
	// AdminPasswordHash is a bcrypt hash; empty disables login.
	AdminPasswordHash string `koanf:"admin_password_hash"`
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			FeedAddr:        ":7070",
			FeedBacklog:     10,
			TrustedProxies:  []string{"127.0.0.1"},
			RateLimit:       5,
			RateBurst:       20,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: database.DefaultConfig(),
		Model: ModelConfig{
			Path: "model/model.json",
		},
		Auth: AuthConfig{
			// dev default (change for demo / production)
			JWTSecret:     "dev-secret-change-me",
			JWTIssuer:     "boxoffice",
			JWTDuration:   24 * time.Hour,
			AdminUsername: "admin",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig layers defaults, an optional YAML file and BOXOFFICE_* env vars,
// in increasing priority.
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// BOXOFFICE_AUTH_JWT_SECRET -> auth.jwt_secret
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if v, ok := k.Get("server.trusted_proxies").(string); ok {
		if err := k.Set("server.trusted_proxies", splitList(v)); err != nil {
			return Config{}, fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, errors.New("server rate limit must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst == 0 {
		errs = append(errs, errors.New("server.rate_burst must be positive when rate limiting"))
	}
	if c.Server.FeedBacklog < 0 {
		errs = append(errs, errors.New("server.feed_backlog must not be negative"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("model.path is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.JWTDuration <= 0 {
		errs = append(errs, errors.New("auth.jwt_duration must be positive"))
	}
	return errors.Join(errs...)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps an env var to a koanf path: the first underscore after the
// prefix separates section from key.
func envKey(s string) string {
	if s == ConfigPathEnv {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
