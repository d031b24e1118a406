package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	devSecret = "dev_change_me"
)

// Config se construye una sola vez al arrancar y no se muta después.
// Se inyecta por constructor en codec/authenticator/issuer.
type Config struct {
	Env     string `yaml:"env"`
	AppName string `yaml:"app_name"`
	Port    string `yaml:"port"`

	DatabaseDSN string `yaml:"db_dsn"`
	RedisAddr   string `yaml:"redis_addr"`

	SecretKey     string        `yaml:"secret_key"`
	PublicBaseURL string        `yaml:"public_base_url"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CapabilityTTL time.Duration `yaml:"capability_ttl"`
	// Si true, cada capability token se puede canjear una sola vez.
	CapabilitySingleUse bool `yaml:"capability_single_use"`

	RendererURL string `yaml:"renderer_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Defaults() Config {
	return Config{
		Env:           EnvDev,
		AppName:       "invoicing-backend",
		Port:          "8080",
		PublicBaseURL: "http://localhost:8000",
		SessionTTL:    7 * 24 * time.Hour,
		CapabilityTTL: 15 * time.Minute,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load aplica, de menor a mayor precedencia: defaults, archivo YAML
// (CONFIG_FILE), .env y variables de entorno del proceso.
func Load() (Config, error) {
	// .env es opcional; godotenv no pisa variables ya definidas.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if cfg.SecretKey == "" && cfg.Env == EnvDev {
		cfg.SecretKey = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("APP_ENV", &cfg.Env)
	str("APP_NAME", &cfg.AppName)
	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DatabaseDSN)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("PUBLIC_BASE_URL", &cfg.PublicBaseURL)
	str("RENDERER_URL", &cfg.RendererURL)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	// JWT_SECRET como alias histórico
	str("JWT_SECRET", &cfg.SecretKey)
	str("SECRET_KEY", &cfg.SecretKey)

	for key, dst := range map[string]*time.Duration{
		"SESSION_TTL":    &cfg.SessionTTL,
		"CAPABILITY_TTL": &cfg.CapabilityTTL,
	} {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := lookup("CAPABILITY_SINGLE_USE"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: CAPABILITY_SINGLE_USE: %w", err)
		}
		cfg.CapabilitySingleUse = b
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("config: SECRET_KEY is required")
	}
	if c.Env != EnvDev && c.SecretKey == devSecret {
		return errors.New("config: SECRET_KEY must not use the dev default outside dev")
	}
	if c.SessionTTL <= 0 || c.CapabilityTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	u, err := url.Parse(c.PublicBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid PUBLIC_BASE_URL %q", c.PublicBaseURL)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: invalid PORT %q", c.Port)
	}
	return nil
}

func (c Config) Addr() string { return ":" + c.Port }
