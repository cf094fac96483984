package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// ErrInvalidConfig is returned by Load when a config value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env             string        `yaml:"env" validate:"oneof=dev stage prod"`
	ShortCodeLength int           `yaml:"short_code_length" validate:"min=3,max=20"`
	DefaultValidity int           `yaml:"default_validity" validate:"min=1,max=525600"` // minutes
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	HTTPServer      `yaml:"http_server"`
	RateLimit       `yaml:"rate_limit"`
	CORS            `yaml:"cors"`
	GeoIP           `yaml:"geoip"`
	Log             `yaml:"log"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"min=1"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
	// TrustProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// Enable it only behind a reverse proxy that sets these headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

var defaultHTTPServer = HTTPServer{
	Port:           3000,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
	MaxBodyBytes:   10 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// RateLimit caps the number of requests a single client IP may make per window.
// A non-positive Requests disables rate limiting.
type RateLimit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

var defaultRateLimit = RateLimit{
	Requests: 100,
	Window:   15 * time.Minute,
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

var defaultCORS = CORS{
	AllowedOrigins: []string{"*"},
}

// GeoIP points at a MaxMind City database. Click locations are not
// resolved when DBPath is empty.
type GeoIP struct {
	DBPath string `yaml:"db_path"`
}

type Log struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	Concise bool   `yaml:"concise"`
}

var defaultLog = Log{
	Level: "info",
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the YAML config file at path on top of the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path == "" {
		return &cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// Validate reports out-of-range values with ErrInvalidConfig.
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.RateLimit.Requests > 0 && cfg.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: rate_limit.window must be positive when rate_limit.requests is set", ErrInvalidConfig)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 6
	cfg.DefaultValidity = 30
	cfg.SweepInterval = 5 * time.Minute
	cfg.HTTPServer = defaultHTTPServer
	cfg.RateLimit = defaultRateLimit
	cfg.CORS = CORS{AllowedOrigins: append([]string(nil), defaultCORS.AllowedOrigins...)}
	cfg.Log = defaultLog
}
