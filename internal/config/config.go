package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/joey/internal/prompt"
)

// Gateway modes.
const (
	ModeContext = "context"
	ModePlain   = "plain"
)

type Config struct {
	Mode              string
	Port              int
	LogLevel          string
	MaxSourceChars    int
	MaxContextChars   int
	WindowSize        int
	SoftFail          bool
	Model             string
	CompletionURL     string
	APIKey            string
	Persona           string
	CompletionTimeout time.Duration
	FetchTimeout      time.Duration
	MaxUploadBytes    int64
	AllowedOrigins    []string
	WatchDir          string
	NatsURL           string
	NatsToken         string
}

// ContextAware reports whether sources are ingested and injected into prompts.
func (c Config) ContextAware() bool {
	return c.Mode == ModeContext
}

// Defaults returns the baseline configuration for a mode.
func Defaults(mode string) Config {
	cfg := Config{
		Mode:              mode,
		Port:              8000,
		LogLevel:          "info",
		MaxSourceChars:    3000,
		MaxContextChars:   3000,
		CompletionTimeout: 120 * time.Second,
		FetchTimeout:      10 * time.Second,
		MaxUploadBytes:    32 << 20,
		AllowedOrigins:    []string{"http://localhost:3000"},
	}
	switch mode {
	case ModePlain:
		cfg.WindowSize = 0
		cfg.SoftFail = false
		cfg.Model = "Joey"
		cfg.CompletionURL = "http://127.0.0.1:8001/v1/chat/completions"
		cfg.Persona = prompt.DefaultPlainPersona
	default:
		cfg.WindowSize = 5
		cfg.SoftFail = true
		cfg.Model = "gpt-3.5-turbo"
		cfg.CompletionURL = "https://api.openai.com/v1/chat/completions"
		cfg.Persona = prompt.DefaultContextPersona
	}
	return cfg
}

// LoadOptions selects the optional config file and a mode override.
type LoadOptions struct {
	Path string
	Mode string
}

// Load resolves configuration with precedence mode defaults < YAML file <
// environment. Flags are applied by the caller.
func Load(opts LoadOptions) (Config, error) {
	path := opts.Path
	if path == "" {
		path = os.Getenv("JOEY_CONFIG")
	}

	var file *fileConfig
	if path != "" {
		f, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		file = f
	}

	mode := opts.Mode
	if mode == "" {
		mode = os.Getenv("JOEY_MODE")
	}
	if mode == "" && file != nil {
		mode = file.Mode
	}
	if mode == "" {
		mode = ModeContext
	}

	cfg := Defaults(mode)
	if file != nil {
		file.apply(&cfg)
	}
	cfg.applyEnv()

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.Port = envInt("JOEY_PORT", c.Port)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
	c.MaxSourceChars = envInt("JOEY_MAX_SOURCE_CHARS", c.MaxSourceChars)
	c.MaxContextChars = envInt("JOEY_MAX_CONTEXT_CHARS", c.MaxContextChars)
	c.WindowSize = envInt("JOEY_WINDOW_SIZE", c.WindowSize)
	c.SoftFail = envBool("JOEY_SOFT_FAIL", c.SoftFail)
	c.Model = envStr("JOEY_MODEL", c.Model)
	c.CompletionURL = envStr("JOEY_COMPLETION_URL", c.CompletionURL)
	c.APIKey = envStr("JOEY_API_KEY", c.APIKey)
	c.Persona = envStr("JOEY_PERSONA", c.Persona)
	c.CompletionTimeout = envDuration("JOEY_COMPLETION_TIMEOUT", c.CompletionTimeout)
	c.FetchTimeout = envDuration("JOEY_FETCH_TIMEOUT", c.FetchTimeout)
	c.MaxUploadBytes = int64(envInt("JOEY_MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.AllowedOrigins = envList("JOEY_ALLOWED_ORIGINS", c.AllowedOrigins)
	c.WatchDir = envStr("JOEY_WATCH_DIR", c.WatchDir)
	c.NatsURL = envStr("NATS_URL", c.NatsURL)
	c.NatsToken = envStr("NATS_TOKEN", c.NatsToken)
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Mode != ModeContext && c.Mode != ModePlain {
		return fmt.Errorf("unknown mode %q (supported: %s, %s)", c.Mode, ModeContext, ModePlain)
	}
	if c.MaxSourceChars <= 0 {
		return fmt.Errorf("max source chars must be positive, got %d", c.MaxSourceChars)
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("max context chars must be positive, got %d", c.MaxContextChars)
	}
	if c.WindowSize < 0 {
		return fmt.Errorf("window size must not be negative, got %d", c.WindowSize)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.CompletionURL == "" {
		return fmt.Errorf("completion url is required")
	}
	return nil
}

// fileConfig is the YAML form. Pointer fields distinguish unset from zero.
type fileConfig struct {
	Mode              string   `yaml:"mode"`
	Port              *int     `yaml:"port"`
	LogLevel          string   `yaml:"log_level"`
	MaxSourceChars    *int     `yaml:"max_source_chars"`
	MaxContextChars   *int     `yaml:"max_context_chars"`
	WindowSize        *int     `yaml:"window_size"`
	SoftFail          *bool    `yaml:"soft_fail"`
	Model             string   `yaml:"model"`
	CompletionURL     string   `yaml:"completion_url"`
	APIKey            string   `yaml:"api_key"`
	Persona           string   `yaml:"persona"`
	CompletionTimeout string   `yaml:"completion_timeout"`
	FetchTimeout      string   `yaml:"fetch_timeout"`
	MaxUploadBytes    *int64   `yaml:"max_upload_bytes"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	WatchDir          string   `yaml:"watch_dir"`
	NatsURL           string   `yaml:"nats_url"`
	NatsToken         string   `yaml:"nats_token"`

	completionTimeout time.Duration
	fetchTimeout      time.Duration
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if fc.CompletionTimeout != "" {
		if fc.completionTimeout, err = time.ParseDuration(fc.CompletionTimeout); err != nil {
			return nil, fmt.Errorf("completion_timeout: %w", err)
		}
	}
	if fc.FetchTimeout != "" {
		if fc.fetchTimeout, err = time.ParseDuration(fc.FetchTimeout); err != nil {
			return nil, fmt.Errorf("fetch_timeout: %w", err)
		}
	}
	return &fc, nil
}

func (f *fileConfig) apply(c *Config) {
	if f.Port != nil {
		c.Port = *f.Port
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.MaxSourceChars != nil {
		c.MaxSourceChars = *f.MaxSourceChars
	}
	if f.MaxContextChars != nil {
		c.MaxContextChars = *f.MaxContextChars
	}
	if f.WindowSize != nil {
		c.WindowSize = *f.WindowSize
	}
	if f.SoftFail != nil {
		c.SoftFail = *f.SoftFail
	}
	if f.Model != "" {
		c.Model = f.Model
	}
	if f.CompletionURL != "" {
		c.CompletionURL = f.CompletionURL
	}
	if f.APIKey != "" {
		c.APIKey = f.APIKey
	}
	if f.Persona != "" {
		c.Persona = f.Persona
	}
	if f.completionTimeout > 0 {
		c.CompletionTimeout = f.completionTimeout
	}
	if f.fetchTimeout > 0 {
		c.FetchTimeout = f.fetchTimeout
	}
	if f.MaxUploadBytes != nil {
		c.MaxUploadBytes = *f.MaxUploadBytes
	}
	if len(f.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.AllowedOrigins
	}
	if f.WatchDir != "" {
		c.WatchDir = f.WatchDir
	}
	if f.NatsURL != "" {
		c.NatsURL = f.NatsURL
	}
	if f.NatsToken != "" {
		c.NatsToken = f.NatsToken
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
