// Package config merges flags, environment, .env and an optional YAML file
// into the application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/smartstudy/internal/llm"
	"github.com/abhisek/smartstudy/internal/logging"
	"github.com/abhisek/smartstudy/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. SMARTSTUDY_DB_DRIVER.
const EnvPrefix = "SMARTSTUDY"

// Config is the merged application configuration.
type Config struct {
	DB    DBConfig
	Log   logging.Options
	Study TimerConfig
	Exam  TimerConfig
	Serve ServeConfig
	LLM   llm.Config

	// LLMDiscovered is set when the provider came from a standard API key
	// variable rather than llm.provider.
	LLMDiscovered bool
}

// DBConfig selects the database.
type DBConfig struct {
	Driver string
	Path   string
	DSN    string
}

// TimerConfig holds a per-question countdown. Zero disables it.
type TimerConfig struct {
	TimerSeconds int
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string
}

// LoadOptions names the optional files to read.
type LoadOptions struct {
	// ConfigFile overrides the default YAML location. It must exist.
	ConfigFile string

	// EnvFile is a dotenv file; a missing file is ignored.
	EnvFile string
}

// NewViper returns a viper instance with defaults and SMARTSTUDY_* env
// bindings. Callers bind cobra flags on top before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := llm.DefaultConfig()

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatText)
	v.SetDefault("log.file", "")
	v.SetDefault("study.timer_seconds", 0)
	v.SetDefault("exam.timer_seconds", 0)
	v.SetDefault("serve.addr", "127.0.0.1:8088")

	v.SetDefault("llm.provider", "")
	for _, name := range []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderOpenRouter, llm.ProviderGemini} {
		pc := d.For(name)
		v.SetDefault("llm."+name+".api_key", "")
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}
	v.SetDefault("llm.rate_per_minute", d.RateLimit.PerMinute)
	v.SetDefault("llm.rate_burst", d.RateLimit.Burst)
	v.SetDefault("llm.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.timeout", d.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the dotenv and YAML files into v and decodes the result.
func Load(v *viper.Viper, opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else if dir, err := configDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := decode(v)
	if cfg.LLM.Provider == "" {
		cfg.LLM, cfg.LLMDiscovered = llm.Discover(cfg.LLM)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) *Config {
	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = v.GetString("llm.provider")
	llmCfg.Anthropic = providerConfig(v, llm.ProviderAnthropic)
	llmCfg.OpenAI = providerConfig(v, llm.ProviderOpenAI)
	llmCfg.OpenRouter = providerConfig(v, llm.ProviderOpenRouter)
	llmCfg.Gemini = providerConfig(v, llm.ProviderGemini)
	llmCfg.RateLimit.PerMinute = v.GetInt("llm.rate_per_minute")
	llmCfg.RateLimit.Burst = v.GetInt("llm.rate_burst")
	llmCfg.Retry.MaxAttempts = v.GetInt("llm.max_attempts")
	llmCfg.Timeout = v.GetDuration("llm.timeout")

	return &Config{
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("db.driver")),
			Path:   v.GetString("db.path"),
			DSN:    v.GetString("db.dsn"),
		},
		Log: logging.Options{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		Study: TimerConfig{TimerSeconds: v.GetInt("study.timer_seconds")},
		Exam:  TimerConfig{TimerSeconds: v.GetInt("exam.timer_seconds")},
		Serve: ServeConfig{Addr: v.GetString("serve.addr")},
		LLM:   llmCfg,
	}
}

func providerConfig(v *viper.Viper, name string) llm.ProviderConfig {
	return llm.ProviderConfig{
		APIKey:  v.GetString("llm." + name + ".api_key"),
		Model:   v.GetString("llm." + name + ".model"),
		BaseURL: v.GetString("llm." + name + ".base_url"),
	}
}

// Validate rejects settings no command can run with. The LLM section is
// checked only by commands that call a model.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "", "sqlite", "sqlite3":
	case "postgres", "postgresql":
		if c.DB.DSN == "" {
			return errors.New("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.Study.TimerSeconds < 0 {
		return fmt.Errorf("study.timer_seconds must be >= 0, got %d", c.Study.TimerSeconds)
	}
	if c.Exam.TimerSeconds < 0 {
		return fmt.Errorf("exam.timer_seconds must be >= 0, got %d", c.Exam.TimerSeconds)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unsupported log.format %q", c.Log.Format)
	}
	return nil
}

// StoreConfig resolves the database settings for store.Open. For sqlite
// without an explicit path it falls back to store.DefaultDBPath.
func (c *Config) StoreConfig(logger *slog.Logger) (store.Config, error) {
	sc := store.Config{Driver: c.DB.Driver, DSN: c.DB.DSN, Logger: logger}
	if sc.DSN != "" {
		return sc, nil
	}
	if c.DB.Path != "" {
		if err := os.MkdirAll(filepath.Dir(c.DB.Path), 0o755); err != nil {
			return sc, fmt.Errorf("create db dir: %w", err)
		}
		sc.DSN = c.DB.Path
		return sc, nil
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return sc, err
	}
	sc.DSN = p
	return sc, nil
}

// TUILogFile returns log.file, or <data dir>/smartstudy.log so that log
// output never lands on the alt screen.
func (c *Config) TUILogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "smartstudy.log"), nil
}

// configDir resolves $XDG_CONFIG_HOME/smartstudy, falling back to
// ~/.config/smartstudy.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "smartstudy"), nil
}
