package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/smartstudy/internal/llm"
)

// isolate points every file lookup at a temp dir and clears provider keys.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "SMARTSTUDY_DB"} {
		t.Setenv(k, "")
	}
	return dir
}

func load(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	return Load(NewViper(), LoadOptions{EnvFile: filepath.Join(dir, "missing.env")})
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := load(t, dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Zero(t, cfg.Study.TimerSeconds)
	assert.Equal(t, "127.0.0.1:8088", cfg.Serve.Addr)
	assert.Empty(t, cfg.LLM.Provider)
	assert.False(t, cfg.LLMDiscovered)
	assert.Equal(t, "claude-haiku", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 30, cfg.LLM.RateLimit.PerMinute)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SMARTSTUDY_STUDY_TIMER_SECONDS", "30")
	t.Setenv("SMARTSTUDY_LOG_FORMAT", "json")
	t.Setenv("SMARTSTUDY_LLM_PROVIDER", "openai")
	t.Setenv("SMARTSTUDY_LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("SMARTSTUDY_LLM_OPENAI_MODEL", "gpt-4.1-mini")

	cfg, err := load(t, dir)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Study.TimerSeconds)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.OpenAI.Model)
	assert.NoError(t, cfg.LLM.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SMARTSTUDY_EXAM_TIMER_SECONDS=45\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SMARTSTUDY_EXAM_TIMER_SECONDS") })

	cfg, err := Load(NewViper(), LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Exam.TimerSeconds)
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "smartstudy"), 0o755))
	yaml := "db:\n  path: /tmp/study.db\nserve:\n  addr: 0.0.0.0:9000\nllm:\n  provider: mock\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smartstudy", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := load(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/study.db", cfg.DB.Path)
	assert.Equal(t, "0.0.0.0:9000", cfg.Serve.Addr)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestLoadExplicitConfigMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(NewViper(), LoadOptions{
		ConfigFile: filepath.Join(dir, "nope.yaml"),
		EnvFile:    filepath.Join(dir, "missing.env"),
	})
	assert.Error(t, err)
}

func TestLoadDiscoversProvider(t *testing.T) {
	dir := isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-discovered")

	cfg, err := load(t, dir)
	require.NoError(t, err)
	assert.True(t, cfg.LLMDiscovered)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-discovered", cfg.LLM.OpenAI.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"postgres with dsn", func(c *Config) { c.DB.Driver = "postgres"; c.DB.DSN = "postgres://x" }, false},
		{"postgres without dsn", func(c *Config) { c.DB.Driver = "postgres" }, true},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, true},
		{"negative study timer", func(c *Config) { c.Study.TimerSeconds = -1 }, true},
		{"negative exam timer", func(c *Config) { c.Exam.TimerSeconds = -5 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DB: DBConfig{Driver: "sqlite"}}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStoreConfig(t *testing.T) {
	dir := isolate(t)

	cfg := &Config{DB: DBConfig{Driver: "sqlite", Path: filepath.Join(dir, "nested", "s.db")}}
	sc, err := cfg.StoreConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.DB.Path, sc.DSN)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	cfg = &Config{DB: DBConfig{Driver: "sqlite"}}
	sc, err = cfg.StoreConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "smartstudy", "smartstudy.db"), sc.DSN)

	cfg = &Config{DB: DBConfig{Driver: "postgres", DSN: "postgres://localhost/x"}}
	sc, err = cfg.StoreConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", sc.Driver)
	assert.Equal(t, "postgres://localhost/x", sc.DSN)
}

func TestTUILogFile(t *testing.T) {
	dir := isolate(t)

	cfg := &Config{}
	p, err := cfg.TUILogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "smartstudy", "smartstudy.log"), p)

	cfg.Log.File = "/var/log/s.log"
	p, err = cfg.TUILogFile()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/s.log", p)
}
