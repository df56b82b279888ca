package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "HTTP_ADDR", "LOG_LEVEL", "NODE_ENV", "SERVE_STATIC", "STATIC_DIR",
		"HTTP_CLIENT_TIMEOUT", "MAX_BODY_BYTES", "CORS_ALLOWED_ORIGINS",
		"INSIGHT_PROVIDER", "INSIGHT_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
	} {
		if val, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, val) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.Provider.Name)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Provider.OpenAI.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(102400), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "dist", cfg.StaticDir)
	assert.False(t, cfg.StaticEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("INSIGHT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, ProviderGemini, cfg.Provider.Name)
	assert.Equal(t, "g-key", cfg.Provider.Gemini.APIKey)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestHTTPAddrOverridesPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_ADDR", "127.0.0.1:7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr())
}

func TestStaticEnabled(t *testing.T) {
	cases := []struct {
		name        string
		nodeEnv     string
		serveStatic string
		want        bool
	}{
		{name: "development", nodeEnv: "development", serveStatic: "false", want: false},
		{name: "production", nodeEnv: "production", serveStatic: "false", want: true},
		{name: "explicit flag", nodeEnv: "development", serveStatic: "true", want: true},
		{name: "non-true value", nodeEnv: "development", serveStatic: "yes", want: false},
		{name: "uppercase", nodeEnv: "development", serveStatic: "TRUE", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{NodeEnv: tc.nodeEnv, ServeStatic: tc.serveStatic}
			assert.Equal(t, tc.want, cfg.StaticEnabled())
		})
	}
}

func TestLoadAcceptsAnyServeStaticValue(t *testing.T) {
	for _, val := range []string{"yes", "1", "on", ""} {
		t.Run(val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SERVE_STATIC", val)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.False(t, cfg.StaticEnabled())
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "5555")

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=1234\nOPENAI_API_KEY=file-key\nSERVE_STATIC=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("OPENAI_API_KEY")
		_ = os.Unsetenv("SERVE_STATIC")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	// Переменная окружения важнее файла.
	assert.Equal(t, ":5555", cfg.Addr())
	assert.Equal(t, "file-key", cfg.Provider.OpenAI.APIKey)
	assert.True(t, cfg.StaticEnabled())
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"INSIGHT_PROVIDER":    "anthropic",
		"LOG_LEVEL":           "verbose",
		"HTTP_CLIENT_TIMEOUT": "0s",
		"MAX_BODY_BYTES":      "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
