package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsToLongpoll(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
logging:
  level: debug
metrics:
  listen: " :9090 "
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, defaultDedupWindowSeconds, cfg.Telegram.DedupWindowSeconds)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "from-file"
`)
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_RUN_MODE", "polling")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		msg  string
	}{
		{name: "missing token", cfg: Config{}, msg: "token is required"},
		{
			name: "webhook without url",
			cfg:  Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
			msg:  "webhook.url",
		},
		{
			name: "webhook without port",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t", RunMode: "webhook"},
				Webhook:  WebhookConfig{URL: "https://x", Listen: "0.0.0.0"},
			},
			msg: "webhook.port 0 out of range",
		},
		{
			name: "unknown mode",
			cfg:  Config{Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
			msg:  "invalid telegram.run_mode",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Normalize(&tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
	assert.Error(t, Normalize(nil))
}

func TestNormalizeKeepsNegativeDedupWindow(t *testing.T) {
	cfg := Config{Telegram: TelegramConfig{Token: "t", DedupWindowSeconds: -1}}
	require.NoError(t, Normalize(&cfg))
	assert.Equal(t, -1, cfg.Telegram.DedupWindowSeconds)
}

func TestNormalizeReportsAllProblems(t *testing.T) {
	cfg := Config{Telegram: TelegramConfig{RunMode: "Webhook"}, Webhook: WebhookConfig{Port: 70000}}
	err := Normalize(&cfg)
	require.Error(t, err)
	for _, want := range []string{"token is required", "webhook.url", "webhook.listen", "webhook.port 70000"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.Equal(t, "Webhook", cfg.Telegram.RunMode, "invalid config is left untouched")
}
