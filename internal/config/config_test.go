package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests touch process environment, so they do not run in parallel.

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:54345", cfg.URL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 4, cfg.RelaySlots)
	assert.Empty(t, cfg.Token)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("BITBROWSER_URL", "http://10.0.0.5:54345")
	t.Setenv("BITBROWSER_TOKEN", "k-123")
	t.Setenv("BITBROWSER_TIMEOUT", "3s")
	t.Setenv("BITBROWSER_HEADERS", "X-Team:ops,X-Env:staging")
	t.Setenv("BITBROWSER_PAGE_SIZE", "25")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:54345", cfg.URL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, map[string]string{"X-Team": "ops", "X-Env": "staging"}, cfg.Headers)

	cc := cfg.ClientConfig()
	assert.Equal(t, "k-123", cc.Token)
	assert.Equal(t, cfg.URL, cc.BaseURL)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BITBROWSER_LOG_LEVEL=debug\nBITBROWSER_RATE_BURST=3\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("BITBROWSER_LOG_LEVEL")
		os.Unsetenv("BITBROWSER_RATE_BURST")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.RateBurst)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())
}

func TestLoadInvalid(t *testing.T) {
	for name, kv := range map[string][2]string{
		"timeout":   {"BITBROWSER_TIMEOUT", "0s"},
		"page size": {"BITBROWSER_PAGE_SIZE", "-1"},
		"log level": {"BITBROWSER_LOG_LEVEL", "chatty"},
		"not int":   {"BITBROWSER_RATE_BURST", "many"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
