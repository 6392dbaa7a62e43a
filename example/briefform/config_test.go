package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "https://api.example.com",
		"publishable_key": "pk_file",
		"openai": {"model": "gpt-4o-mini"}
	}`), 0o600))
	t.Setenv("BRIEFPAY_PUBLISHABLE_KEY", "pk_env")
	t.Setenv("BRIEFPAY_DEBUG", "true")

	conf, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", conf.APIBaseURL)
	assert.Equal(t, "http://localhost:8000", conf.Origin)
	assert.Equal(t, "pk_env", conf.PublishableKey)
	assert.Equal(t, "gpt-4o-mini", conf.OpenAI.Model)
	assert.True(t, conf.Debug)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	conf, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", conf.APIBaseURL)
}
