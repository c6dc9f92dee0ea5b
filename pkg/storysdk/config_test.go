package storysdk_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyprotocol/story-sdk-go/pkg/storysdk"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
api_url: http://localhost:8787
timeout: 5s
log_level: debug
retry:
  max_retries: 2
  base_delay: 100ms
  max_delay: 1s
  jitter: 0.2
terms_cache_size: 64
terms_cache_ttl: 10m
`)

	cfg, err := storysdk.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8787", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Retry)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.BaseDelay.Std())
	assert.Equal(t, 64, cfg.TermsCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.TermsCacheTTL.Std())
}

func TestLoadConfigMissingURL(t *testing.T) {
	path := writeConfig(t, `log_level: info`)
	_, err := storysdk.LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
api_url: http://localhost:8787
timeout: soon
`)
	_, err := storysdk.LoadConfig(path)
	require.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	path := writeConfig(t, `
api_url: http://localhost:8787
timeout: 2s
terms_cache_size: 16
`)
	cfg, err := storysdk.LoadConfig(path)
	require.NoError(t, err)

	accounts, licenses, err := storysdk.NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, accounts)
	require.NotNil(t, licenses)
}

func TestNewFromConfigNil(t *testing.T) {
	_, _, err := storysdk.NewFromConfig(nil)
	require.Error(t, err)
}
