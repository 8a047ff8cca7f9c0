package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, BackendLocal, cfg.Account.Backend)
	assert.False(t, cfg.IsConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
tmdb:
  api_key: from-file
  timeout: 5s
account:
  backend: remote
  url: https://lists.example.com
ui:
  default_tab: movie
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("MARQUEE_TMDB_LANGUAGE", "de-DE")

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TMDB.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
	assert.Equal(t, BackendRemote, cfg.Account.Backend)
	assert.Equal(t, "movie", cfg.UI.DefaultTab)
	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, "https://lists.example.com", cfg.Endpoint())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TMDB.APIKey = "saved"
	cfg.UI.Browser = "firefox"

	require.NoError(t, save(viper.New(), cfg, dir))

	loaded, err := load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.TMDB.APIKey)
	assert.Equal(t, "firefox", loaded.UI.Browser)
	assert.Equal(t, cfg.TMDB.Timeout, loaded.TMDB.Timeout)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Account.Backend = BackendRemote
	assert.Error(t, cfg.Validate())

	cfg.Account.Backend = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}
