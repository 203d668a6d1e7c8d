package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, "model/model.json", cfg.Model.Path)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, 10, cfg.Server.FeedBacklog)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boxoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
model:
  path: /srv/model.json
lexicon:
  path: /srv/words.txt
auth:
  jwt_duration: 2h
`), 0o644))

	t.Setenv(ConfigPathEnv, path)
	t.Setenv("BOXOFFICE_SERVER_ADDR", ":7000")
	t.Setenv("BOXOFFICE_AUTH_JWT_SECRET", "from-env")
	t.Setenv("BOXOFFICE_SERVER_TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")
	t.Setenv("BOXOFFICE_SERVER_FEED_BACKLOG", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/srv/model.json", cfg.Model.Path)
	assert.Equal(t, "/srv/words.txt", cfg.Lexicon.Path)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Server.TrustedProxies)
	assert.Equal(t, 3, cfg.Server.FeedBacklog)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Model.Path = ""
	cfg.Auth.JWTSecret = ""
	cfg.Server.FeedBacklog = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.path")
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "server.feed_backlog")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestLoadConfigReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed\n"), 0o644))
	t.Setenv(ConfigPathEnv, path)

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv(ConfigPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv(ConfigPathEnv, "")
	chdir(t, t.TempDir())
	t.Setenv("BOXOFFICE_SERVER_FEED_BACKLOG", "-2")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.feed_backlog")
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir from newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
