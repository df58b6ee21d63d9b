package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: 8081
database:
  path: `+filepath.Join(dir, "db", "blog.db")+`
session:
  secret_key: test-secret
  expire_minutes: 30
storage:
  upload_dir: `+filepath.Join(dir, "uploads")+`
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8081", cfg.Server.GetAddress())
	assert.Equal(t, "test-secret", cfg.Session.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.Session.GetExpireDuration())
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, "database", cfg.Session.Store)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, int64(16), cfg.Server.MaxUploadMB)

	assert.DirExists(t, filepath.Join(dir, "db"))
	assert.DirExists(t, filepath.Join(dir, "uploads"))
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  path: `+filepath.Join(dir, "blog.db")+`
session:
  secret_key: from-file
storage:
  upload_dir: `+filepath.Join(dir, "uploads")+`
`)
	t.Setenv("BLOG_SESSION_SECRET_KEY", "from-env")
	t.Setenv("BLOG_SERVER_PORT", "9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Session.SecretKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BLOG_SESSION_SECRET_KEY", "env-only")
	t.Setenv("BLOG_DATABASE_PATH", filepath.Join(dir, "blog.db"))
	t.Setenv("BLOG_STORAGE_UPLOAD_DIR", filepath.Join(dir, "uploads"))

	cfg, err := LoadConfig(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "env-only", cfg.Session.SecretKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	base := `
database:
  path: ` + filepath.Join(dir, "blog.db") + `
storage:
  upload_dir: ` + filepath.Join(dir, "uploads") + `
`

	tests := []struct {
		name string
		body string
	}{
		{name: "missing secret", body: base},
		{name: "bad port", body: base + "server:\n  port: 70000\nsession:\n  secret_key: s\n"},
		{name: "redis store without redis", body: base + "session:\n  secret_key: s\n  store: redis\n"},
		{name: "unknown driver", body: "database:\n  driver: oracle\nsession:\n  secret_key: s\n"},
		{name: "s3 without bucket", body: "database:\n  path: " + filepath.Join(dir, "b.db") + "\nsession:\n  secret_key: s\nstorage:\n  provider: s3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
