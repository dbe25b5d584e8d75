package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aldaque/storyloom/internal/config"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
log:
  level: debug
store:
  backend: redis
  redis:
    addr: "redis.internal:6379"
    prefix: "stories:"
    ttl: 1h
    lock: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "stories:", cfg.Store.Redis.Prefix)
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.True(t, cfg.Store.Redis.Lock)
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: cassandra
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBuildResolver(t *testing.T) {
	path := writeConfig(t, `
modules:
  - action: com.example.view
    handlers:
      - name: viewer
        manifest:
          version: "2"
      - name: fallback-viewer
  - action: com.example.edit
    handlers:
      - name: editor
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	resolver := cfg.BuildResolver()
	assert.Equal(t, []string{"com.example.edit", "com.example.view"}, resolver.Actions())

	candidates, err := resolver.Resolve(context.Background(), domain.Intent{Action: "com.example.view"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "viewer", candidates[0].Handler)
	assert.Equal(t, "2", candidates[0].Manifest["version"])
}

func TestValidate_BadEncryptionKey(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: memory
  encryption:
    key: "dG9vLXNob3J0"
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}

func TestValidate_BadMaskPattern(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: memory
  mask_keys: ["(unclosed"]
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mask pattern")
}

func TestValidate_HandlerWithoutName(t *testing.T) {
	path := writeConfig(t, `
modules:
  - action: com.example.view
    handlers:
      - manifest: {}
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler without a name")
}
