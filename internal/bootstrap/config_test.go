package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SERVER_PORT=9090\nREDIS_URL=redis:6379\nLOCAL_CORS=true\nSESSION_TTL=90m\nPAGE_LIMIT_GAMES=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Setup(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "redis:6379", cfg.RedisUrl)
	assert.True(t, cfg.IsLocalCors)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.PageLimitGames)
	assert.Equal(t, "goban", cfg.MongoDatabase)
}

func TestSetup_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 20, cfg.PageLimitGames)
}

func TestSetup_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MONGO_DATABASE", "archive")
	cfg, err := Setup(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "archive", cfg.MongoDatabase)
}
