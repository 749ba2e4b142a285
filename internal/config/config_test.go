package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fs", cfg.Assets.Driver)
	assert.Equal(t, 10, cfg.Compiler.MaxAliasDepth)
	assert.Equal(t, 768, cfg.Compiler.TabletPx)
	assert.Equal(t, 1024, cfg.Compiler.DesktopPx)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ASSETS_DRIVER", "minio")
	t.Setenv("MINIO_ACCESS_KEY_ID", "key")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "secret")
	t.Setenv("COMPILER_TABLET_PX", "600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minio", cfg.Assets.Driver)
	assert.Equal(t, 600, cfg.Compiler.TabletPx)
}

func TestLoad_RejectsMinioWithoutCredentials(t *testing.T) {
	t.Setenv("ASSETS_DRIVER", "minio")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minio access key id")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("ASSETS_DRIVER", "ftp")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsDescendingBreakpoints(t *testing.T) {
	t.Setenv("COMPILER_TABLET_PX", "1200")

	_, err := Load()
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "cms", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cms sslmode=disable", d.DSN())
}
