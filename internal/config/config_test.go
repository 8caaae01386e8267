package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg := DefaultServer()
	require.NoError(t, LoadServer("", &cfg))
	assert.Equal(t, DefaultServer(), cfg)
}

func TestLoadServer_File(t *testing.T) {
	path := writeFile(t, `
addr: "127.0.0.1:4000"
metrics_addr: ":9100"
read_timeout: 30s
max_sessions: 8
requests_per_second: 2.5
request_burst: 5
log_format: json
`)

	cfg := DefaultServer()
	require.NoError(t, LoadServer(path, &cfg))

	assert.Equal(t, "127.0.0.1:4000", cfg.Addr)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, int32(8), cfg.MaxSessions)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, 5, cfg.RequestBurst)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadServer_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "addr: \"127.0.0.1:4000\"\nmax_sessions: 8\n")
	t.Setenv("ARITH_ADDR", ":5000")
	t.Setenv("ARITH_READ_TIMEOUT", "1m")

	cfg := DefaultServer()
	require.NoError(t, LoadServer(path, &cfg))

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
	assert.Equal(t, int32(8), cfg.MaxSessions)
}

func TestLoadServer_Invalid(t *testing.T) {
	cfg := DefaultServer()
	err := LoadServer(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg = DefaultServer()
	err = LoadServer(writeFile(t, "addr: [unclosed"), &cfg)
	assert.Error(t, err)

	cfg = DefaultServer()
	err = LoadServer(writeFile(t, "max_sessions: 0"), &cfg)
	assert.ErrorContains(t, err, "max_sessions")

	t.Setenv("ARITH_MAX_SESSIONS", "lots")
	cfg = DefaultServer()
	err = LoadServer("", &cfg)
	assert.ErrorContains(t, err, "parse env")
}

func TestLoadClient(t *testing.T) {
	t.Setenv("ARITH_SERVER", "calc.example:1234")
	t.Setenv("ARITH_DIAL_TIMEOUT", "2s")

	cfg := DefaultClient()
	require.NoError(t, LoadClient("", &cfg))

	assert.Equal(t, "calc.example:1234", cfg.Server)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
}

func TestLoadClient_EmptyServer(t *testing.T) {
	cfg := DefaultClient()
	err := LoadClient(writeFile(t, "server: \"\"\n"), &cfg)
	assert.Error(t, err)
}
