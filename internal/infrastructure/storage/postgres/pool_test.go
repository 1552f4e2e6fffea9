package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig_Parse(t *testing.T) {
	cfg := DefaultPoolConfig("postgres://u:p@localhost:5432/docserial")
	cfg.AppName = "docserial-cli"
	cfg.MaxConns = 4

	pc, err := cfg.parse()
	require.NoError(t, err)
	assert.Equal(t, int32(4), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, "docserial-cli", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_ParseKeepsDriverDefaults(t *testing.T) {
	pc, err := PoolConfig{DSN: "postgres://localhost/docserial?pool_max_conns=7"}.parse()
	require.NoError(t, err)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, defaultAppName, pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_ParseRejectsBadDSN(t *testing.T) {
	_, err := PoolConfig{DSN: "postgres://%zz"}.parse()
	assert.ErrorContains(t, err, "parse DSN")
}

func TestPool_CloseZeroValue(t *testing.T) {
	assert.NotPanics(t, (&Pool{}).Close)
}
