package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/config"
)

func TestPoolConfigFrom(t *testing.T) {
	pc, err := poolConfigFrom(config.PostgresConfig{
		DSN:             "postgres://u:p@localhost:5432/accounts",
		MaxOpen:         8,
		MaxIdle:         2,
		ConnMaxLifetime: 10 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 10*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "accountsvc", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfigFrom_KeepsDSNSettings(t *testing.T) {
	pc, err := poolConfigFrom(config.PostgresConfig{
		DSN:     "postgres://u:p@localhost:5432/accounts?application_name=ops&pool_max_conns=3",
		MaxIdle: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), pc.MaxConns)
	assert.Equal(t, int32(0), pc.MinConns, "min conns above max conns is ignored")
	assert.Equal(t, "ops", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfigFrom_InvalidDSN(t *testing.T) {
	_, err := poolConfigFrom(config.PostgresConfig{DSN: "postgres://u:p@localhost:notaport/db"})
	assert.ErrorContains(t, err, "parse dsn")
}
