package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"spikeradar/internal/config"
)

func TestNewPoolRequiresDSN(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{})
	require.ErrorIs(t, err, ErrNoDSN)
}

func TestNewPoolRejectsMalformedDSN(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{DSN: "postgres://%zz"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse journal dsn")
}

func TestApplyPoolLimits(t *testing.T) {
	poolCfg, err := pgxpool.ParseConfig("postgres://spike@localhost:5432/journal")
	require.NoError(t, err)

	applyPoolLimits(poolCfg, config.DatabaseConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
	})
	require.EqualValues(t, 4, poolCfg.MaxConns)
	require.EqualValues(t, 4, poolCfg.MinConns, "idle connections never exceed the pool size")
	require.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
}
