package postgres_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-admin/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-admin/pkg/config"
)

func TestPoolConfig_DesdeCampos(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "logs", SSLMode: "disable", MaxConns: 3}

	pc, err := postgres.PoolConfig(cfg, "inventario-admin")
	require.NoError(t, err)

	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "logs", pc.ConnConfig.Database)
	assert.Equal(t, int32(3), pc.MaxConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, "inventario-admin", pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.AfterConnect, "registra el codec NUMERIC")
}

func TestPoolConfig_ForzarIPv4ReemplazaElDial(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: 5432, User: "u", DBName: "logs", SSLMode: "disable", MaxConns: 1}

	sinIPv4, err := postgres.PoolConfig(cfg, "")
	require.NoError(t, err)
	cfg.ForceIPv4 = true
	conIPv4, err := postgres.PoolConfig(cfg, "")
	require.NoError(t, err)

	assert.NotNil(t, conIPv4.ConnConfig.DialFunc)
	assert.NotEqual(t, fmt.Sprintf("%p", sinIPv4.ConnConfig.DialFunc), fmt.Sprintf("%p", conIPv4.ConnConfig.DialFunc))
}

func TestPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	cfg := config.DBConfig{DatabaseURL: "postgres://a:b@remote:6543/bitacora?sslmode=disable", Host: "ignorado", MaxConns: 2}

	pc, err := postgres.PoolConfig(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "remote", pc.ConnConfig.Host)
	assert.Equal(t, "bitacora", pc.ConnConfig.Database)
	assert.NotContains(t, pc.ConnConfig.RuntimeParams, "application_name")
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := postgres.PoolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"}, "")
	assert.Error(t, err)
}
