package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"physician-service/internal/core/config"
	"physician-service/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestSamplePhysiciansAreValid(t *testing.T) {
	v := service.NewValidator()
	for _, p := range SamplePhysicians() {
		assert.Empty(t, v.Validate(&p), p.Email)
	}
}

func TestNewWithMemoryStoreAndSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "memory"

	a, cleanup, err := New(cfg, zap.NewNop())
	defer cleanup()
	require.NoError(t, err)
	assert.Nil(t, a.DB)
	assert.Nil(t, a.Cache)
	assert.Empty(t, a.Checks())

	ctx := context.Background()
	n, err := Seed(ctx, a.Write, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(SamplePhysicians()), n)

	// 再次执行全部跳过
	n, err = Seed(ctx, a.Write, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := a.Read.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(SamplePhysicians()))
}

func TestNewWithSQLiteAndRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = "file:app_test?mode=memory&cache=shared"
	cfg.DB.MaxOpenConns = 1
	cfg.DB.LogLevel = "silent"
	cfg.Redis.Addr = mr.Addr()

	a, cleanup, err := New(cfg, zap.NewNop())
	defer cleanup()
	require.NoError(t, err)
	require.NotNil(t, a.DB)
	require.NotNil(t, a.Cache)

	checks := a.Checks()
	require.Len(t, checks, 2)
	for name, check := range checks {
		assert.NoError(t, check(context.Background()), name)
	}

	n, err := Seed(context.Background(), a.Write, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(SamplePhysicians()), n)
}

func TestLimitsFromConfig(t *testing.T) {
	cfg := testConfig(t)
	lim := Limits(cfg)
	assert.Equal(t, cfg.Limits.Burst, lim.Burst)
	assert.Equal(t, cfg.Limits.MaxBodyBytes, lim.MaxBodyBytes)
	assert.Equal(t, int64(cfg.Limits.RequestTimeoutMs), lim.RequestTimeout.Milliseconds())
}
