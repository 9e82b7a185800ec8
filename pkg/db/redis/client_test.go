package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"useridentity/pkg/db/redis"
)

func configFor(t *testing.T, addr string) *redis.Config {
	t.Helper()

	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg
}

func TestNewClient(t *testing.T) {
	t.Run("успешное подключение", func(t *testing.T) {
		srv := miniredis.RunT(t)

		client, err := redis.NewClient(context.Background(), configFor(t, srv.Addr()))
		require.NoError(t, err)
		require.NotNil(t, client.RawClient())

		assert.NoError(t, client.Close())
	})

	t.Run("сервер недоступен", func(t *testing.T) {
		srv := miniredis.RunT(t)
		cfg := configFor(t, srv.Addr())
		srv.Close()
		cfg.DialTimeout = 100 * time.Millisecond

		client, err := redis.NewClient(context.Background(), cfg)
		require.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), redis.ErrConnect)
	})
}
