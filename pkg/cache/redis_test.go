package cache

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearning-analytics-console/pkg/config"
)

func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, l.Close())
	n, err := strconv.Atoi(port)
	require.NoError(t, err)
	return n
}

func TestNewRedisFailsWithinPingTimeout(t *testing.T) {
	cfg := config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        closedPort(t),
		DB:          2,
		DialTimeout: 100 * time.Millisecond,
		PingTimeout: 200 * time.Millisecond,
	}

	start := time.Now()
	client, err := NewRedis(context.Background(), cfg)

	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), cfg.Addr())
	require.Contains(t, err.Error(), "db 2")
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestNewRedisHonorsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedis(ctx, config.RedisConfig{Host: "127.0.0.1", Port: closedPort(t)})
	require.Error(t, err)
}
