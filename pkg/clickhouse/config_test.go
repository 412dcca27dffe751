package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	cfg := defaultConfig()
	WithHost("ch.local")(&cfg)
	WithPort(0)(&cfg)
	WithDatabase("")(&cfg)

	opts := cfg.options()
	assert.Equal(t, []string{"ch.local:9000"}, opts.Addr)
	assert.Equal(t, ch.Native, opts.Protocol)
	assert.Equal(t, "default", opts.Auth.Database)
	assert.Empty(t, opts.Settings)
}

func TestOptionsSettings(t *testing.T) {
	cfg := defaultConfig()
	for _, o := range []ClientOption{
		WithHost("10.0.0.5"),
		WithPort(8123),
		WithHTTP(true),
		WithDatabase("tradesim"),
		WithCredentials("svc", "pw"),
		WithAsyncInsert(true, true),
		WithMaxExecutionTime(30 * time.Second),
		WithTimeouts(time.Second, 3*time.Second),
	} {
		o(&cfg)
	}

	opts := cfg.options()
	assert.Equal(t, []string{"10.0.0.5:8123"}, opts.Addr)
	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, "svc", opts.Auth.Username)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
	assert.Equal(t, 1, opts.Settings["wait_for_async_insert"])
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background(), WithPort(9000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoHost))
}
