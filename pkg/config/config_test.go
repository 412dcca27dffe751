package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("analytics:\n  base_url: http://localhost:9000\n"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 3*time.Second, c.Analytics.Timeout)
	assert.Equal(t, 30*time.Second, c.Cache.TTL)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "@every 5m", c.Scheduler.Spec)
	assert.True(t, c.Metrics.Enabled)
}

func TestParseFileOverridesDefaults(t *testing.T) {
	raw := `
environment: production
server:
  port: 9090
analytics:
  base_url: http://analytics:8000
metrics:
  enabled: false
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`
	c, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestParseRequiresBaseURL(t *testing.T) {
	_, err := Parse([]byte("environment: test\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics.base_url")
}

func TestParseRejectsEmptyWatchlist(t *testing.T) {
	raw := "analytics:\n  base_url: http://x\nscheduler:\n  enabled: true\n"
	_, err := Parse([]byte(raw))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("analytics:\n  base_url: http://x\n"))
	require.NoError(t, err)

	t.Setenv("TRADESIM_ANALYTICS_BASE_URL", "http://from-env:8000")
	t.Setenv("TRADESIM_KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("TRADESIM_SERVER_PORT", "7070")

	require.NoError(t, c.ApplyEnv())
	assert.Equal(t, "http://from-env:8000", c.Analytics.BaseURL)
	assert.Equal(t, []string{"a:1", "b:2"}, c.Kafka.Brokers)
	assert.Equal(t, 7070, c.Server.Port)
}

func TestLoadWithEnvValidatesAfterOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err, "base_url is missing from the file")

	t.Setenv("TRADESIM_ANALYTICS_BASE_URL", "http://from-env:8000")
	t.Setenv("TRADESIM_KAFKA_ENABLED", "true")
	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "technical.snapshots", c.Kafka.SnapshotsTopic)
}
