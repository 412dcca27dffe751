package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ProducerOption
		wantErr bool
	}{
		{"defaults with brokers", []ProducerOption{WithBrokers([]string{"localhost:9092"})}, false},
		{"no brokers", nil, true},
		{"bad acks", []ProducerOption{WithBrokers([]string{"b:9092"}), WithRequiredAcks(2)}, true},
		{"bad codec", []ProducerOption{WithBrokers([]string{"b:9092"}), WithCompression("brotli")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultProducerConfig()
			for _, o := range tt.opts {
				o(&cfg)
			}
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProducerOptionsKeepDefaultsForZero(t *testing.T) {
	cfg := defaultProducerConfig()
	WithBatchSize(0)(&cfg)
	WithMaxAttempts(-1)(&cfg)
	WithBatchBytes(0)(&cfg)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 1<<20, cfg.BatchBytes)
}

func TestParseCompression(t *testing.T) {
	c, err := parseCompression("")
	require.NoError(t, err)
	assert.Equal(t, kafka.Gzip, c)

	c, err = parseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, kafka.Zstd, c)
}
