package kafka_config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{DefaultKafkaBrokers}, cfg.Brokers)
	assert.Equal(t, DefaultConsumerMaxRetries, cfg.ConsumerMaxRetries)
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
}

func TestLoad_SplitsBrokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
}

func TestLoad_InvalidCompression(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerCompression")
}

func TestValidate_HeartbeatAboveSession(t *testing.T) {
	t.Setenv(EnvKafkaConsumerHeartbeatInterval, "30s")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConsumerHeartbeatInterval")
}
