package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-a:9092, ,broker-b:9092 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "broker-a:9092" || cfg.Brokers[1] != "broker-b:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != DefaultProducerCompression {
		t.Errorf("ProducerCompression = %q", cfg.ProducerCompression)
	}
	if cfg.ConsumerStartOffset != DefaultConsumerStartOffset {
		t.Errorf("ConsumerStartOffset = %d", cfg.ConsumerStartOffset)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown compression", EnvKafkaProducerCompression, "brotli", "ProducerCompression"},
		{"bad acks", EnvKafkaProducerRequireAcks, "2", "ProducerRequireAcks"},
		{"bad start offset", EnvKafkaConsumerStartOffset, "42", "ConsumerStartOffset"},
		{"negative retries", EnvKafkaConsumerMaxRetries, "-1", "ConsumerMaxRetries"},
		{"zero publish timeout", EnvKafkaPublishTimeout, "0s", "PublishTimeout"},
		{"no brokers", EnvKafkaBrokers, " , ", "broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
