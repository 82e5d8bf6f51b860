package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("O2C_DB_DSN", "postgres://localhost:5432/o2c")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.App.Env != AppEnvDev {
		t.Fatalf("expected dev env default, got %q", cfg.App.Env)
	}
	if !cfg.App.IsDev() || cfg.App.IsProd() {
		t.Fatal("dev env misclassified")
	}
	if cfg.Outbox.BatchSize != 50 {
		t.Fatalf("unexpected outbox batch size %d", cfg.Outbox.BatchSize)
	}
	if cfg.Consumer.MaxRetries != 8 {
		t.Fatalf("unexpected consumer max retries %d", cfg.Consumer.MaxRetries)
	}
	if cfg.Consumer.BaseDelay != 250*time.Millisecond {
		t.Fatalf("unexpected consumer base delay %s", cfg.Consumer.BaseDelay)
	}
	if cfg.Provider.Enabled {
		t.Fatal("provider must default to disabled")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("O2C_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DSN is missing")
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("O2C_DB_DSN", "postgres://localhost:5432/o2c")
	t.Setenv("O2C_APP_ENV", "prod")
	t.Setenv("O2C_KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("O2C_OUTBOX_POLL_INTERVAL", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatal("expected prod env")
	}
	if cfg.Outbox.PollInterval != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", cfg.Outbox.PollInterval)
	}

	brokers := cfg.Kafka.BrokerList()
	if len(brokers) != 2 || brokers[0] != "broker-1:9092" || brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected broker list %v", brokers)
	}
}
