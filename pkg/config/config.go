package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "O2C"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Kafka        KafkaConfig
	Outbox       OutboxConfig
	Consumer     ConsumerConfig
	Provider     ProviderConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"O2C_APP_ENV" default:"dev"`
	Port         string `envconfig:"O2C_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"O2C_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"O2C_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"O2C_SERVICE_KIND" default:"order-service"`
}

type DBConfig struct {
	DSN    string `envconfig:"O2C_DB_DSN" required:"true"`
	Driver string `envconfig:"O2C_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"O2C_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"O2C_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"O2C_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"O2C_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type KafkaConfig struct {
	Brokers       string `envconfig:"O2C_KAFKA_BROKERS" default:"localhost:9092"`
	ClientID      string `envconfig:"O2C_KAFKA_CLIENT_ID" default:"o2c"`
	EnsureTopics  bool   `envconfig:"O2C_KAFKA_ENSURE_TOPICS" default:"false"`
	Partitions    int32  `envconfig:"O2C_KAFKA_PARTITIONS" default:"3"`
	CheckoutGroup string `envconfig:"O2C_KAFKA_CHECKOUT_GROUP" default:"checkout-service"`
	OrderGroup    string `envconfig:"O2C_KAFKA_ORDER_GROUP" default:"order-service"`
	PaymentGroup  string `envconfig:"O2C_KAFKA_PAYMENT_GROUP" default:"payment-service"`
}

// BrokerList splits the comma separated broker string.
func (k KafkaConfig) BrokerList() []string {
	parts := strings.Split(k.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"O2C_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"O2C_OUTBOX_POLL_INTERVAL" default:"2s"`
	ClaimLease     time.Duration `envconfig:"O2C_OUTBOX_CLAIM_LEASE" default:"5m"`
	PublishRetries int           `envconfig:"O2C_OUTBOX_PUBLISH_RETRIES" default:"5"`
	PublishTimeout time.Duration `envconfig:"O2C_OUTBOX_PUBLISH_TIMEOUT" default:"15s"`
}

type ConsumerConfig struct {
	MaxRetries     int           `envconfig:"O2C_CONSUMER_MAX_RETRIES" default:"8"`
	BaseDelay      time.Duration `envconfig:"O2C_CONSUMER_BASE_DELAY" default:"250ms"`
	MaxDelay       time.Duration `envconfig:"O2C_CONSUMER_MAX_DELAY" default:"20s"`
	StreamMaxDelay time.Duration `envconfig:"O2C_CONSUMER_STREAM_MAX_DELAY" default:"30s"`
}

type ProviderConfig struct {
	Enabled       bool          `envconfig:"O2C_PROVIDER_ENABLED" default:"false"`
	BaseURL       string        `envconfig:"O2C_PROVIDER_BASE_URL" default:"http://localhost:8084"`
	WebhookURL    string        `envconfig:"O2C_PROVIDER_WEBHOOK_URL" default:"http://localhost:8083/webhooks/provider/payments"`
	CallbackDelay time.Duration `envconfig:"O2C_PROVIDER_CALLBACK_DELAY" default:"2s"`
	QueueSize     int           `envconfig:"O2C_PROVIDER_QUEUE_SIZE" default:"256"`
	HTTPTimeout   time.Duration `envconfig:"O2C_PROVIDER_HTTP_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"O2C_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"O2C_AUTO_MIGRATE" default:"false"`
}
