// Package metrics registers the Prometheus counters shared by the services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConsumerProcessed counts records a consumer finished with, by outcome
	// (applied, duplicate, dead_lettered).
	ConsumerProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "o2c_consumer_processed_total",
		Help: "Records processed by consumer and outcome.",
	}, []string{"consumer", "outcome"})

	// ConsumerRetries counts handler retries before success or dead letter.
	ConsumerRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "o2c_consumer_retries_total",
		Help: "Handler retries by consumer.",
	}, []string{"consumer"})

	// OutboxPublished counts outbox rows published to Kafka.
	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "o2c_outbox_published_total",
		Help: "Outbox events published by event type.",
	}, []string{"event_type"})

	// OutboxPublishFailures counts publish attempts that errored.
	OutboxPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "o2c_outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
