package events

// Kafka topic names. DLQ topics hold records that exhausted processing
// retries, enriched with origin headers.
const (
	TopicOrderEvents        = "order.events.v1"
	TopicOrderEventsDLQ     = "order.events.dlq.v1"
	TopicCheckoutEvents     = "checkout.events.v1"
	TopicCheckoutEventsDLQ  = "checkout.events.dlq.v1"
	TopicPaymentRequests    = "payment.requests.v1"
	TopicPaymentRequestsDLQ = "payment.requests.dlq.v1"
	TopicPaymentEvents      = "payment.events.v1"
	TopicPaymentEventsDLQ   = "payment.events.dlq.v1"
)

// Record and HTTP headers used for correlation and DLQ enrichment.
const (
	HeaderCorrelationID     = "x-correlation-id"
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderErrorClass        = "x-error-class"
)

// DLQTopicFor returns the dead letter topic paired with a business topic.
func DLQTopicFor(topic string) string {
	switch topic {
	case TopicOrderEvents:
		return TopicOrderEventsDLQ
	case TopicCheckoutEvents:
		return TopicCheckoutEventsDLQ
	case TopicPaymentRequests:
		return TopicPaymentRequestsDLQ
	case TopicPaymentEvents:
		return TopicPaymentEventsDLQ
	default:
		return topic + ".dlq"
	}
}

// TopicForEventType resolves the destination topic of an outbox row from its
// event type.
func TopicForEventType(eventType string) (string, bool) {
	switch eventType {
	case TypeOrderCreated:
		return TopicOrderEvents, true
	case TypeCheckoutCompleted, TypeCheckoutFailed:
		return TopicCheckoutEvents, true
	case TypePaymentRequested:
		return TopicPaymentRequests, true
	case TypePaymentCompleted, TypePaymentFailed:
		return TopicPaymentEvents, true
	default:
		return "", false
	}
}
