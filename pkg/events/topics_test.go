package events

import "testing"

func TestDLQTopicPairs(t *testing.T) {
	pairs := map[string]string{
		TopicOrderEvents:     TopicOrderEventsDLQ,
		TopicCheckoutEvents:  TopicCheckoutEventsDLQ,
		TopicPaymentRequests: TopicPaymentRequestsDLQ,
		TopicPaymentEvents:   TopicPaymentEventsDLQ,
	}
	for topic, want := range pairs {
		if got := DLQTopicFor(topic); got != want {
			t.Fatalf("dlq for %s: expected %s got %s", topic, want, got)
		}
	}
	if got := DLQTopicFor("some.other.topic"); got != "some.other.topic.dlq" {
		t.Fatalf("unexpected fallback dlq topic %s", got)
	}
}

func TestTopicForEventType(t *testing.T) {
	cases := map[string]string{
		TypeOrderCreated:      TopicOrderEvents,
		TypeCheckoutCompleted: TopicCheckoutEvents,
		TypeCheckoutFailed:    TopicCheckoutEvents,
		TypePaymentRequested:  TopicPaymentRequests,
		TypePaymentCompleted:  TopicPaymentEvents,
		TypePaymentFailed:     TopicPaymentEvents,
	}
	for eventType, want := range cases {
		topic, ok := TopicForEventType(eventType)
		if !ok {
			t.Fatalf("no topic resolved for %s", eventType)
		}
		if topic != want {
			t.Fatalf("topic for %s: expected %s got %s", eventType, want, topic)
		}
	}
	if _, ok := TopicForEventType("order.deleted"); ok {
		t.Fatal("unknown event type must not resolve")
	}
}
