package observability

import "context"

// Publisher is the sink for websocket lifecycle events. The rabbitmq
// package satisfies it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// EventEnvelope wraps a websocket lifecycle event for the bus.
type EventEnvelope struct {
	EventType string            `json:"event_type"`
	EventName string            `json:"event_name"`
	Payload   interface{}       `json:"payload"`
	Headers   map[string]string `json:"headers,omitempty"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

var defaultPublisher Publisher

// SetPublisher installs the process-wide event publisher. Leaving it
// unset makes PublishEvent a no-op.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent sends an event envelope to the bus. Publish failure is
// counted but never surfaced to the websocket path that triggered it.
func PublishEvent(ctx context.Context, routingKey string, envelope EventEnvelope, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}

	envelope.Headers = headers
	err := defaultPublisher.Publish(ctx, routingKey, envelope)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}
