package contracts

import (
	"context"
)

// MessageQueue is the durable ingest path for chat messages. The router
// publishes before attempting live delivery; a worker consumes the stream
// and persists independently of delivery outcome.
type MessageQueue interface {
	// Publish appends a message payload to the stream.
	Publish(ctx context.Context, payload []byte) error
	// Subscribe starts the consumer-group read loop and invokes handler
	// per entry until ctx is done.
	Subscribe(ctx context.Context, group string, handler func(ctx context.Context, messageID string, data []byte) error) error
	// Ack confirms an entry after the handler persisted it.
	Ack(ctx context.Context, group, messageID string) error
	// Delete removes an acked entry to keep the stream small.
	Delete(ctx context.Context, messageID string) error
}
