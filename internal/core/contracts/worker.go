package contracts

import "context"

// PersistWorker drains the message stream into the document store.
type PersistWorker interface {
	// Run starts the consumer loop; returns when ctx is done.
	Run(ctx context.Context) error
	// ProcessMessage persists one stream entry, then acks and deletes it.
	ProcessMessage(ctx context.Context, messageID string, raw []byte) error
}
