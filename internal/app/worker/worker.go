package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/contracts"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// PersistWorker drains the message ingest stream into the document store.
// It runs independently of live delivery: a store outage delays
// persistence but never blocks connection handlers.
type PersistWorker struct {
	log      *slog.Logger
	queue    contracts.MessageQueue
	messages domain.MessageRepository
	group    string
}

func NewPersistWorker(
	log *slog.Logger,
	queue contracts.MessageQueue,
	messages domain.MessageRepository,
	group string,
) *PersistWorker {
	return &PersistWorker{
		log:      log,
		queue:    queue,
		messages: messages,
		group:    group,
	}
}

// Run blocks on the consumer loop until ctx is done.
func (w *PersistWorker) Run(ctx context.Context) error {
	w.log.InfoContext(ctx, "worker - run - consuming message stream", "group", w.group)
	return w.queue.Subscribe(ctx, w.group, w.ProcessMessage)
}

// ProcessMessage persists one stream entry, acks it, then deletes it.
// A failed save leaves the entry pending so a later run retries it.
func (w *PersistWorker) ProcessMessage(ctx context.Context, messageID string, raw []byte) error {
	var msg domain.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		w.log.Error("worker - process message - malformed payload", "message_id", messageID)
		// Ack anyway: a payload that cannot decode will never succeed.
		_ = w.queue.Ack(ctx, w.group, messageID)
		return err
	}
	if err := w.messages.Save(ctx, &msg); err != nil {
		w.log.ErrorContext(ctx, "worker - process message - save failed", "message_id", messageID, "err", err)
		return err
	}
	if err := w.queue.Ack(ctx, w.group, messageID); err != nil {
		w.log.ErrorContext(ctx, "worker - process message - ack failed", "message_id", messageID, "err", err)
		return err
	}
	if err := w.queue.Delete(ctx, messageID); err != nil {
		// Already persisted and acked; a leftover entry is only garbage.
		w.log.ErrorContext(ctx, "worker - process message - delete failed", "message_id", messageID, "err", err)
	}
	return nil
}
