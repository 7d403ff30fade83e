package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/contracts"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

var msgTracer = otel.Tracer("message-service")

// MessageService owns the durable side of message handling: it turns an
// accepted event into a persistence record and publishes it to the ingest
// stream. The persist worker drains the stream into the document store,
// so storage outcome never couples to live delivery.
type MessageService struct {
	queue contracts.MessageQueue
	log   *slog.Logger
}

func NewMessageService(log *slog.Logger, queue contracts.MessageQueue) *MessageService {
	return &MessageService{queue: queue, log: log}
}

// AcceptDirect records a 1:1 message for persistence. The returned
// message carries the final ID (client-supplied or generated).
func (s *MessageService) AcceptDirect(ctx context.Context, senderID string, p domain.PrivateMessagePayload) (*domain.Message, error) {
	msg := &domain.Message{
		ID:        p.MessageID,
		Sender:    senderID,
		Receiver:  p.ReceiverID,
		Content:   p.Content,
		CreatedAt: time.Now().UTC(),
	}
	if p.Media != nil {
		msg.MediaURL = p.Media.URL
		msg.MediaType = p.Media.Type
	}
	return s.accept(ctx, msg)
}

// AcceptRoom records a group message for persistence.
func (s *MessageService) AcceptRoom(ctx context.Context, senderID string, p domain.RoomMessagePayload) (*domain.Message, error) {
	msg := &domain.Message{
		ID:        p.MessageID,
		Sender:    senderID,
		ChatRoom:  p.RoomID,
		Content:   p.Content,
		CreatedAt: time.Now().UTC(),
	}
	if p.Media != nil {
		msg.MediaURL = p.Media.URL
		msg.MediaType = p.Media.Type
	}
	return s.accept(ctx, msg)
}

func (s *MessageService) accept(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	ctx, span := msgTracer.Start(ctx, "MessageService.Accept")
	defer span.End()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.sender", msg.Sender),
	)
	raw, _ := json.Marshal(msg)
	if err := s.queue.Publish(ctx, raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish to stream failed")
		s.log.ErrorContext(ctx, "messages - accept - publish to stream failed", "message_id", msg.ID, "err", err)
		return nil, err
	}
	s.log.DebugContext(ctx, "messages - accept - queued for persistence", "message_id", msg.ID)
	return msg, nil
}
