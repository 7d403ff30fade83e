package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// MessageRepo stores chat messages. The real-time layer only writes;
// history reads belong to the REST API.
type MessageRepo struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepo {
	return &MessageRepo{col: db.Collection("messages")}
}

func (r *MessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	if _, err := r.col.InsertOne(ctx, msg); err != nil {
		// Duplicate _id means the stream delivered the entry twice; the
		// first write already holds the message.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}
	return nil
}
