package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// ChatRoomRepo resolves room membership for group fan-out.
type ChatRoomRepo struct {
	col *mongo.Collection
}

func NewChatRoomRepository(db *mongo.Database) *ChatRoomRepo {
	return &ChatRoomRepo{col: db.Collection("chatrooms")}
}

type roomDoc struct {
	ID      string   `bson:"_id"`
	Name    string   `bson:"name"`
	Members []string `bson:"members"`
}

func (r *ChatRoomRepo) ListMembers(ctx context.Context, roomID string) ([]string, error) {
	var doc roomDoc
	err := r.col.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room %s: %w", roomID, err)
	}
	return doc.Members, nil
}
