package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// UserRepo reads profiles and block lists from the users collection and
// keeps the persisted online flag in step with the presence registry.
type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection("users")}
}

type userDoc struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	ProfilePicture string    `bson:"profilePicture,omitempty"`
	IsOnline       bool      `bson:"isOnline"`
	LastActive     time.Time `bson:"lastActive,omitempty"`
	BlockedUsers   []string  `bson:"blockedUsers,omitempty"`
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	if id == "" {
		return nil, domain.ErrInvalidUserID
	}
	var doc userDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &domain.UserProfile{
		ID:             doc.ID,
		Username:       doc.Username,
		ProfilePicture: doc.ProfilePicture,
		IsOnline:       doc.IsOnline,
		LastActive:     doc.LastActive,
		BlockedUsers:   doc.BlockedUsers,
	}, nil
}

func (r *UserRepo) SetOnlineStatus(ctx context.Context, id string, online bool) error {
	if id == "" {
		return domain.ErrInvalidUserID
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isOnline": online, "lastActive": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set online status for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
