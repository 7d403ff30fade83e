package domain

import (
	"context"
)

// UserRepository is the profile/block-list collaborator. The real-time
// layer reads profiles and flips the persisted online flag; everything
// else about users belongs to the REST API.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*UserProfile, error)
	// SetOnlineStatus updates isOnline and lastActive. Called on every
	// bind/unbind so the REST side serves a consistent online view.
	SetOnlineStatus(ctx context.Context, id string, online bool) error
}

// MessageRepository durably stores messages. Persistence outcome is
// independent of live delivery: a message is stored even when nobody is
// online to receive it.
type MessageRepository interface {
	Save(ctx context.Context, msg *Message) error
}

// ChatRoomRepository resolves room membership for group fan-out.
type ChatRoomRepository interface {
	ListMembers(ctx context.Context, roomID string) ([]string, error)
}
