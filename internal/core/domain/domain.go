package domain

import (
	"time"
)

// UserProfile is the persisted identity as the user store returns it.
// BlockedUsers is the asymmetric block list: the set of userIDs this
// user has blocked.
type UserProfile struct {
	ID             string
	Username       string
	ProfilePicture string
	IsOnline       bool
	LastActive     time.Time
	BlockedUsers   []string
}

// Blocked reports whether the profile's owner has blocked userID.
func (p *UserProfile) Blocked(userID string) bool {
	for _, id := range p.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// DisplayInfo is the denormalized profile snapshot cached on a presence
// binding at join time, so presence broadcasts never hit the store.
type DisplayInfo struct {
	Username       string
	ProfilePicture string
	IsOnline       bool
}

// Message is a chat entry as persisted by the message store. Receiver is
// set for direct messages, ChatRoom for room messages; exactly one of the
// two is non-empty.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	Sender    string    `json:"sender" bson:"sender"`
	Receiver  string    `json:"receiver,omitempty" bson:"receiver,omitempty"`
	ChatRoom  string    `json:"chatRoom,omitempty" bson:"chatRoom,omitempty"`
	Content   string    `json:"content" bson:"content"`
	MediaURL  string    `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	MediaType string    `json:"mediaType,omitempty" bson:"mediaType,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ChatRoom represents a group conversation. Only the member set matters
// to the real-time layer; room CRUD lives in the REST API.
type ChatRoom struct {
	ID      string
	Name    string
	Members []string
}
