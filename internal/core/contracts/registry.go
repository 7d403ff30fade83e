package contracts

import (
	"time"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// Registry is the single source of truth for "who is online". It maps an
// authenticated userID to at most one live connection; a second bind for
// the same user replaces the first (last-bind-wins). All operations are
// safe under concurrent invocation from many connection handlers, and no
// reader observes a half-applied bind or unbind.
type Registry interface {
	// Bind upserts the binding for userID and stamps lastSeen.
	Bind(userID string, client Client, info domain.DisplayInfo)
	// Unbind removes the binding if present. Absent is a no-op, not an
	// error — disconnect may race with logout and both must be safe.
	Unbind(userID string)
	// UnbindConn removes the binding holding connID, used when the
	// transport drops without a logout event. Removes at most one entry;
	// a second call for the same conn reports ok=false.
	UnbindConn(connID string) (userID string, ok bool)
	// Resolve returns the live client for userID, or nil when the user is
	// unreachable. Callers treat nil as offline, never as an error.
	Resolve(userID string) Client
	// Touch refreshes lastSeen for a bound user (heartbeat).
	Touch(userID string)
	// Snapshot returns the bound userIDs, sorted.
	Snapshot() []string
	// SnapshotProfiles returns the full presence view for the onlineUsers
	// broadcast, sorted by userID, built from the cached display info.
	SnapshotProfiles() []domain.OnlineUser
	// Broadcast sends a frame to every bound connection.
	Broadcast(data []byte)
	// LastSeen reports the binding's lastSeen stamp, zero when unbound.
	LastSeen(userID string) time.Time
}

// Client is the minimal surface the registry and router need to address
// one WebSocket connection.
type Client interface {
	ConnID() string
	Send(data []byte) error
	Close()
}
