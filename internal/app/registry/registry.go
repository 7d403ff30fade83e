package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/contracts"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// binding is one live connection bound to a user.
type binding struct {
	client   contracts.Client
	connID   string
	info     domain.DisplayInfo
	lastSeen time.Time
}

// Registry is the mutex-guarded presence map. It is the only shared
// mutable resource in the system: gateways mutate it on bind/unbind and
// the router reads it on every dispatch. Critical sections are short map
// operations; sends never happen under the lock.
type Registry struct {
	mu       sync.RWMutex
	users    map[string]*binding // userID → binding
	connUser map[string]string   // connID → userID
}

func NewRegistry() *Registry {
	return &Registry{
		users:    make(map[string]*binding),
		connUser: make(map[string]string),
	}
}

// Bind upserts the binding for userID. A prior binding for the same user
// is replaced (last-bind-wins) and its conn index entry dropped, so a
// late disconnect of the superseded connection cannot unbind the new one.
func (r *Registry) Bind(userID string, client contracts.Client, info domain.DisplayInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.users[userID]; ok {
		delete(r.connUser, prev.connID)
	}
	b := &binding{
		client:   client,
		connID:   client.ConnID(),
		info:     info,
		lastSeen: time.Now(),
	}
	r.users[userID] = b
	r.connUser[b.connID] = userID
}

// Unbind removes the user's binding. Unknown users are a no-op so that a
// disconnect racing an explicit logout is safe in either order.
func (r *Registry) Unbind(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.users[userID]; ok {
		delete(r.connUser, b.connID)
		delete(r.users, userID)
	}
}

// UnbindConn removes whichever binding holds connID. The conn index makes
// the second call for the same physical disconnect a cheap no-op.
func (r *Registry) UnbindConn(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.connUser[connID]
	if !ok {
		return "", false
	}
	// Only remove the user entry if it still points at this conn; a newer
	// bind may have superseded it.
	if b, bound := r.users[userID]; bound && b.connID == connID {
		delete(r.users, userID)
	}
	delete(r.connUser, connID)
	return userID, true
}

// Resolve returns the live client for userID, nil when unbound.
func (r *Registry) Resolve(userID string) contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.users[userID]; ok {
		return b.client
	}
	return nil
}

// Touch refreshes lastSeen on heartbeat. Unknown users are ignored.
func (r *Registry) Touch(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.users[userID]; ok {
		b.lastSeen = time.Now()
	}
}

// LastSeen returns the binding's lastSeen stamp, zero when unbound.
func (r *Registry) LastSeen(userID string) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.users[userID]; ok {
		return b.lastSeen
	}
	return time.Time{}
}

// Snapshot returns the bound userIDs, sorted.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// SnapshotProfiles builds the onlineUsers view from the display info
// cached at bind time, sorted by userID for deterministic broadcasts.
func (r *Registry) SnapshotProfiles() []domain.OnlineUser {
	r.mu.RLock()
	out := make([]domain.OnlineUser, 0, len(r.users))
	for id, b := range r.users {
		out = append(out, domain.OnlineUser{
			UserID:         id,
			Username:       b.info.Username,
			ProfilePicture: b.info.ProfilePicture,
			IsOnline:       b.info.IsOnline,
		})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Broadcast sends data to every bound connection. Clients are collected
// under the read lock and written to afterwards; a send failure only
// affects that client.
func (r *Registry) Broadcast(data []byte) {
	r.mu.RLock()
	clients := make([]contracts.Client, 0, len(r.users))
	for _, b := range r.users {
		clients = append(clients, b.client)
	}
	r.mu.RUnlock()
	for _, c := range clients {
		_ = c.Send(data)
	}
}
