package contracts

import "context"

// BlockGate answers "has byUserID blocked userID". Every check is a fresh
// store lookup; the gate holds no cache. Callers must fail closed on
// error: an unanswerable check means no delivery.
type BlockGate interface {
	IsBlockedBy(ctx context.Context, userID, byUserID string) (bool, error)
}
