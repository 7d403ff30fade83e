package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

// BlockGateService answers block-list queries against the user store. No
// caching: the check gates a per-message operation, so a fresh lookup per
// call is acceptable and keeps the view consistent with the REST side.
type BlockGateService struct {
	users domain.UserRepository
	log   *slog.Logger
}

func NewBlockGateService(log *slog.Logger, users domain.UserRepository) *BlockGateService {
	return &BlockGateService{users: users, log: log}
}

// IsBlockedBy reports whether byUserID has userID on their block list.
// Store errors propagate so the router can fail closed.
func (g *BlockGateService) IsBlockedBy(ctx context.Context, userID, byUserID string) (bool, error) {
	profile, err := g.users.GetUserByID(ctx, byUserID)
	if err != nil {
		return false, fmt.Errorf("block gate lookup for %s: %w", byUserID, err)
	}
	return profile.Blocked(userID), nil
}
