package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

func TestIsBlockedBy(t *testing.T) {
	users := newFakeUsers(profile("alice"), profile("bob", "alice"))
	gate := NewBlockGateService(slog.Default(), users)

	blocked, err := gate.IsBlockedBy(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("IsBlockedBy: %v", err)
	}
	if !blocked {
		t.Fatal("alice is on bob's list but IsBlockedBy returned false")
	}

	blocked, err = gate.IsBlockedBy(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("IsBlockedBy: %v", err)
	}
	if blocked {
		t.Fatal("bob is not on alice's list but IsBlockedBy returned true")
	}
}

func TestIsBlockedByStoreError(t *testing.T) {
	users := newFakeUsers(profile("alice"))
	users.failWith = errors.New("store unreachable")
	gate := NewBlockGateService(slog.Default(), users)

	if _, err := gate.IsBlockedBy(context.Background(), "alice", "bob"); err == nil {
		t.Fatal("store failure did not propagate")
	}
}

func TestIsBlockedByUnknownUser(t *testing.T) {
	gate := NewBlockGateService(slog.Default(), newFakeUsers())
	_, err := gate.IsBlockedBy(context.Background(), "alice", "ghost")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
