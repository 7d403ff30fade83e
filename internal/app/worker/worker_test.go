package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

type fakeQueue struct {
	acked   []string
	deleted []string
}

func (f *fakeQueue) Publish(context.Context, []byte) error { return nil }
func (f *fakeQueue) Subscribe(context.Context, string, func(context.Context, string, []byte) error) error {
	return nil
}
func (f *fakeQueue) Ack(_ context.Context, _ string, messageID string) error {
	f.acked = append(f.acked, messageID)
	return nil
}
func (f *fakeQueue) Delete(_ context.Context, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

type fakeMessages struct {
	saved    []*domain.Message
	failWith error
}

func (f *fakeMessages) Save(_ context.Context, msg *domain.Message) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.saved = append(f.saved, msg)
	return nil
}

func entry(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(&domain.Message{ID: "m1", Sender: "alice", Receiver: "bob", Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestProcessMessageSavesAcksDeletes(t *testing.T) {
	q := &fakeQueue{}
	store := &fakeMessages{}
	w := NewPersistWorker(slog.Default(), q, store, "persisters")

	if err := w.ProcessMessage(context.Background(), "1-0", entry(t)); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if len(store.saved) != 1 || store.saved[0].ID != "m1" {
		t.Fatalf("saved %+v, want one message m1", store.saved)
	}
	if len(q.acked) != 1 || q.acked[0] != "1-0" {
		t.Fatalf("acked %v, want [1-0]", q.acked)
	}
	if len(q.deleted) != 1 || q.deleted[0] != "1-0" {
		t.Fatalf("deleted %v, want [1-0]", q.deleted)
	}
}

// A failed save must leave the entry pending so a later run retries it.
func TestProcessMessageSaveFailureLeavesPending(t *testing.T) {
	q := &fakeQueue{}
	store := &fakeMessages{failWith: errors.New("store down")}
	w := NewPersistWorker(slog.Default(), q, store, "persisters")

	if err := w.ProcessMessage(context.Background(), "1-0", entry(t)); err == nil {
		t.Fatal("ProcessMessage succeeded despite save failure")
	}
	if len(q.acked) != 0 {
		t.Fatalf("acked %v after a failed save, want none", q.acked)
	}
	if len(q.deleted) != 0 {
		t.Fatalf("deleted %v after a failed save, want none", q.deleted)
	}
}

// A payload that cannot decode will never succeed; it is acked so it does
// not poison the pending list.
func TestProcessMessageMalformedPayloadAcked(t *testing.T) {
	q := &fakeQueue{}
	store := &fakeMessages{}
	w := NewPersistWorker(slog.Default(), q, store, "persisters")

	if err := w.ProcessMessage(context.Background(), "1-0", []byte("{not json")); err == nil {
		t.Fatal("ProcessMessage accepted a malformed payload")
	}
	if len(store.saved) != 0 {
		t.Fatalf("saved %+v from a malformed payload", store.saved)
	}
	if len(q.acked) != 1 {
		t.Fatalf("acked %v, want the malformed entry acked", q.acked)
	}
}
