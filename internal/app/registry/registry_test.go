package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

type fakeClient struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
}

func newFakeClient(id string) *fakeClient { return &fakeClient{id: id} }

func (c *fakeClient) ConnID() string { return c.id }

func (c *fakeClient) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) Close() {}

func (c *fakeClient) sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestBindResolve(t *testing.T) {
	r := NewRegistry()
	c := newFakeClient("conn-1")
	r.Bind("alice", c, domain.DisplayInfo{Username: "Alice", IsOnline: true})

	if got := r.Resolve("alice"); got != c {
		t.Fatalf("Resolve(alice) = %v, want the bound client", got)
	}
	if got := r.Resolve("bob"); got != nil {
		t.Fatalf("Resolve(bob) = %v, want nil for unbound user", got)
	}
}

// A second bind for the same user supersedes the first: resolve must
// return the newer connection.
func TestRebindLastBindWins(t *testing.T) {
	r := NewRegistry()
	c1 := newFakeClient("conn-1")
	c2 := newFakeClient("conn-2")

	r.Bind("alice", c1, domain.DisplayInfo{})
	r.Bind("alice", c2, domain.DisplayInfo{})

	if got := r.Resolve("alice"); got != c2 {
		t.Fatalf("Resolve after rebind returned the superseded client")
	}
	if ids := r.Snapshot(); len(ids) != 1 {
		t.Fatalf("Snapshot after rebind has %d entries, want 1", len(ids))
	}

	// The stale connection's disconnect must not unbind the new one.
	if _, ok := r.UnbindConn("conn-1"); ok {
		t.Fatal("UnbindConn for a superseded conn removed an entry")
	}
	if got := r.Resolve("alice"); got != c2 {
		t.Fatal("stale disconnect unbound the superseding connection")
	}
}

func TestUnbindIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Bind("alice", newFakeClient("conn-1"), domain.DisplayInfo{})

	r.Unbind("alice")
	r.Unbind("alice")
	r.Unbind("never-bound")

	if got := r.Resolve("alice"); got != nil {
		t.Fatalf("Resolve after unbind = %v, want nil", got)
	}
}

func TestUnbindConnOnce(t *testing.T) {
	r := NewRegistry()
	r.Bind("alice", newFakeClient("conn-1"), domain.DisplayInfo{})

	userID, ok := r.UnbindConn("conn-1")
	if !ok || userID != "alice" {
		t.Fatalf("UnbindConn = (%q, %v), want (alice, true)", userID, ok)
	}
	if _, ok := r.UnbindConn("conn-1"); ok {
		t.Fatal("second UnbindConn for the same conn removed an entry")
	}
	if got := r.Resolve("alice"); got != nil {
		t.Fatal("Resolve returned a client after UnbindConn")
	}
}

func TestSnapshotSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"carol", "alice", "bob"} {
		r.Bind(id, newFakeClient("conn-"+id), domain.DisplayInfo{Username: id, IsOnline: true})
	}

	ids := r.Snapshot()
	want := []string{"alice", "bob", "carol"}
	if len(ids) != len(want) {
		t.Fatalf("Snapshot has %d entries, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Snapshot[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	profiles := r.SnapshotProfiles()
	for i := range want {
		if profiles[i].UserID != want[i] {
			t.Fatalf("SnapshotProfiles[%d] = %q, want %q", i, profiles[i].UserID, want[i])
		}
		if !profiles[i].IsOnline {
			t.Fatalf("SnapshotProfiles[%d] not marked online", i)
		}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	r := NewRegistry()
	clients := make([]*fakeClient, 3)
	for i := range clients {
		clients[i] = newFakeClient(fmt.Sprintf("conn-%d", i))
		r.Bind(fmt.Sprintf("user-%d", i), clients[i], domain.DisplayInfo{})
	}

	r.Broadcast([]byte("hello"))

	for i, c := range clients {
		if c.sent() != 1 {
			t.Fatalf("client %d received %d frames, want 1", i, c.sent())
		}
	}
}

func TestTouchUpdatesLastSeen(t *testing.T) {
	r := NewRegistry()
	r.Bind("alice", newFakeClient("conn-1"), domain.DisplayInfo{})

	before := r.LastSeen("alice")
	if before.IsZero() {
		t.Fatal("LastSeen zero right after bind")
	}
	r.Touch("alice")
	if r.LastSeen("alice").Before(before) {
		t.Fatal("Touch moved lastSeen backwards")
	}
	r.Touch("unknown") // must not panic
	if !r.LastSeen("unknown").IsZero() {
		t.Fatal("LastSeen for unbound user not zero")
	}
}

// Concurrent binds, unbinds and reads must not race or corrupt the map.
// Run with -race.
func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n%8)
			connID := fmt.Sprintf("conn-%d", n)
			r.Bind(userID, newFakeClient(connID), domain.DisplayInfo{})
			r.Resolve(userID)
			r.Snapshot()
			r.Touch(userID)
			if n%2 == 0 {
				r.Unbind(userID)
			} else {
				r.UnbindConn(connID)
			}
		}(i)
	}
	wg.Wait()
}
