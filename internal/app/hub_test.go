package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lawline/consult/internal/core"
	"github.com/lawline/consult/internal/domain"
)

var errConnDown = errors.New("connection down")

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	broken bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.broken {
		return errConnDown
	}
	buf := make(core.Frame, len(fr))
	copy(buf, fr)
	f.frames = append(f.frames, buf)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// events decodes every received frame into a generic map.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("undecodable frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeConn) lastOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	evs := f.eventsOfType(t, typ)
	if len(evs) == 0 {
		t.Fatalf("no %q event received", typ)
	}
	return evs[len(evs)-1]
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

var testTime = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestHub() *Hub {
	h := NewHub(0)
	h.now = func() time.Time { return testTime }
	return h
}

func mustCreateUser(t *testing.T, h *Hub, username string, role domain.Role) {
	t.Helper()
	if _, err := h.CreateUser(username, role, []byte("x")); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
}

func mustConnect(t *testing.T, h *Hub, username string) *fakeConn {
	t.Helper()
	c := &fakeConn{}
	if err := h.Connect(username, c); err != nil {
		t.Fatalf("Connect(%s): %v", username, err)
	}
	return c
}

func lawyersIn(t *testing.T, ev map[string]any) map[string]string {
	t.Helper()
	raw, ok := ev["lawyers"].([]any)
	if !ok {
		t.Fatalf("user_list without lawyers array: %v", ev)
	}
	out := make(map[string]string, len(raw))
	for _, item := range raw {
		row := item.(map[string]any)
		out[row["username"].(string)] = row["status"].(string)
	}
	return out
}

func TestCreateUser(t *testing.T) {
	h := newTestHub()

	if _, err := h.CreateUser("alice", domain.RoleClient, []byte("h")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.CreateUser("alice", domain.RoleLawyer, []byte("h")); err != ErrUserExists {
		t.Fatalf("duplicate create: got %v, want ErrUserExists", err)
	}
	if _, err := h.CreateUser("", domain.RoleClient, []byte("h")); err != domain.ErrUsernameEmpty {
		t.Fatalf("empty username: got %v", err)
	}

	u, ok := h.GetUser("alice")
	if !ok || u.Role != domain.RoleClient || u.Status != "" {
		t.Fatalf("stored client wrong: %+v ok=%v", u, ok)
	}

	mustCreateUser(t, h, "saul", domain.RoleLawyer)
	if u, _ := h.GetUser("saul"); u.Status != domain.StatusOnline {
		t.Fatalf("new lawyer status = %q, want ONLINE", u.Status)
	}
}
