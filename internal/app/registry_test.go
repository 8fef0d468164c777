package app

import (
	"testing"

	"github.com/lawline/consult/internal/domain"
)

func TestConnectAndLookup(t *testing.T) {
	h := newTestHub()
	mustCreateUser(t, h, "alice", domain.RoleClient)

	if _, ok := h.Lookup("alice"); ok {
		t.Fatal("Lookup before Connect should miss")
	}

	c := mustConnect(t, h, "alice")
	got, ok := h.Lookup("alice")
	if !ok || got != c {
		t.Fatal("Lookup should return the registered connection")
	}

	h.Disconnect("alice", c)
	if _, ok := h.Lookup("alice"); ok {
		t.Fatal("Lookup after Disconnect should miss")
	}
}

func TestDuplicateLoginReplacesAndClosesOld(t *testing.T) {
	h := newTestHub()
	mustCreateUser(t, h, "alice", domain.RoleClient)

	first := mustConnect(t, h, "alice")
	second := mustConnect(t, h, "alice")

	if got, _ := h.Lookup("alice"); got != second {
		t.Fatal("last writer should win the registry entry")
	}
	if !first.isClosed() {
		t.Fatal("superseded connection should be force-closed")
	}

	// The stale connection's teardown must not evict its replacement.
	h.Disconnect("alice", first)
	if got, ok := h.Lookup("alice"); !ok || got != second {
		t.Fatal("stale teardown evicted the live connection")
	}

	h.Disconnect("alice", second)
	if _, ok := h.Lookup("alice"); ok {
		t.Fatal("live teardown should deregister")
	}
}

func TestConnectRespectsClientCap(t *testing.T) {
	h := NewHub(1)
	mustCreateUser(t, h, "alice", domain.RoleClient)
	mustCreateUser(t, h, "bob", domain.RoleClient)

	mustConnect(t, h, "alice")
	if err := h.Connect("bob", &fakeConn{}); err != ErrServerFull {
		t.Fatalf("over-cap connect: got %v, want ErrServerFull", err)
	}

	// Re-login of an already-registered identity is a replacement, not growth.
	if err := h.Connect("alice", &fakeConn{}); err != nil {
		t.Fatalf("replacement connect under cap: %v", err)
	}
	if h.ConnectedCount() != 1 {
		t.Fatalf("ConnectedCount = %d, want 1", h.ConnectedCount())
	}
}

func TestConnectSendsInitialSnapshot(t *testing.T) {
	h := newTestHub()
	mustCreateUser(t, h, "saul", domain.RoleLawyer)
	mustConnect(t, h, "saul")

	mustCreateUser(t, h, "walt", domain.RoleClient)
	c := mustConnect(t, h, "walt")

	evs := c.eventsOfType(t, "user_list")
	if len(evs) != 2 {
		// One immediate snapshot plus the registration broadcast.
		t.Fatalf("got %d user_list events on connect, want 2", len(evs))
	}
	if lawyers := lawyersIn(t, evs[0]); lawyers["saul"] != "ONLINE" {
		t.Fatalf("initial snapshot = %v, want saul ONLINE", lawyers)
	}
}

func TestDisconnectResetsLawyerStatus(t *testing.T) {
	h := newTestHub()
	mustCreateUser(t, h, "saul", domain.RoleLawyer)
	mustCreateUser(t, h, "walt", domain.RoleClient)
	lc := mustConnect(t, h, "saul")
	wc := mustConnect(t, h, "walt")

	h.CallRequest("walt", "saul")
	if u, _ := h.GetUser("saul"); u.Status != domain.StatusBusy {
		t.Fatalf("after call_request status = %q, want BUSY", u.Status)
	}

	wc.reset()
	h.Disconnect("saul", lc)
	if u, _ := h.GetUser("saul"); u.Status != domain.StatusOnline {
		t.Fatalf("after disconnect status = %q, want ONLINE", u.Status)
	}
	if lawyers := lawyersIn(t, wc.lastOfType(t, "user_list")); len(lawyers) != 0 {
		t.Fatalf("disconnected lawyer still advertised: %v", lawyers)
	}
}
