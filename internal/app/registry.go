package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/core"
	"github.com/lawline/consult/internal/domain"
)

var ErrServerFull = errors.New("connection limit reached")

// Connect binds an authenticated identity to its live connection. A second
// login for the same username replaces the registry entry; the superseded
// connection is closed after the swap so its teardown path sees itself
// already deregistered. The new connection receives an immediate snapshot
// before the global broadcast, so late joiners never wait for membership to
// change to learn who is available.
func (h *Hub) Connect(username string, conn core.SignalConnection) error {
	h.mu.Lock()
	old, replacing := h.conns[username]
	if !replacing && h.maxClients > 0 && len(h.conns) >= h.maxClients {
		h.mu.Unlock()
		return ErrServerFull
	}
	h.conns[username] = conn

	if frame, ok := encode(userListEvent{Type: "user_list", Lawyers: h.lawyersLocked()}); ok {
		_ = conn.TrySend(frame)
	}
	h.broadcastPresenceLocked()
	h.mu.Unlock()

	if replacing && old != conn {
		old.Close()
		log.Warn().Str("module", "app.hub").Str("username", username).Msg("replaced existing connection")
	}
	log.Info().Str("module", "app.hub").Str("username", username).Msg("connected")
	return nil
}

// Disconnect tears down the binding, but only if conn is still the current
// one; a connection superseded by a duplicate login must not evict its
// replacement. Calls involving the identity are dropped and any lawyer who
// was party to one goes back to ONLINE.
func (h *Hub) Disconnect(username string, conn core.SignalConnection) {
	h.mu.Lock()
	cur, ok := h.conns[username]
	if !ok || cur != conn {
		h.mu.Unlock()
		return
	}
	delete(h.conns, username)
	h.endCallsOfLocked(username)
	if u, ok := h.users[username]; ok && u.Role == domain.RoleLawyer {
		u.Status = domain.StatusOnline
	}
	h.broadcastPresenceLocked()
	h.mu.Unlock()
	log.Info().Str("module", "app.hub").Str("username", username).Msg("disconnected")
}

// Lookup reports the live connection for a username, if any.
func (h *Hub) Lookup(username string) (core.SignalConnection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[username]
	return c, ok
}

func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
