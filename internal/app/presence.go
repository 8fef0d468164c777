package app

import (
	"github.com/lawline/consult/internal/domain"
)

// Lawyers is the point-in-time availability list: every lawyer with a live
// connection, with their current status. Recomputed on demand, never cached.
func (h *Hub) Lawyers() []LawyerPresence {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lawyersLocked()
}

func (h *Hub) lawyersLocked() []LawyerPresence {
	out := make([]LawyerPresence, 0, len(h.conns))
	for username, u := range h.users {
		if u.Role != domain.RoleLawyer {
			continue
		}
		if _, connected := h.conns[username]; !connected {
			continue
		}
		status := u.Status
		if status == "" {
			status = domain.StatusOnline
		}
		out = append(out, LawyerPresence{Username: username, Status: status})
	}
	return out
}

// broadcastPresenceLocked pushes a user_list event to every connection,
// clients included. Sends are non-blocking; a full or closed peer loses
// this snapshot and nothing else.
func (h *Hub) broadcastPresenceLocked() {
	frame, ok := encode(userListEvent{Type: "user_list", Lawyers: h.lawyersLocked()})
	if !ok {
		return
	}
	for _, conn := range h.conns {
		_ = conn.TrySend(frame)
	}
}
