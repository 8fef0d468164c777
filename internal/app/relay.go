package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/domain"
)

// Delivery is the internal outcome of a best-effort relay. It is never
// surfaced to the sender: an unreachable recipient is a silent drop, not an
// error.
type Delivery int

const (
	Delivered Delivery = iota
	Dropped
)

// RouteMessage relays one chat line. The timestamp is stamped here; whatever
// the sender claimed is ignored.
func (h *Hub) RouteMessage(from, to, text string) Delivery {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[to]
	if !ok {
		return Dropped
	}
	frame, ok := encode(messageEvent{
		Type:      "message",
		From:      from,
		Message:   text,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
	if !ok {
		return Dropped
	}
	if err := conn.TrySend(frame); err != nil {
		return Dropped
	}
	return Delivered
}

// CallRequest relays the legacy call initiation. When the callee is a lawyer
// it is the one place that marks them BUSY; the SDP offer path deliberately
// never does.
func (h *Hub) CallRequest(from, to string) Delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[to]
	if !ok {
		return Dropped
	}
	frame, ok := encode(peerEvent{Type: "call_request", From: from})
	if !ok {
		return Dropped
	}
	_ = conn.TrySend(frame)

	h.calls[pairOf(from, to)] = &domain.Call{Caller: from, Callee: to, State: domain.CallRinging}
	if callee, ok := h.users[to]; ok && callee.Role == domain.RoleLawyer {
		callee.Status = domain.StatusBusy
		h.broadcastPresenceLocked()
	}
	log.Info().Str("module", "app.hub").Str("from", from).Str("to", to).Msg("call request")
	return Delivered
}

// CallAccept relays the legacy acceptance back to the caller as a synthetic
// call_accepted event.
func (h *Hub) CallAccept(from, to string) Delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[to]
	if !ok {
		return Dropped
	}
	frame, ok := encode(peerEvent{Type: "call_accepted", From: from})
	if !ok {
		return Dropped
	}
	_ = conn.TrySend(frame)

	if call, ok := h.calls[pairOf(from, to)]; ok {
		call.State = domain.CallActive
	}
	return Delivered
}

// CallEnd tears the call down from either side. The other party is told via
// call_ended, and any lawyer among the two goes back to ONLINE whether they
// terminated or were hung up on.
func (h *Hub) CallEnd(from, to string) Delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivery := Dropped
	if conn, ok := h.conns[to]; ok {
		if frame, ok := encode(peerEvent{Type: "call_ended", From: from}); ok {
			_ = conn.TrySend(frame)
			delivery = Delivered
		}
	}
	delete(h.calls, pairOf(from, to))
	flipped := false
	for _, member := range [...]string{from, to} {
		if u, ok := h.users[member]; ok && u.Role == domain.RoleLawyer && u.Status != domain.StatusOnline {
			u.Status = domain.StatusOnline
			flipped = true
		}
	}
	if flipped {
		h.broadcastPresenceLocked()
	}
	log.Info().Str("module", "app.hub").Str("from", from).Str("to", to).Msg("call ended")
	return delivery
}

// RelaySignal forwards a WebRTC negotiation payload (offer, answer,
// ice-candidate) verbatim, tagged with the sender. The hub applies no
// interpretation to SDP or candidate contents; it only tracks the pair's
// call state for bookkeeping.
func (h *Hub) RelaySignal(from, to string, raw []byte) Delivery {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Dropped
	}
	fromJSON, _ := json.Marshal(from)
	payload["from"] = fromJSON

	h.mu.Lock()
	defer h.mu.Unlock()

	var kind string
	_ = json.Unmarshal(payload["type"], &kind)
	key := pairOf(from, to)
	switch kind {
	case "offer":
		if _, inCall := h.calls[key]; !inCall {
			h.calls[key] = &domain.Call{Caller: from, Callee: to, State: domain.CallOffered}
		}
	case "answer":
		if call, ok := h.calls[key]; ok {
			call.State = domain.CallActive
		}
	}

	conn, ok := h.conns[to]
	if !ok {
		return Dropped
	}
	frame, ok := encode(payload)
	if !ok {
		return Dropped
	}
	if err := conn.TrySend(frame); err != nil {
		return Dropped
	}
	return Delivered
}

// CallState reports the tracked state for an unordered pair of usernames.
func (h *Hub) CallState(a, b string) domain.CallState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if call, ok := h.calls[pairOf(a, b)]; ok {
		return call.State
	}
	return domain.CallIdle
}

// endCallsOfLocked drops every call involving username and restores any
// lawyer participant to ONLINE. Runs on disconnect.
func (h *Hub) endCallsOfLocked(username string) {
	for key, call := range h.calls {
		peer, ok := call.Peer(username)
		if !ok {
			continue
		}
		delete(h.calls, key)
		if conn, ok := h.conns[peer]; ok {
			if frame, ok := encode(peerEvent{Type: "call_ended", From: username}); ok {
				_ = conn.TrySend(frame)
			}
		}
		for _, member := range [...]string{username, peer} {
			if u, ok := h.users[member]; ok && u.Role == domain.RoleLawyer {
				u.Status = domain.StatusOnline
			}
		}
	}
}
