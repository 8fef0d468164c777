// Package app owns the shared mutable state of the relay: the identity
// table, the live connection registry, and the per-pair call ledger. One
// lock guards all three so a presence broadcast always observes a
// consistent view of who is connected and how busy they are.
package app

import (
	"sync"
	"time"

	"github.com/lawline/consult/internal/core"
	"github.com/lawline/consult/internal/domain"
)

type pairKey struct {
	a, b string
}

func pairOf(x, y string) pairKey {
	if x < y {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

type Hub struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	conns map[string]core.SignalConnection
	calls map[pairKey]*domain.Call

	maxClients int
	now        func() time.Time
}

func NewHub(maxClients int) *Hub {
	return &Hub{
		users:      make(map[string]*domain.User),
		conns:      make(map[string]core.SignalConnection),
		calls:      make(map[pairKey]*domain.Call),
		maxClients: maxClients,
		now:        time.Now,
	}
}
