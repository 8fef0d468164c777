package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/domain"
)

var (
	ErrUserExists  = errors.New("username already exists")
	ErrUnknownUser = errors.New("unknown user")
)

// CreateUser records a new identity. The password is already hashed by the
// caller; the hub never sees plaintext credentials.
func (h *Hub) CreateUser(username string, role domain.Role, passwordHash []byte) (domain.User, error) {
	u, err := domain.NewUser(username, role, passwordHash)
	if err != nil {
		return domain.User{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.users[username]; ok {
		return domain.User{}, ErrUserExists
	}
	h.users[username] = u
	log.Info().Str("module", "app.hub").Str("username", username).Str("role", string(role)).Msg("created user")
	return *u, nil
}

// GetUser returns a copy; mutations go through SetStatus only.
func (h *Hub) GetUser(username string) (domain.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if u, ok := h.users[username]; ok {
		return *u, true
	}
	return domain.User{}, false
}

// SetStatus applies an external availability flip (the REST status endpoint)
// and pushes the updated list to everyone in the same critical section.
func (h *Hub) SetStatus(username string, status domain.Status) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.users[username]
	if !ok {
		return ErrUnknownUser
	}
	u.Status = status
	log.Info().Str("module", "app.hub").Str("username", username).Str("status", string(status)).Msg("status updated")
	h.broadcastPresenceLocked()
	return nil
}
