package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/core"
	"github.com/lawline/consult/internal/domain"
)

// LawyerPresence is one row of the broadcast availability list.
type LawyerPresence struct {
	Username string        `json:"username"`
	Status   domain.Status `json:"status"`
}

type userListEvent struct {
	Type    string           `json:"type"`
	Lawyers []LawyerPresence `json:"lawyers"`
}

type messageEvent struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// peerEvent covers the from-only notifications of the legacy call flow:
// call_request, call_accepted, call_ended.
type peerEvent struct {
	Type string `json:"type"`
	From string `json:"from"`
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("encode event")
		return nil, false
	}
	return core.Frame(b), true
}
