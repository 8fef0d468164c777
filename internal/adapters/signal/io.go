package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/auth"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump is the per-connection receive loop. It ends only on transport
// close (or a rate-limit kick); the deferred teardown deregisters the
// connection and re-broadcasts presence.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, ident auth.Identity, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("username", ident.Username).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Hub.Disconnect(ident.Username, c)
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	limiter := newMessageLimiter(ctl.Cfg.RateLimit, ctl.Cfg.RateInterval)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("username", ident.Username).Msg("readPump read error")
				return
			}
			if !limiter.Allow(time.Now()) {
				writeClose(c.conn, websocket.ClosePolicyViolation, "rate limit exceeded")
				return
			}
			ctl.handleFrame(ident, data)
		}
	}
}

// handleFrame dispatches one inbound tagged message. Malformed frames and
// unknown tags are logged and survived; nothing a peer sends can take the
// connection down short of the transport itself failing.
func (ctl *Controller) handleFrame(ident auth.Identity, data []byte) {
	var env struct {
		Type    string `json:"type"`
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("username", ident.Username).Msg("bad json")
		return
	}

	switch env.Type {
	case "message":
		ctl.Hub.RouteMessage(ident.Username, env.To, env.Message)
	case "call_request":
		ctl.Hub.CallRequest(ident.Username, env.To)
	case "call_accept":
		ctl.Hub.CallAccept(ident.Username, env.To)
	case "call_end":
		ctl.Hub.CallEnd(ident.Username, env.To)
	case "offer", "answer", "ice-candidate":
		ctl.Hub.RelaySignal(ident.Username, env.To, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}
