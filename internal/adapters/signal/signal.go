package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/app"
	"github.com/lawline/consult/internal/auth"
	"github.com/lawline/consult/internal/config"
	"github.com/lawline/consult/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

const wsWriteWait = 1 * time.Second

type Controller struct {
	Hub    *app.Hub
	Tokens *auth.Tokens
	Cfg    *config.Config
}

func NewController(hub *app.Hub, tokens *auth.Tokens, cfg *config.Config) *Controller {
	return &Controller{Hub: hub, Tokens: tokens, Cfg: cfg}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(wsWriteWait))
}

// HandleSignal authenticates and registers one persistent connection. The
// bearer token in the query string is the sole source of the connection's
// identity and role; a missing or invalid token is refused with a policy
// close before any message exchange.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	token := c.Query("token")
	if token == "" {
		writeClose(ws, websocket.ClosePolicyViolation, "token required")
		_ = ws.Close()
		return
	}
	ident, err := ctl.Tokens.Verify(token)
	if err != nil {
		writeClose(ws, websocket.ClosePolicyViolation, "invalid token")
		_ = ws.Close()
		return
	}

	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	if err := ctl.Hub.Connect(ident.Username, conn); err != nil {
		writeClose(ws, websocket.CloseTryAgainLater, "server full")
		_ = ws.Close()
		return
	}
	log.Info().Str("module", "signal").Str("username", ident.Username).Str("role", string(ident.Role)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, ident, conn)
}
