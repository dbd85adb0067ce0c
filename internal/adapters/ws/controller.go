// Package ws is the thin adapter between the websocket wire and the
// transport-agnostic engine: it decodes inbound envelopes into domain calls
// and owns the connection pumps. No room or registry state lives here.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/app"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/auth"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/config"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Engine   *app.Engine
	Verifier *auth.Verifier
	Cfg      *config.Config
}

func NewController(engine *app.Engine, verifier *auth.Verifier, cfg *config.Config) *Controller {
	return &Controller{Engine: engine, Verifier: verifier, Cfg: cfg}
}

// wsConn adapts a websocket connection to app.Transport. Frames are queued
// on a buffered channel; a saturated queue means the peer is too slow and
// the frame is rejected.
type wsConn struct {
	conn *websocket.Conn
	send chan app.Frame

	mu     sync.Mutex
	closed bool
}

func (c *wsConn) TrySend(f app.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// identify resolves the connection's identity: a verified JWT when one is
// presented, otherwise a guest profile keyed by the client-token cookie.
func (c *Controller) identify(g *gin.Context) (domain.Profile, error) {
	token := g.Query("token")
	if token == "" {
		if h := g.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token != "" {
		return c.Verifier.Verify(token)
	}
	ct := g.GetString("client_token")
	if ct == "" {
		return domain.Profile{}, auth.ErrNoIdentity
	}
	return domain.Profile{UserID: domain.UserID(ct), Name: "guest"}, nil
}

// HandleWS upgrades the request and registers the connection with the
// engine. ctx is the server's lifetime context.
func (c *Controller) HandleWS(ctx context.Context, g *gin.Context) {
	profile, err := c.identify(g)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("rejecting unidentified connection")
		g.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sock, err := upgrader.Upgrade(g.Writer, g.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}

	conn := &wsConn{conn: sock, send: make(chan app.Frame, 32)}

	if err := c.Engine.Connect(profile, conn); err != nil {
		// Capacity rejection goes to this caller only, then the socket
		// closes; nobody else's session is touched.
		if frame, merr := encodeError(err); merr == nil {
			_ = sock.WriteMessage(websocket.TextMessage, frame)
		}
		_ = sock.Close()
		log.Warn().Err(err).Str("module", "ws").Str("user", string(profile.UserID)).Msg("connection refused")
		return
	}

	log.Info().Str("module", "ws").Str("user", string(profile.UserID)).Msg("connection established")

	connCtx, cancel := context.WithCancel(ctx)
	go c.writePump(connCtx, conn)
	go c.readPump(connCtx, cancel, profile.UserID, conn)
}
