package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/app"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

const writeWait = 5 * time.Second

func (c *Controller) writePump(ctx context.Context, conn *wsConn) {
	pingPeriod := c.Cfg.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-conn.send:
			if !ok {
				return
			}
			if err := conn.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := conn.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Controller) readPump(ctx context.Context, cancel context.CancelFunc, uid domain.UserID, conn *wsConn) {
	defer func() {
		cancel()
		// Teardown is scoped to this connection: if the identity
		// reconnected and this socket was replaced, the engine ignores
		// the call instead of unregistering the live replacement.
		c.Engine.DisconnectTransport(uid, conn)
		log.Info().Str("module", "ws").Str("user", string(uid)).Msg("connection closed")
	}()

	if c.Cfg.ReadLimit > 0 {
		conn.conn.SetReadLimit(c.Cfg.ReadLimit)
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "ws").Str("user", string(uid)).Msg("readPump read error")
				}
				return
			}
			c.dispatch(uid, conn, data)
		}
	}
}

// dispatch routes one inbound envelope. Malformed payloads are logged and
// dropped; nothing a client sends may take the process down.
func (c *Controller) dispatch(uid domain.UserID, conn *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("user", string(uid)).Msg("bad envelope")
		return
	}

	switch env.Type {
	case "join-room":
		c.handleJoinRoom(uid, conn, data)
	case "leave-room":
		c.handleLeaveRoom(uid)
	case "meeting-message":
		c.handleMeetingMessage(uid, conn, data)
	case "participant-media-update":
		c.handleMediaUpdate(uid, conn, data)
	case "hand-raise":
		c.handleHandRaise(uid, conn, data)
	case "host-mute-all":
		c.handleHostMuteAll(uid, conn)
	case "webrtc-signal":
		c.handleSignal(uid, data)
	case "join-conversation":
		c.handleJoinConversation(uid, data)
	case "leave-conversation":
		c.handleLeaveConversation(uid, data)
	case "conversation-message":
		c.handleConversationMessage(uid, data)
	case "typing":
		c.handleTyping(uid, data)
	case "ping":
		c.sendJSON(conn, map[string]string{"type": "pong"})
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event type")
	}
}

func (c *Controller) sendJSON(conn *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	_ = conn.TrySend(app.Frame(b))
}

// sendError reports a typed failure to the originating connection only.
func (c *Controller) sendError(conn *wsConn, err error) {
	frame, merr := encodeError(err)
	if merr != nil {
		log.Error().Err(merr).Str("module", "ws").Msg("encode error event")
		return
	}
	_ = conn.TrySend(frame)
}

func encodeError(err error) (app.Frame, error) {
	b, merr := json.Marshal(app.NewMeetingErrorEvent(err))
	return app.Frame(b), merr
}
