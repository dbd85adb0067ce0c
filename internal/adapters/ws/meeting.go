package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

func (c *Controller) handleJoinRoom(uid domain.UserID, conn *wsConn, data []byte) {
	var p struct {
		RoomID      string `json:"roomId"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad join-room payload")
		return
	}
	name := p.DisplayName
	if err := domain.ValidateDisplayName(name); err != nil {
		if profile, ok := c.Engine.Registry.Profile(uid); ok {
			name = profile.Name
		}
	}

	info, err := c.Engine.Rooms.JoinRoom(domain.RoomID(p.RoomID), uid, name)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	// Roster and chat history go to the joining connection only; the room
	// itself already saw user-joined.
	c.sendJSON(conn, info)
}

func (c *Controller) handleLeaveRoom(uid domain.UserID) {
	c.Engine.Rooms.LeaveRoom(uid)
}

func (c *Controller) handleMeetingMessage(uid domain.UserID, conn *wsConn, data []byte) {
	var p struct {
		RoomID  string `json:"roomId"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Content == "" {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad meeting-message payload")
		return
	}
	if err := c.Engine.Rooms.SendChatMessage(domain.RoomID(p.RoomID), uid, p.Content); err != nil {
		c.sendError(conn, err)
	}
}

func (c *Controller) handleMediaUpdate(uid domain.UserID, conn *wsConn, data []byte) {
	var p struct {
		Muted    *bool `json:"muted"`
		VideoOff *bool `json:"videoOff"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad media-update payload")
		return
	}
	roomID, ok := c.Engine.Rooms.RoomOf(uid)
	if !ok {
		c.sendError(conn, domain.NewMeetingError(domain.CodeNotInRoom, "not in a meeting room"))
		return
	}
	if err := c.Engine.Rooms.UpdateMediaState(roomID, uid, p.Muted, p.VideoOff); err != nil {
		c.sendError(conn, err)
	}
}

func (c *Controller) handleHandRaise(uid domain.UserID, conn *wsConn, data []byte) {
	var p struct {
		Raised bool `json:"raised"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad hand-raise payload")
		return
	}
	if err := c.Engine.Rooms.SetHandRaised(uid, p.Raised); err != nil {
		c.sendError(conn, err)
	}
}

func (c *Controller) handleHostMuteAll(uid domain.UserID, conn *wsConn) {
	roomID, ok := c.Engine.Rooms.RoomOf(uid)
	if !ok {
		c.sendError(conn, domain.NewMeetingError(domain.CodeNotInRoom, "not in a meeting room"))
		return
	}
	if err := c.Engine.Rooms.HostMuteAll(roomID, uid); err != nil {
		c.sendError(conn, err)
	}
}
