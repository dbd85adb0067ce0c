package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/app"
	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// Conversation groups are implicit: first join creates them, leave is
// idempotent, and nobody destroys them.

func (c *Controller) handleJoinConversation(uid domain.UserID, data []byte) {
	id, ok := conversationID(uid, data)
	if !ok {
		return
	}
	c.Engine.Registry.JoinGroup(uid, domain.ConversationGroup(id))
}

func (c *Controller) handleLeaveConversation(uid domain.UserID, data []byte) {
	id, ok := conversationID(uid, data)
	if !ok {
		return
	}
	c.Engine.Registry.LeaveGroup(uid, domain.ConversationGroup(id))
}

func (c *Controller) handleConversationMessage(uid domain.UserID, data []byte) {
	var p struct {
		ConversationID string `json:"conversationId"`
		Content        string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" || p.Content == "" {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad conversation-message payload")
		return
	}
	username := string(uid)
	if profile, ok := c.Engine.Registry.Profile(uid); ok {
		username = profile.Name
	}
	c.Engine.Fanout.Publish(domain.ConversationGroup(p.ConversationID), app.ConversationMessageEvent{
		Type:           "conversation-message",
		ConversationID: p.ConversationID,
		MessageID:      uuid.NewString(),
		UserID:         uid,
		Username:       username,
		Content:        p.Content,
		Timestamp:      time.Now().UTC(),
	})
}

func (c *Controller) handleTyping(uid domain.UserID, data []byte) {
	var p struct {
		ConversationID string `json:"conversationId"`
		Typing         bool   `json:"typing"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad typing payload")
		return
	}
	c.Engine.Fanout.PublishExcept(domain.ConversationGroup(p.ConversationID), uid, app.TypingEvent{
		Type:           "typing",
		ConversationID: p.ConversationID,
		UserID:         uid,
		Typing:         p.Typing,
	})
}

func conversationID(uid domain.UserID, data []byte) (string, bool) {
	var p struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad conversation payload")
		return "", false
	}
	return p.ConversationID, true
}
