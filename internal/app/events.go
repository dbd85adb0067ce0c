package app

import (
	"encoding/json"
	"time"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// Server-initiated event shapes. The "type" field doubles as the envelope
// discriminator on the wire.

type UserStatusChangeEvent struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId"`
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

type RoomInfoEvent struct {
	Type         string               `json:"type"`
	RoomID       domain.RoomID        `json:"roomId"`
	HostID       domain.UserID        `json:"hostId"`
	Participants []domain.Participant `json:"participants"`
	ChatHistory  []domain.ChatMessage `json:"chatHistory"`
}

type MeetingErrorEvent struct {
	Type   string           `json:"type"`
	Code   domain.ErrorCode `json:"code"`
	Reason string           `json:"reason"`
}

type UserJoinedEvent struct {
	Type        string             `json:"type"`
	RoomID      domain.RoomID      `json:"roomId"`
	Participant domain.Participant `json:"participant"`
}

type UserLeftEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

type HostChangedEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	NewHostID domain.UserID `json:"newHostId"`
}

type MeetingMessageEvent struct {
	Type string `json:"type"`
	domain.ChatMessage
}

type MediaUpdateEvent struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	UserID   domain.UserID `json:"userId"`
	Muted    bool          `json:"muted"`
	VideoOff bool          `json:"videoOff"`
}

type HandRaiseEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
	Raised bool          `json:"raised"`
}

type HostMuteAllEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	HostID domain.UserID `json:"hostId"`
}

type SignalEvent struct {
	Type       string          `json:"type"`
	SignalType string          `json:"signalType"`
	FromUserID domain.UserID   `json:"fromUserId"`
	Payload    json.RawMessage `json:"payload"`
}

type ConversationMessageEvent struct {
	Type           string        `json:"type"`
	ConversationID string        `json:"conversationId"`
	MessageID      string        `json:"messageId"`
	UserID         domain.UserID `json:"userId"`
	Username       string        `json:"username"`
	Content        string        `json:"content"`
	Timestamp      time.Time     `json:"timestamp"`
}

type TypingEvent struct {
	Type           string        `json:"type"`
	ConversationID string        `json:"conversationId"`
	UserID         domain.UserID `json:"userId"`
	Typing         bool          `json:"typing"`
}

func NewMeetingErrorEvent(err error) MeetingErrorEvent {
	code, _ := domain.CodeOf(err)
	return MeetingErrorEvent{Type: "meeting-error", Code: code, Reason: err.Error()}
}
