package domain

import "time"

type RoomID string

// RoomState is the room lifecycle machine. Active is the initial state and
// the only one from which operations other than deletion are valid.
type RoomState int

const (
	RoomActive RoomState = iota
	RoomEmptyPendingDeletion
	RoomDestroyed
)

func (s RoomState) String() string {
	switch s {
	case RoomActive:
		return "active"
	case RoomEmptyPendingDeletion:
		return "empty-pending-deletion"
	case RoomDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Participant is owned exclusively by the room that contains it; all
// mutations go through the room coordinator.
type Participant struct {
	UserID     UserID    `json:"userId"`
	Name       string    `json:"name"`
	IsHost     bool      `json:"isHost"`
	Muted      bool      `json:"muted"`
	VideoOff   bool      `json:"videoOff"`
	HandRaised bool      `json:"handRaised"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	UserID    UserID    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
