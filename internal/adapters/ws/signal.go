package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// handleSignal forwards an opaque negotiation payload to one peer. No error
// goes back to the sender when the target is offline; signaling is
// best-effort and the peer times out and retries above this layer.
func (c *Controller) handleSignal(uid domain.UserID, data []byte) {
	var p struct {
		SignalType   string          `json:"signalType"`
		TargetUserID string          `json:"targetUserId"`
		Payload      json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("bad webrtc-signal payload")
		return
	}
	c.Engine.Relay.Relay(uid, domain.UserID(p.TargetUserID), p.SignalType, p.Payload)
}
