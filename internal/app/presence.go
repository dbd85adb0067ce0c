package app

import (
	"time"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Presence is a stateless relay announcing online/offline transitions
// derived from registry changes. Delivery misses are non-fatal and dropped.
type Presence struct {
	fanout  *Fanout
	metrics *Metrics
}

func NewPresence(fanout *Fanout, metrics *Metrics) *Presence {
	return &Presence{fanout: fanout, metrics: metrics}
}

func (p *Presence) Online(uid domain.UserID) {
	p.announce(uid, StatusOnline)
}

func (p *Presence) Offline(uid domain.UserID) {
	p.announce(uid, StatusOffline)
}

func (p *Presence) announce(uid domain.UserID, status string) {
	p.fanout.PublishAll(UserStatusChangeEvent{
		Type:      "user-status-change",
		UserID:    uid,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	p.metrics.PresenceEvent()
}
