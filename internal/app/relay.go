package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// Relay forwards addressed media-negotiation payloads between two
// connections. Payloads are opaque: they are never inspected or validated
// here. Delivery is best-effort; an offline target means a silent drop and
// the initiating peer retries at a higher layer.
type Relay struct {
	fanout  *Fanout
	metrics *Metrics
}

const (
	SignalOffer        = "offer"
	SignalAnswer       = "answer"
	SignalICECandidate = "ice-candidate"
)

func NewRelay(fanout *Fanout, metrics *Metrics) *Relay {
	return &Relay{fanout: fanout, metrics: metrics}
}

func (r *Relay) Relay(from, to domain.UserID, kind string, payload json.RawMessage) {
	switch kind {
	case SignalOffer, SignalAnswer, SignalICECandidate:
	default:
		log.Debug().Str("module", "app.relay").Str("kind", kind).Msg("unknown signal kind dropped")
		return
	}
	delivered := r.fanout.Send(to, SignalEvent{
		Type:       "webrtc-signal",
		SignalType: kind,
		FromUserID: from,
		Payload:    payload,
	})
	if !delivered {
		log.Debug().Str("module", "app.relay").Str("to", string(to)).Msg("signal target offline, dropped")
		return
	}
	r.metrics.SignalRelayed()
}
