package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// Fanout delivers an event to every member of a group that currently has a
// live transport. Delivery is at-most-once: members without a transport or
// with a saturated send buffer are skipped, never queued for.
//
// A single dispatch lock serializes publishes, so events published to one
// group are handed to every member's transport in publish order.
type Fanout struct {
	mu  sync.Mutex
	reg *Registry
}

func NewFanout(reg *Registry) *Fanout {
	return &Fanout{reg: reg}
}

func encode(v any) (Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Msg("encode event")
		return nil, false
	}
	return Frame(b), true
}

// Publish delivers v to every current member of the group.
func (f *Fanout) Publish(g domain.GroupName, v any) {
	f.PublishExcept(g, "", v)
}

// PublishExcept delivers v to every member of the group except one,
// typically the originator.
func (f *Fanout) PublishExcept(g domain.GroupName, except domain.UserID, v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, uid := range f.reg.MembersOf(g) {
		if uid == except {
			continue
		}
		f.deliver(uid, frame)
	}
}

// PublishTo delivers v to an explicit identity list, used by the room
// coordinator whose membership is authoritative on its own side.
func (f *Fanout) PublishTo(ids []domain.UserID, v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, uid := range ids {
		f.deliver(uid, frame)
	}
}

// PublishAll delivers v to every registered connection.
func (f *Fanout) PublishAll(v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.reg.Transports() {
		_ = t.TrySend(frame)
	}
}

// Send delivers v to a single identity. Reports whether a live transport
// accepted the frame.
func (f *Fanout) Send(uid domain.UserID, v any) bool {
	frame, ok := encode(v)
	if !ok {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deliver(uid, frame)
}

func (f *Fanout) deliver(uid domain.UserID, frame Frame) bool {
	t, ok := f.reg.ResolveTransport(uid)
	if !ok {
		return false
	}
	if err := t.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.fanout").Str("user", string(uid)).Msg("dropped frame")
		return false
	}
	return true
}
