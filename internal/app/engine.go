package app

import (
	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// Engine wires the registry, fan-out, presence, room coordinator and relay
// into the connect/disconnect flows the transport adapter drives.
type Engine struct {
	Registry *Registry
	Fanout   *Fanout
	Presence *Presence
	Rooms    *Coordinator
	Relay    *Relay
}

func NewEngine(gov Governor, sink ChatSink, opts CoordinatorOptions, metrics *Metrics) *Engine {
	reg := NewRegistry(gov.Limits().MaxTotalConnections, metrics)
	fanout := NewFanout(reg)
	return &Engine{
		Registry: reg,
		Fanout:   fanout,
		Presence: NewPresence(fanout, metrics),
		Rooms:    NewCoordinator(gov, reg, fanout, sink, opts, metrics),
		Relay:    NewRelay(fanout, metrics),
	}
}

// Connect registers a verified identity. A duplicate registration
// force-disconnects the previous connection first, running the full
// unregister path (room leave, group cleanup, presence offline) so no stale
// membership survives the replacement.
func (e *Engine) Connect(profile domain.Profile, t Transport) error {
	err := e.Registry.Register(profile, t)
	if code, ok := domain.CodeOf(err); ok && code == domain.CodeDuplicateConnection {
		log.Warn().Str("module", "app.engine").Str("user", string(profile.UserID)).Msg("duplicate connection, replacing previous")
		e.Disconnect(profile.UserID)
		err = e.Registry.Register(profile, t)
	}
	if err != nil {
		return err
	}

	e.Registry.JoinGroup(profile.UserID, domain.PersonalGroup(profile.UserID))
	if profile.Role != "" {
		e.Registry.JoinGroup(profile.UserID, domain.TypeGroup(profile.Role))
	}
	if profile.Department != "" {
		e.Registry.JoinGroup(profile.UserID, domain.DepartmentGroup(profile.Department))
	}
	if profile.Batch != "" {
		e.Registry.JoinGroup(profile.UserID, domain.BatchGroup(profile.Batch))
	}

	e.Presence.Online(profile.UserID)
	return nil
}

// Disconnect unwinds all of a connection's memberships in one synchronous
// pass: room leave first (host failover, user-left broadcast), then group
// cleanup and presence offline. Safe to call for unknown identities.
func (e *Engine) Disconnect(uid domain.UserID) {
	e.Rooms.LeaveRoom(uid)
	t, _, ok := e.Registry.Unregister(uid)
	if !ok {
		return
	}
	t.Close()
	e.Presence.Offline(uid)
}

// DisconnectTransport unwinds the identity only while t is still its
// registered transport. A pump tearing down after its connection was
// replaced must not touch the replacement's state, so the transport match
// is decided first, atomically, in the registry.
func (e *Engine) DisconnectTransport(uid domain.UserID, t Transport) {
	tr, _, ok := e.Registry.UnregisterIf(uid, t)
	if !ok {
		log.Debug().Str("module", "app.engine").Str("user", string(uid)).Msg("stale disconnect ignored")
		return
	}
	e.Rooms.LeaveRoom(uid)
	tr.Close()
	e.Presence.Offline(uid)
}
