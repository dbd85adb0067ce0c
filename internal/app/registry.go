package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

type connState struct {
	profile   domain.Profile
	transport Transport
	groups    map[domain.GroupName]struct{}
}

// Registry maps verified identities to their live transport and the set of
// groups they currently belong to. It is the only owner of transports.
type Registry struct {
	mu       sync.RWMutex
	conns    map[domain.UserID]*connState
	groups   map[domain.GroupName]map[domain.UserID]struct{}
	maxConns int
	metrics  *Metrics
}

func NewRegistry(maxConns int, metrics *Metrics) *Registry {
	return &Registry{
		conns:    make(map[domain.UserID]*connState),
		groups:   make(map[domain.GroupName]map[domain.UserID]struct{}),
		maxConns: maxConns,
		metrics:  metrics,
	}
}

// Register commits a connection. The capacity check and the commit happen
// under one lock so two connections cannot share the last slot. A second
// registration for a live identity is rejected; the engine decides the
// replace policy above this level.
func (r *Registry) Register(profile domain.Profile, t Transport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[profile.UserID]; ok {
		return domain.NewMeetingError(domain.CodeDuplicateConnection, "identity already connected")
	}
	if r.maxConns > 0 && len(r.conns)+1 > r.maxConns {
		return domain.NewMeetingError(domain.CodeSystemAtCapacity, "connection limit reached")
	}
	r.conns[profile.UserID] = &connState{
		profile:   profile,
		transport: t,
		groups:    make(map[domain.GroupName]struct{}),
	}
	r.metrics.ConnectionsSet(len(r.conns))
	log.Info().Str("module", "app.registry").Str("user", string(profile.UserID)).Msg("registered connection")
	return nil
}

// Unregister removes the connection and every group membership it held, in
// one synchronous pass. It returns the transport so the caller can close
// it, plus the groups the identity belonged to.
func (r *Registry) Unregister(uid domain.UserID) (Transport, []domain.GroupName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[uid]
	if !ok {
		return nil, nil, false
	}
	return r.removeLocked(uid, c)
}

// UnregisterIf removes the connection only while t is still the registered
// transport. A replaced connection's teardown racing the replacement lands
// here as a no-op instead of killing the live registration.
func (r *Registry) UnregisterIf(uid domain.UserID, t Transport) (Transport, []domain.GroupName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[uid]
	if !ok || c.transport != t {
		return nil, nil, false
	}
	return r.removeLocked(uid, c)
}

func (r *Registry) removeLocked(uid domain.UserID, c *connState) (Transport, []domain.GroupName, bool) {
	groups := make([]domain.GroupName, 0, len(c.groups))
	for g := range c.groups {
		groups = append(groups, g)
		r.dropMember(g, uid)
	}
	delete(r.conns, uid)
	r.metrics.ConnectionsSet(len(r.conns))
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Int("groups", len(groups)).Msg("unregistered connection")
	return c.transport, groups, true
}

func (r *Registry) dropMember(g domain.GroupName, uid domain.UserID) {
	members, ok := r.groups[g]
	if !ok {
		return
	}
	delete(members, uid)
	if len(members) == 0 {
		delete(r.groups, g)
	}
}

// JoinGroup is idempotent and a no-op for unknown identities.
func (r *Registry) JoinGroup(uid domain.UserID, g domain.GroupName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[uid]
	if !ok {
		return
	}
	c.groups[g] = struct{}{}
	if r.groups[g] == nil {
		r.groups[g] = make(map[domain.UserID]struct{})
	}
	r.groups[g][uid] = struct{}{}
}

func (r *Registry) LeaveGroup(uid domain.UserID, g domain.GroupName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[uid]; ok {
		delete(c.groups, g)
	}
	r.dropMember(g, uid)
}

func (r *Registry) GroupsOf(uid domain.UserID) []domain.GroupName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[uid]
	if !ok {
		return nil
	}
	out := make([]domain.GroupName, 0, len(c.groups))
	for g := range c.groups {
		out = append(out, g)
	}
	return out
}

func (r *Registry) ResolveTransport(uid domain.UserID) (Transport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.conns[uid]; ok {
		return c.transport, true
	}
	return nil, false
}

func (r *Registry) Profile(uid domain.UserID) (domain.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.conns[uid]; ok {
		return c.profile, true
	}
	return domain.Profile{}, false
}

func (r *Registry) MembersOf(g domain.GroupName) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.groups[g]
	out := make([]domain.UserID, 0, len(members))
	for uid := range members {
		out = append(out, uid)
	}
	return out
}

// Transports returns the live transports of every currently registered
// connection, used for global presence broadcasts.
func (r *Registry) Transports() []Transport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Transport, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c.transport)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
