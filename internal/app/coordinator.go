package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// CoordinatorOptions tune room behavior; zero values fall back to sane
// defaults in NewCoordinator.
type CoordinatorOptions struct {
	ChatLogCap  int
	GracePeriod time.Duration
}

// Coordinator owns the meeting-room table and routes every room operation
// through the owning room actor. It is the only component allowed to mutate
// participant state.
type Coordinator struct {
	mu     sync.Mutex
	rooms  map[domain.RoomID]*meetingRoom
	inRoom map[domain.UserID]domain.RoomID

	gov     Governor
	reg     *Registry
	fanout  *Fanout
	sink    ChatSink
	opts    CoordinatorOptions
	metrics *Metrics
}

func NewCoordinator(gov Governor, reg *Registry, fanout *Fanout, sink ChatSink, opts CoordinatorOptions, metrics *Metrics) *Coordinator {
	if opts.ChatLogCap <= 0 {
		opts.ChatLogCap = 200
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 2 * time.Minute
	}
	return &Coordinator{
		rooms:   make(map[domain.RoomID]*meetingRoom),
		inRoom:  make(map[domain.UserID]domain.RoomID),
		gov:     gov,
		reg:     reg,
		fanout:  fanout,
		sink:    sink,
		opts:    opts,
		metrics: metrics,
	}
}

// JoinRoom admits an identity into a room, creating the room if needed.
// A connection can be in at most one meeting room: joining a different room
// first runs the full leave path for the current one.
func (c *Coordinator) JoinRoom(roomID domain.RoomID, uid domain.UserID, name string) (RoomInfoEvent, error) {
	if cur, ok := c.roomOf(uid); ok && cur != roomID {
		c.LeaveRoom(uid)
	}

	for {
		room, err := c.getOrCreate(roomID, uid)
		if err != nil {
			return RoomInfoEvent{}, err
		}
		info, err := room.doJoin(uid, name, c.globalCounts())
		if errors.Is(err, errRoomGone) {
			// The janitor destroyed the room between lookup and dispatch;
			// a fresh join creates a brand-new room.
			continue
		}
		if err != nil {
			return RoomInfoEvent{}, err
		}
		c.mu.Lock()
		c.inRoom[uid] = roomID
		c.mu.Unlock()
		c.reg.JoinGroup(uid, domain.MeetingGroup(roomID))
		c.metrics.ParticipantsAdd(1)
		return info, nil
	}
}

// getOrCreate returns the live room or tentatively constructs it. The
// global-room-count check and the table insert happen under one lock, so
// creation is never committed past the ceiling.
func (c *Coordinator) getOrCreate(roomID domain.RoomID, host domain.UserID) (*meetingRoom, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room, ok := c.rooms[roomID]; ok {
		select {
		case <-room.done:
			// Destroyed under the janitor but not yet dropped from the
			// table; fall through to create a fresh room.
			delete(c.rooms, roomID)
		default:
			return room, nil
		}
	}
	err := c.gov.CanAdmit(Snapshot{
		Connections:      c.reg.Count(),
		Rooms:            len(c.rooms) + 1,
		RoomParticipants: 1,
		RoomVideoStreams: 1,
		RoomAudioStreams: 1,
	})
	if err != nil {
		return nil, err
	}
	room := newMeetingRoom(roomID, host, c.gov, c.fanout, c.sink, c.opts.ChatLogCap, c.opts.GracePeriod, c.metrics)
	c.rooms[roomID] = room
	c.metrics.RoomsSet(len(c.rooms))
	go room.run()
	log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("host", string(host)).Msg("room created")
	return room, nil
}

// LeaveRoom removes the identity from its current room, if any. Calling it
// twice is a no-op the second time: no duplicate user-left is broadcast.
func (c *Coordinator) LeaveRoom(uid domain.UserID) {
	c.mu.Lock()
	roomID, ok := c.inRoom[uid]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.inRoom, uid)
	room := c.rooms[roomID]
	c.mu.Unlock()

	c.reg.LeaveGroup(uid, domain.MeetingGroup(roomID))
	if room != nil && room.doLeave(uid) {
		c.metrics.ParticipantsAdd(-1)
	}
}

func (c *Coordinator) SendChatMessage(roomID domain.RoomID, uid domain.UserID, content string) error {
	room, err := c.lookup(roomID)
	if err != nil {
		return err
	}
	return room.doChat(uid, content)
}

func (c *Coordinator) UpdateMediaState(roomID domain.RoomID, uid domain.UserID, muted, videoOff *bool) error {
	room, err := c.lookup(roomID)
	if err != nil {
		return err
	}
	return room.doMedia(uid, muted, videoOff)
}

// SetHandRaised targets the identity's current room.
func (c *Coordinator) SetHandRaised(uid domain.UserID, raised bool) error {
	roomID, ok := c.roomOf(uid)
	if !ok {
		return domain.NewMeetingError(domain.CodeNotInRoom, "not in a meeting room")
	}
	room, err := c.lookup(roomID)
	if err != nil {
		return err
	}
	return room.doHand(uid, raised)
}

func (c *Coordinator) HostMuteAll(roomID domain.RoomID, requester domain.UserID) error {
	room, err := c.lookup(roomID)
	if err != nil {
		return err
	}
	return room.doMuteAll(requester)
}

// Sweep reclaims rooms that have been empty past the grace period. It is
// idempotent; it is the only transition out of EmptyPendingDeletion.
func (c *Coordinator) Sweep(now time.Time) int {
	c.mu.Lock()
	snapshot := make(map[domain.RoomID]*meetingRoom, len(c.rooms))
	for id, room := range c.rooms {
		snapshot[id] = room
	}
	c.mu.Unlock()

	reaped := 0
	for id, room := range snapshot {
		if !room.doReap(now) {
			continue
		}
		c.mu.Lock()
		if c.rooms[id] == room {
			delete(c.rooms, id)
			c.metrics.RoomsSet(len(c.rooms))
		}
		c.mu.Unlock()
		reaped++
	}
	return reaped
}

// RoomOf reports the identity's current meeting room.
func (c *Coordinator) RoomOf(uid domain.UserID) (domain.RoomID, bool) {
	return c.roomOf(uid)
}

func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

func (c *Coordinator) roomOf(uid domain.UserID) (domain.RoomID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.inRoom[uid]
	return id, ok
}

func (c *Coordinator) lookup(roomID domain.RoomID) (*meetingRoom, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.rooms[roomID]
	if !ok {
		return nil, domain.NewMeetingError(domain.CodeRoomNotFound, "no such room")
	}
	return room, nil
}

func (c *Coordinator) globalCounts() globalCounts {
	c.mu.Lock()
	rooms := len(c.rooms)
	c.mu.Unlock()
	return globalCounts{connections: c.reg.Count(), rooms: rooms}
}
