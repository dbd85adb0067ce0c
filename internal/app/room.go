package app

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

var errRoomGone = errors.New("room destroyed")

// ChatSink persists chat messages off the fan-out critical path. The room's
// in-memory log stays authoritative for late joiners.
type ChatSink interface {
	Store(domain.ChatMessage)
}

// member pairs the participant state with a join sequence number so host
// failover stays deterministic even when two joins land on the same clock
// tick.
type member struct {
	p   domain.Participant
	seq uint64
}

// meetingRoom is a single-owner actor: one goroutine consumes cmds and is
// the only code that touches participants, chat log, host and stream
// counters. Commands are processed strictly in arrival order.
type meetingRoom struct {
	id        domain.RoomID
	createdAt time.Time

	cmds chan roomCommand
	done chan struct{}

	gov     Governor
	fanout  *Fanout
	sink    ChatSink
	chatCap int
	grace   time.Duration
	metrics *Metrics

	// actor-owned state
	state        domain.RoomState
	host         domain.UserID
	participants map[domain.UserID]*member
	chat         []domain.ChatMessage
	nextSeq      uint64
	emptySince   time.Time
	videoStreams int
	audioStreams int
}

type roomCommand interface{ isRoomCommand() }

type globalCounts struct {
	connections int
	rooms       int
}

type joinCmd struct {
	uid    domain.UserID
	name   string
	global globalCounts
	reply  chan joinReply
}

type joinReply struct {
	info RoomInfoEvent
	err  error
}

type leaveCmd struct {
	uid   domain.UserID
	reply chan bool
}

type chatCmd struct {
	uid     domain.UserID
	content string
	reply   chan error
}

type mediaCmd struct {
	uid      domain.UserID
	muted    *bool
	videoOff *bool
	reply    chan error
}

type handCmd struct {
	uid    domain.UserID
	raised bool
	reply  chan error
}

type muteAllCmd struct {
	uid   domain.UserID
	reply chan error
}

type reapCmd struct {
	now   time.Time
	reply chan bool
}

func (joinCmd) isRoomCommand()    {}
func (leaveCmd) isRoomCommand()   {}
func (chatCmd) isRoomCommand()    {}
func (mediaCmd) isRoomCommand()   {}
func (handCmd) isRoomCommand()    {}
func (muteAllCmd) isRoomCommand() {}
func (reapCmd) isRoomCommand()    {}

func newMeetingRoom(id domain.RoomID, host domain.UserID, gov Governor, fanout *Fanout, sink ChatSink, chatCap int, grace time.Duration, metrics *Metrics) *meetingRoom {
	return &meetingRoom{
		id:           id,
		createdAt:    time.Now().UTC(),
		cmds:         make(chan roomCommand, 16),
		done:         make(chan struct{}),
		gov:          gov,
		fanout:       fanout,
		sink:         sink,
		chatCap:      chatCap,
		grace:        grace,
		metrics:      metrics,
		state:        domain.RoomActive,
		host:         host,
		participants: make(map[domain.UserID]*member),
	}
}

func (r *meetingRoom) run() {
	log.Info().Str("module", "app.room").Str("room", string(r.id)).Msg("room actor started")
	for cmd := range r.cmds {
		r.handle(cmd)
		if r.state == domain.RoomDestroyed {
			log.Info().Str("module", "app.room").Str("room", string(r.id)).Msg("room actor stopped")
			return
		}
	}
}

func (r *meetingRoom) handle(cmd roomCommand) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- r.join(c)
	case leaveCmd:
		c.reply <- r.leave(c.uid)
	case chatCmd:
		c.reply <- r.sendChat(c.uid, c.content)
	case mediaCmd:
		c.reply <- r.updateMedia(c)
	case handCmd:
		c.reply <- r.setHand(c.uid, c.raised)
	case muteAllCmd:
		c.reply <- r.muteAll(c.uid)
	case reapCmd:
		c.reply <- r.reap(c.now)
	}
}

// send dispatches a command unless the actor has already shut down.
func (r *meetingRoom) send(cmd roomCommand) error {
	select {
	case r.cmds <- cmd:
		return nil
	case <-r.done:
		return errRoomGone
	}
}

func (r *meetingRoom) join(c joinCmd) joinReply {
	if _, ok := r.participants[c.uid]; ok {
		// Same identity re-joining its current room: treat as a state
		// refresh, no mutation, no broadcast.
		return joinReply{info: r.snapshot()}
	}

	// Admission check before any mutation. The actor serializes all room
	// operations, so check and commit form one atomic unit. A refused join
	// must not touch host or lifecycle state either, or an empty room
	// could get stuck active and never be reclaimed.
	revive := len(r.participants) == 0
	err := r.gov.CanAdmit(Snapshot{
		Connections:      c.global.connections,
		Rooms:            c.global.rooms,
		RoomParticipants: len(r.participants) + 1,
		RoomVideoStreams: r.videoStreams + 1,
		RoomAudioStreams: r.audioStreams + 1,
	})
	if err != nil {
		return joinReply{err: err}
	}

	if revive {
		// First participant of a fresh or revived room becomes host.
		r.host = c.uid
		r.state = domain.RoomActive
		r.emptySince = time.Time{}
	}

	others := r.allIDs()
	r.nextSeq++
	m := &member{
		p: domain.Participant{
			UserID:   c.uid,
			Name:     c.name,
			IsHost:   c.uid == r.host,
			JoinedAt: time.Now().UTC(),
		},
		seq: r.nextSeq,
	}
	r.participants[c.uid] = m
	r.videoStreams++
	r.audioStreams++

	r.fanout.PublishTo(others, UserJoinedEvent{Type: "user-joined", RoomID: r.id, Participant: m.p})
	log.Info().Str("module", "app.room").Str("room", string(r.id)).Str("user", string(c.uid)).Bool("host", m.p.IsHost).Msg("participant joined")
	return joinReply{info: r.snapshot()}
}

func (r *meetingRoom) leave(uid domain.UserID) bool {
	m, ok := r.participants[uid]
	if !ok {
		return false
	}
	delete(r.participants, uid)
	if !m.p.Muted {
		r.audioStreams--
	}
	if !m.p.VideoOff {
		r.videoStreams--
	}
	r.fanout.PublishTo(r.allIDs(), UserLeftEvent{Type: "user-left", RoomID: r.id, UserID: uid})
	log.Info().Str("module", "app.room").Str("room", string(r.id)).Str("user", string(uid)).Msg("participant left")

	if len(r.participants) == 0 {
		r.state = domain.RoomEmptyPendingDeletion
		r.emptySince = time.Now().UTC()
		log.Info().Str("module", "app.room").Str("room", string(r.id)).Msg("room empty, pending deletion")
		return true
	}

	if uid == r.host {
		// Deterministic failover: earliest remaining join wins.
		next := lo.MinBy(lo.Values(r.participants), func(a, b *member) bool {
			return a.seq < b.seq
		})
		r.host = next.p.UserID
		next.p.IsHost = true
		r.fanout.PublishTo(r.allIDs(), HostChangedEvent{Type: "host-changed", RoomID: r.id, NewHostID: r.host})
		log.Info().Str("module", "app.room").Str("room", string(r.id)).Str("host", string(r.host)).Msg("host changed")
	}
	return true
}

func (r *meetingRoom) sendChat(uid domain.UserID, content string) error {
	m, ok := r.participants[uid]
	if !ok {
		return domain.NewMeetingError(domain.CodeNotInRoom, "sender is not a participant")
	}
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    r.id,
		UserID:    uid,
		Username:  m.p.Name,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	r.chat = append(r.chat, msg)
	if r.chatCap > 0 && len(r.chat) > r.chatCap {
		r.chat = r.chat[len(r.chat)-r.chatCap:]
	}
	if r.sink != nil {
		r.sink.Store(msg)
	}
	r.fanout.PublishTo(r.allIDs(), MeetingMessageEvent{Type: "meeting-message", ChatMessage: msg})
	r.metrics.MessageSent()
	return nil
}

func (r *meetingRoom) updateMedia(c mediaCmd) error {
	m, ok := r.participants[c.uid]
	if !ok {
		return domain.NewMeetingError(domain.CodeNotInRoom, "not a participant")
	}

	// Stream-increasing transitions go back through the governor; muting or
	// turning video off never needs admission.
	audio, video := r.audioStreams, r.videoStreams
	if c.muted != nil && *c.muted != m.p.Muted {
		if *c.muted {
			audio--
		} else {
			audio++
		}
	}
	if c.videoOff != nil && *c.videoOff != m.p.VideoOff {
		if *c.videoOff {
			video--
		} else {
			video++
		}
	}
	if audio > r.audioStreams || video > r.videoStreams {
		if err := r.gov.CanCarryStreams(Snapshot{RoomAudioStreams: audio, RoomVideoStreams: video}); err != nil {
			return err
		}
	}

	if c.muted != nil {
		m.p.Muted = *c.muted
	}
	if c.videoOff != nil {
		m.p.VideoOff = *c.videoOff
	}
	r.audioStreams, r.videoStreams = audio, video

	r.fanout.PublishTo(r.allIDs(), MediaUpdateEvent{
		Type:     "participant-media-update",
		RoomID:   r.id,
		UserID:   c.uid,
		Muted:    m.p.Muted,
		VideoOff: m.p.VideoOff,
	})
	return nil
}

func (r *meetingRoom) setHand(uid domain.UserID, raised bool) error {
	m, ok := r.participants[uid]
	if !ok {
		return domain.NewMeetingError(domain.CodeNotInRoom, "not a participant")
	}
	m.p.HandRaised = raised
	r.fanout.PublishTo(r.allIDs(), HandRaiseEvent{Type: "hand-raise", RoomID: r.id, UserID: uid, Raised: raised})
	return nil
}

func (r *meetingRoom) muteAll(uid domain.UserID) error {
	if uid != r.host {
		return domain.NewMeetingError(domain.CodeNotAuthorized, "only the host can mute all")
	}
	for id, m := range r.participants {
		if id == uid || m.p.Muted {
			continue
		}
		m.p.Muted = true
		r.audioStreams--
	}
	// One event for the whole sweep; per-participant updates would be a
	// storm on large rooms.
	r.fanout.PublishTo(r.allIDs(), HostMuteAllEvent{Type: "host-mute-all", RoomID: r.id, HostID: uid})
	return nil
}

func (r *meetingRoom) reap(now time.Time) bool {
	if r.state != domain.RoomEmptyPendingDeletion || len(r.participants) > 0 {
		return false
	}
	if now.Sub(r.emptySince) < r.grace {
		return false
	}
	r.state = domain.RoomDestroyed
	close(r.done)
	log.Info().Str("module", "app.room").Str("room", string(r.id)).Msg("room destroyed")
	return true
}

func (r *meetingRoom) snapshot() RoomInfoEvent {
	members := lo.Values(r.participants)
	sort.Slice(members, func(i, j int) bool { return members[i].seq < members[j].seq })
	roster := lo.Map(members, func(m *member, _ int) domain.Participant { return m.p })
	history := make([]domain.ChatMessage, len(r.chat))
	copy(history, r.chat)
	return RoomInfoEvent{
		Type:         "room-info",
		RoomID:       r.id,
		HostID:       r.host,
		Participants: roster,
		ChatHistory:  history,
	}
}

func (r *meetingRoom) allIDs() []domain.UserID {
	return lo.Keys(r.participants)
}
