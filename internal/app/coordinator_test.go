package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

func join(t *testing.T, e *Engine, room, uid string) RoomInfoEvent {
	t.Helper()
	info, err := e.Rooms.JoinRoom(domain.RoomID(room), domain.UserID(uid), uid)
	require.NoError(t, err)
	return info
}

func TestJoinRoom_First_Joiner_Becomes_Host(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "alice")

	// When alice joins a room that does not exist yet
	info := join(t, e, "standup", "alice")

	// Then the room is created with alice as host
	req.Equal(domain.RoomID("standup"), info.RoomID)
	req.Equal(domain.UserID("alice"), info.HostID)
	req.Len(info.Participants, 1)
	req.True(info.Participants[0].IsHost)
	req.False(info.Participants[0].Muted)
	req.False(info.Participants[0].VideoOff)
	req.False(info.Participants[0].HandRaised)
}

func TestJoinRoom_Full_Room_Rejects_Without_Mutation(t *testing.T) {
	req := require.New(t)
	limits := defaultLimits()
	limits.MaxParticipantsPerRoom = 2
	e := newTestEngine(t, limits)
	connect(t, e, "a")
	connect(t, e, "b")
	connect(t, e, "c")

	// Given a room at its participant ceiling
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	// When a third identity tries to join
	_, err := e.Rooms.JoinRoom("standup", "c", "c")

	// Then the join fails with RoomFull
	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeRoomFull, code)

	// And the room still has exactly {a, b}
	info := join(t, e, "standup", "a")
	req.Len(info.Participants, 2)
	_, inRoom := e.Rooms.RoomOf("c")
	req.False(inRoom)
}

func TestJoinRoom_Room_Ceiling(t *testing.T) {
	req := require.New(t)
	limits := defaultLimits()
	limits.MaxConcurrentRooms = 2
	e := newTestEngine(t, limits)
	for i := 0; i < 3; i++ {
		connect(t, e, fmt.Sprintf("u%d", i))
	}

	join(t, e, "room-0", "u0")
	join(t, e, "room-1", "u1")

	// When a third room would be created
	_, err := e.Rooms.JoinRoom("room-2", "u2", "u2")

	// Then creation is refused and no room is committed
	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeSystemAtCapacity, code)
	req.Equal(2, e.Rooms.RoomCount())
}

func TestJoinRoom_Announces_To_Existing_Members_Only(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	trA := connect(t, e, "a")
	trB := connect(t, e, "b")

	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	// The existing member saw user-joined; the joiner got the roster via
	// the join reply, not a broadcast.
	req.Equal(1, trA.countOfType(t, "user-joined"))
	req.Equal(0, trB.countOfType(t, "user-joined"))

	ev, ok := trA.lastOfType(t, "user-joined")
	req.True(ok)
	participant := ev["participant"].(map[string]any)
	req.Equal("b", participant["userId"])
}

func TestJoinRoom_Switching_Rooms_Leaves_The_Previous_One(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	trB := connect(t, e, "b")

	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	// When a joins another room
	join(t, e, "retro", "a")

	// Then it left the first room; b was promoted and notified
	info := join(t, e, "standup", "b")
	req.Len(info.Participants, 1)
	req.Equal(domain.UserID("b"), info.HostID)
	req.Equal(1, trB.countOfType(t, "user-left"))

	roomID, ok := e.Rooms.RoomOf("a")
	req.True(ok)
	req.Equal(domain.RoomID("retro"), roomID)
}

func TestLeaveRoom_Deterministic_Host_Failover(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	for _, uid := range []string{"h", "p1", "p2", "p3"} {
		connect(t, e, uid)
	}
	join(t, e, "standup", "h")
	join(t, e, "standup", "p1")
	join(t, e, "standup", "p2")
	join(t, e, "standup", "p3")

	// When the host leaves
	e.Rooms.LeaveRoom("h")

	// Then the earliest-joined survivor is the new host
	info := join(t, e, "standup", "p1")
	req.Equal(domain.UserID("p1"), info.HostID)

	// Host invariant: exactly one participant has IsHost, and it matches
	hosts := 0
	for _, p := range info.Participants {
		if p.IsHost {
			hosts++
			req.Equal(info.HostID, p.UserID)
		}
	}
	req.Equal(1, hosts)

	// And again: p1 out, p2 inherits
	e.Rooms.LeaveRoom("p1")
	info = join(t, e, "standup", "p2")
	req.Equal(domain.UserID("p2"), info.HostID)
}

func TestLeaveRoom_Broadcasts_Host_Changed(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	trB := connect(t, e, "b")

	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	e.Rooms.LeaveRoom("a")

	ev, ok := trB.lastOfType(t, "host-changed")
	req.True(ok)
	req.Equal("b", ev["newHostId"])
}

func TestLeaveRoom_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	trB := connect(t, e, "b")
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	// When a leaves twice
	e.Rooms.LeaveRoom("a")
	e.Rooms.LeaveRoom("a")

	// Then b saw exactly one user-left
	req.Equal(1, trB.countOfType(t, "user-left"))
}

func TestRoom_Lifecycle_Empty_Pending_Destroyed_Fresh(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	connect(t, e, "b")

	join(t, e, "standup", "a")
	join(t, e, "standup", "b")
	e.Rooms.LeaveRoom("a")
	e.Rooms.LeaveRoom("b")

	// An empty room is never destroyed synchronously
	req.Equal(1, e.Rooms.RoomCount())

	// A sweep inside the grace window leaves it alone
	req.Zero(e.Rooms.Sweep(time.Now()))
	req.Equal(1, e.Rooms.RoomCount())

	// A sweep past the grace window reclaims it
	req.Equal(1, e.Rooms.Sweep(time.Now().Add(time.Hour)))
	req.Equal(0, e.Rooms.RoomCount())

	// Re-running the sweep is idempotent
	req.Zero(e.Rooms.Sweep(time.Now().Add(time.Hour)))

	// A subsequent join creates a brand-new room with a fresh host
	info := join(t, e, "standup", "b")
	req.Equal(domain.UserID("b"), info.HostID)
	req.Empty(info.ChatHistory)
}

func TestRoom_Rejoin_Within_Grace_Cancels_The_Purge(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")

	join(t, e, "standup", "a")
	req.NoError(e.Rooms.SendChatMessage("standup", "a", "hello"))
	e.Rooms.LeaveRoom("a")

	// When the identity comes back before the janitor sweeps
	info := join(t, e, "standup", "a")

	// Then the room survived with its chat state intact
	req.Len(info.ChatHistory, 1)
	req.Equal("hello", info.ChatHistory[0].Content)

	// And a late sweep no longer reclaims it
	req.Zero(e.Rooms.Sweep(time.Now().Add(time.Hour)))
	req.Equal(1, e.Rooms.RoomCount())
}

func TestRoom_Refused_Join_Leaves_An_Empty_Room_Reclaimable(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(0, nil)
	r := newMeetingRoom("standup", "a", NewGovernor(defaultLimits()), NewFanout(reg), nil, 10, 2*time.Minute, nil)
	go r.run()

	// Given a room that emptied out and is waiting for the janitor
	_, err := r.doJoin("a", "a", globalCounts{connections: 1, rooms: 1})
	req.NoError(err)
	req.True(r.doLeave("a"))

	// When a join to the empty room is refused at admission
	_, err = r.doJoin("b", "b", globalCounts{connections: 99, rooms: 1})
	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeSystemAtCapacity, code)

	// Then the refusal mutated nothing: the grace period still reclaims it
	req.False(r.doReap(time.Now()))
	req.True(r.doReap(time.Now().Add(3 * time.Minute)))
}

func TestSendChatMessage_Requires_Membership(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	connect(t, e, "outsider")
	join(t, e, "standup", "a")

	err := e.Rooms.SendChatMessage("standup", "outsider", "hi")

	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeNotInRoom, code)

	err = e.Rooms.SendChatMessage("nowhere", "a", "hi")
	code, ok = domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeRoomNotFound, code)
}

func TestSendChatMessage_Broadcasts_And_Bounds_The_Log(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits()) // ChatLogCap 10 from the helper
	trA := connect(t, e, "a")
	trB := connect(t, e, "b")
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	for i := 0; i < 15; i++ {
		req.NoError(e.Rooms.SendChatMessage("standup", "a", fmt.Sprintf("msg-%d", i)))
	}

	// Sender and peer both received every message
	req.Equal(15, trA.countOfType(t, "meeting-message"))
	req.Equal(15, trB.countOfType(t, "meeting-message"))

	// The in-room history kept only the newest entries, oldest evicted
	info := join(t, e, "standup", "a")
	req.Len(info.ChatHistory, 10)
	req.Equal("msg-5", info.ChatHistory[0].Content)
	req.Equal("msg-14", info.ChatHistory[9].Content)
}

func TestHostMuteAll_Requires_The_Host(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	trA := connect(t, e, "a")
	connect(t, e, "b")
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	// When a non-host asks for a global mute
	err := e.Rooms.HostMuteAll("standup", "b")

	// Then it is refused and nobody's state moved
	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeNotAuthorized, code)

	info := join(t, e, "standup", "a")
	for _, p := range info.Participants {
		req.False(p.Muted)
	}
	req.Zero(trA.countOfType(t, "host-mute-all"))
}

func TestHostMuteAll_Mutes_Everyone_Else_With_One_Event(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	trB := connect(t, e, "b")
	trC := connect(t, e, "c")
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")
	join(t, e, "standup", "c")

	req.NoError(e.Rooms.HostMuteAll("standup", "a"))

	info := join(t, e, "standup", "a")
	for _, p := range info.Participants {
		req.Equal(p.UserID != "a", p.Muted)
	}
	// One host-mute-all event, no per-participant storm
	req.Equal(1, trB.countOfType(t, "host-mute-all"))
	req.Equal(1, trC.countOfType(t, "host-mute-all"))
	req.Zero(trB.countOfType(t, "participant-media-update"))
}

func TestUpdateMediaState_Broadcasts_New_Flags(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	trB := connect(t, e, "b")
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	muted := true
	req.NoError(e.Rooms.UpdateMediaState("standup", "a", &muted, nil))

	ev, ok := trB.lastOfType(t, "participant-media-update")
	req.True(ok)
	req.Equal("a", ev["userId"])
	req.Equal(true, ev["muted"])
	req.Equal(false, ev["videoOff"])
}

func TestUpdateMediaState_Unmute_Consults_The_Governor(t *testing.T) {
	req := require.New(t)
	limits := defaultLimits()
	limits.MaxAudioStreamsPerRoom = 2
	e := newTestEngine(t, limits)
	connect(t, e, "a")
	connect(t, e, "b")
	connect(t, e, "c")

	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	// Given a mutes, freeing an audio slot for c to join
	muted := true
	req.NoError(e.Rooms.UpdateMediaState("standup", "a", &muted, nil))
	join(t, e, "standup", "c")

	// When a tries to unmute with the room back at the audio ceiling
	unmuted := false
	err := e.Rooms.UpdateMediaState("standup", "a", &unmuted, nil)

	// Then the increase is refused and the flag holds
	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeStreamLimitReached, code)

	info := join(t, e, "standup", "a")
	for _, p := range info.Participants {
		if p.UserID == "a" {
			req.True(p.Muted)
		}
	}
}

func TestSetHandRaised_Targets_Current_Room(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "a")
	trB := connect(t, e, "b")
	join(t, e, "standup", "a")
	join(t, e, "standup", "b")

	req.NoError(e.Rooms.SetHandRaised("a", true))

	ev, ok := trB.lastOfType(t, "hand-raise")
	req.True(ok)
	req.Equal("a", ev["userId"])
	req.Equal(true, ev["raised"])

	// A spectator with no room gets a typed refusal
	connect(t, e, "z")
	err := e.Rooms.SetHandRaised("z", true)
	code, ok := domain.CodeOf(err)
	req.True(ok)
	req.Equal(domain.CodeNotInRoom, code)
}
