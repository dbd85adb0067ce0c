package app

import "github.com/Dhamodran16/InspiraNet-sub005/internal/domain"

// Limits are the admission-control ceilings. All of them are configuration
// inputs; zero disables the corresponding check.
type Limits struct {
	MaxParticipantsPerRoom int
	MaxConcurrentRooms     int
	MaxTotalConnections    int
	MaxVideoStreamsPerRoom int
	MaxAudioStreamsPerRoom int
}

// Snapshot carries the counts as they would stand after the operation under
// consideration. Callers build it while holding the lock that owns the
// counters, so check and commit form one atomic unit.
type Snapshot struct {
	Connections      int
	Rooms            int
	RoomParticipants int
	RoomVideoStreams int
	RoomAudioStreams int
}

// Governor answers admission queries. It is pure: it never mutates
// counters; callers commit after a nil answer.
type Governor struct {
	limits Limits
}

func NewGovernor(limits Limits) Governor {
	return Governor{limits: limits}
}

func (g Governor) Limits() Limits { return g.limits }

// CanAdmit checks every ceiling a join touches. The first failing check
// decides the typed reason.
func (g Governor) CanAdmit(s Snapshot) error {
	if exceeds(s.Connections, g.limits.MaxTotalConnections) {
		return domain.NewMeetingError(domain.CodeSystemAtCapacity, "connection limit reached")
	}
	if exceeds(s.Rooms, g.limits.MaxConcurrentRooms) {
		return domain.NewMeetingError(domain.CodeSystemAtCapacity, "room limit reached")
	}
	if exceeds(s.RoomParticipants, g.limits.MaxParticipantsPerRoom) {
		return domain.NewMeetingError(domain.CodeRoomFull, "room participant limit reached")
	}
	return g.CanCarryStreams(s)
}

// CanCarryStreams checks only the estimated stream ceilings, used on
// media-state transitions that would increase a room's stream count.
func (g Governor) CanCarryStreams(s Snapshot) error {
	if exceeds(s.RoomVideoStreams, g.limits.MaxVideoStreamsPerRoom) {
		return domain.NewMeetingError(domain.CodeStreamLimitReached, "video stream limit reached")
	}
	if exceeds(s.RoomAudioStreams, g.limits.MaxAudioStreamsPerRoom) {
		return domain.NewMeetingError(domain.CodeStreamLimitReached, "audio stream limit reached")
	}
	return nil
}

func exceeds(have, limit int) bool {
	return limit > 0 && have > limit
}
