package app

import (
	"time"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

// Synchronous dispatch helpers. Each sends one command and waits for its
// reply, bailing out with errRoomGone when the actor has shut down in the
// meantime so callers can retry against a fresh room.

func (r *meetingRoom) doJoin(uid domain.UserID, name string, global globalCounts) (RoomInfoEvent, error) {
	cmd := joinCmd{uid: uid, name: name, global: global, reply: make(chan joinReply, 1)}
	if err := r.send(cmd); err != nil {
		return RoomInfoEvent{}, err
	}
	select {
	case rep := <-cmd.reply:
		return rep.info, rep.err
	case <-r.done:
		select {
		case rep := <-cmd.reply:
			return rep.info, rep.err
		default:
			return RoomInfoEvent{}, errRoomGone
		}
	}
}

func (r *meetingRoom) doLeave(uid domain.UserID) bool {
	cmd := leaveCmd{uid: uid, reply: make(chan bool, 1)}
	if err := r.send(cmd); err != nil {
		return false
	}
	select {
	case left := <-cmd.reply:
		return left
	case <-r.done:
		select {
		case left := <-cmd.reply:
			return left
		default:
			return false
		}
	}
}

func (r *meetingRoom) doErrCmd(cmd roomCommand, reply chan error) error {
	if err := r.send(cmd); err != nil {
		return domain.NewMeetingError(domain.CodeRoomNotFound, "room no longer exists")
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		select {
		case err := <-reply:
			return err
		default:
			return domain.NewMeetingError(domain.CodeRoomNotFound, "room no longer exists")
		}
	}
}

func (r *meetingRoom) doChat(uid domain.UserID, content string) error {
	reply := make(chan error, 1)
	return r.doErrCmd(chatCmd{uid: uid, content: content, reply: reply}, reply)
}

func (r *meetingRoom) doMedia(uid domain.UserID, muted, videoOff *bool) error {
	reply := make(chan error, 1)
	return r.doErrCmd(mediaCmd{uid: uid, muted: muted, videoOff: videoOff, reply: reply}, reply)
}

func (r *meetingRoom) doHand(uid domain.UserID, raised bool) error {
	reply := make(chan error, 1)
	return r.doErrCmd(handCmd{uid: uid, raised: raised, reply: reply}, reply)
}

func (r *meetingRoom) doMuteAll(uid domain.UserID) error {
	reply := make(chan error, 1)
	return r.doErrCmd(muteAllCmd{uid: uid, reply: reply}, reply)
}

func (r *meetingRoom) doReap(now time.Time) bool {
	cmd := reapCmd{now: now, reply: make(chan bool, 1)}
	if err := r.send(cmd); err != nil {
		// Actor already stopped: the room was reaped earlier.
		return true
	}
	select {
	case reaped := <-cmd.reply:
		return reaped
	case <-r.done:
		select {
		case reaped := <-cmd.reply:
			return reaped
		default:
			return true
		}
	}
}
