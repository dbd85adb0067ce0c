package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is surfaced to the originating connection as a typed
// meeting-error event. Nothing here is ever fatal to another session.
type ErrorCode string

const (
	CodeRoomFull            ErrorCode = "RoomFull"
	CodeSystemAtCapacity    ErrorCode = "SystemAtCapacity"
	CodeStreamLimitReached  ErrorCode = "StreamLimitReached"
	CodeNotAuthorized       ErrorCode = "NotAuthorized"
	CodeRoomNotFound        ErrorCode = "RoomNotFound"
	CodeNotInRoom           ErrorCode = "NotInRoom"
	CodeDuplicateConnection ErrorCode = "DuplicateConnection"
)

type MeetingError struct {
	Code   ErrorCode
	Reason string
}

func (e *MeetingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func NewMeetingError(code ErrorCode, reason string) *MeetingError {
	return &MeetingError{Code: code, Reason: reason}
}

// CodeOf extracts the typed code from an error chain.
func CodeOf(err error) (ErrorCode, bool) {
	var me *MeetingError
	if errors.As(err, &me) {
		return me.Code, true
	}
	return "", false
}
