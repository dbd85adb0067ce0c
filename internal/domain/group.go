package domain

import "strings"

// GroupName addresses a fan-out target. Groups other than meetings are
// implicit: created on first join, never explicitly destroyed.
type GroupName string

type GroupKind string

const (
	KindPersonal     GroupKind = "personal"
	KindType         GroupKind = "type"
	KindDepartment   GroupKind = "department"
	KindBatch        GroupKind = "batch"
	KindConversation GroupKind = "conversation"
	KindMeeting      GroupKind = "meeting"
)

func PersonalGroup(uid UserID) GroupName    { return GroupName("user:" + string(uid)) }
func TypeGroup(role string) GroupName       { return GroupName("type:" + role) }
func DepartmentGroup(dept string) GroupName { return GroupName("department:" + dept) }
func BatchGroup(batch string) GroupName     { return GroupName("batch:" + batch) }
func ConversationGroup(id string) GroupName { return GroupName("conversation:" + id) }
func MeetingGroup(roomID RoomID) GroupName  { return GroupName("meeting:" + string(roomID)) }

func (g GroupName) Kind() GroupKind {
	prefix, _, ok := strings.Cut(string(g), ":")
	if !ok {
		return KindConversation
	}
	switch prefix {
	case "user":
		return KindPersonal
	case "type":
		return KindType
	case "department":
		return KindDepartment
	case "batch":
		return KindBatch
	case "meeting":
		return KindMeeting
	default:
		return KindConversation
	}
}
