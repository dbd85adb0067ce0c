// Package domain contains the coordination engine's entities: identities,
// groups, rooms and their participants. No transport or lifecycle logic here.
package domain

import "errors"

const MaxDisplayNameLen = 64

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
)

type UserID string

// Profile is a verified identity as handed over by the auth boundary.
// The engine trusts it; it never verifies credentials itself.
type Profile struct {
	UserID     UserID `json:"userId"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Batch      string `json:"batch,omitempty"`
}

func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
