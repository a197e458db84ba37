package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the primary role carried by a user account and its tokens.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

var Roles = []Role{RoleAdmin, RoleStudent, RoleProfessor}

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStudent:
		return RoleStudent, nil
	case RoleProfessor:
		return RoleProfessor, nil
	}
	return "", fmt.Errorf("invalid role %q: must be one of admin, student, professor", raw)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// CardStatus gates access decisions. Transitions are unrestricted.
type CardStatus string

const (
	CardActive   CardStatus = "active"
	CardLost     CardStatus = "lost"
	CardDisabled CardStatus = "disabled"
)

func ParseCardStatus(raw string) (CardStatus, error) {
	switch CardStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case CardActive:
		return CardActive, nil
	case CardLost:
		return CardLost, nil
	case CardDisabled:
		return CardDisabled, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of active, lost, disabled", raw)
}

func (s *CardStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCardStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AccessType is the recorded outcome of an access attempt.
type AccessType string

const (
	AccessEntry  AccessType = "entry"
	AccessExit   AccessType = "exit"
	AccessDenied AccessType = "denied"
)

// ParseAccessType is exact-match: the wire values are lower case.
func ParseAccessType(raw string) (AccessType, error) {
	switch AccessType(raw) {
	case AccessEntry:
		return AccessEntry, nil
	case AccessExit:
		return AccessExit, nil
	case AccessDenied:
		return AccessDenied, nil
	}
	return "", fmt.Errorf("invalid access type %q: must be one of entry, exit, denied", raw)
}

// Granted reports whether an attempt of this type let the holder through.
func (t AccessType) Granted() bool {
	return t != AccessDenied
}

func (t *AccessType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAccessType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
