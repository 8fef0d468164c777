// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrUnknownRole     = errors.New("role must be CLIENT or LAWYER")
	ErrUnknownStatus   = errors.New("status must be ONLINE or BUSY")
)

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleLawyer Role = "LAWYER"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleLawyer:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// Status is a lawyer's advertised availability. Clients carry no status.
type Status string

const (
	StatusOnline Status = "ONLINE"
	StatusBusy   Status = "BUSY"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOnline, StatusBusy:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

type User struct {
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	Status       Status `json:"status,omitempty"`
	PasswordHash []byte `json:"-"`
}

// NewUser validates the username and seeds a lawyer's status to ONLINE.
func NewUser(username string, role Role, passwordHash []byte) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	u := &User{Username: username, Role: role, PasswordHash: passwordHash}
	if role == RoleLawyer {
		u.Status = StatusOnline
	}
	return u, nil
}
