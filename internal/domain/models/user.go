package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an enumerated principal role. Only admins exist today, but the
// auth layer checks roles explicitly so new cases can be added without
// touching the gate.
type Role string

const (
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin:
		return true
	}
	return false
}

// Admin is the only principal type in the system. Public visitors browse
// the gallery without an account.
type Admin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash []byte    `json:"-" db:"password"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
