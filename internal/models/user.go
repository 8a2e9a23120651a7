package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleUser    Role = "USER"
	RoleStaffer Role = "STAFFER"
	RoleOther   Role = "OTHER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStaffer, RoleOther:
		return true
	default:
		return false
	}
}

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string
	Role           Role
	IsVerified     bool
	IsActive       bool
}

// Filter to list users
// Nil field means "do not filter by it"
type UserFilter struct {
	ID         *uuid.UUID
	Email      *string
	Role       *Role
	IsVerified *bool
	IsActive   *bool
}
