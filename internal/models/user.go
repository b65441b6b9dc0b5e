package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleLearner UserRole = "learner"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User is the identity-provider projection of an account. It is never persisted here.
type User struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Role          UserRole  `json:"role"`
	AvatarURL     *string   `json:"avatar_url"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ParseUserRole maps an identity-provider role or user type onto a service role.
// Unknown names fall back to RoleLearner.
func ParseUserRole(name string) UserRole {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin", "administrator":
		return RoleAdmin
	case "teacher", "instructor", "educator":
		return RoleTeacher
	default:
		return RoleLearner
	}
}
