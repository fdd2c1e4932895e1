// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access/refresh pair.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// User represents an account. The password is never stored in plaintext.
type User struct {
	ID           uuid.UUID
	Username     string // unique
	Email        string // unique
	PasswordHash string // argon2id PHC string, salt included
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns a copy safe to hand to the boundary (no password hash).
func (u User) Public() User {
	u.PasswordHash = ""
	u.FirstName = cloneString(u.FirstName)
	u.LastName = cloneString(u.LastName)
	return u
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.FirstName = cloneString(u.FirstName)
	u.LastName = cloneString(u.LastName)
	return u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Project is a tracked project.
type Project struct {
	ID          uuid.UUID
	Name        string
	Description string
	Visibility  Visibility
	Status      ProjectStatus
	CreatedAt   time.Time
}

// Issue belongs logically to a project. ProjectID is a reference, not ownership.
type Issue struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	Status      IssueStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMember relates a user to a project with a role.
type ProjectMember struct {
	UserID    uuid.UUID
	ProjectID uuid.UUID
	Role      ProjectRole
	JoinedAt  time.Time
}
