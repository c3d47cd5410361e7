package model

import (
	"time"

	"github.com/google/uuid"

	"webharbour/internal/domain"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleDeveloper, RoleAdmin:
		return Role(s), nil
	}
	return "", domain.ErrInvalidArgument
}

// User is a marketplace account. PasswordHash is a bcrypt digest and is never
// serialized out of the API layer.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Avatar       string
	CreatedAt    time.Time
}

func NewUser(id, username, email, passwordHash string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if len(username) < 3 {
		return nil, domain.ErrInvalidArgument
	}
	if email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = RoleUser
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

func (u *User) IsZero() bool  { return u == nil || u.ID == "" }
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// CanUpload reports whether the user may submit products for review.
func (u *User) CanUpload() bool {
	return u != nil && (u.Role == RoleDeveloper || u.Role == RoleAdmin)
}
