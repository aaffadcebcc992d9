package domain

import "time"

const RoleUser = "user"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	IsActive     bool
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// AuthToken is issued on successful login or registration.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
	User      User
}
