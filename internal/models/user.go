package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether name is one of the roles the system knows about.
func ValidRole(name string) bool {
	return name == RoleUser || name == RoleAdmin
}

type User struct {
	ID                    string
	Email                 string
	PasswordHash          []byte
	DisplayName           string
	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasValidRefreshToken reports whether the user currently holds a refresh
// token that is not yet expired. An expired token counts as absent.
func (u User) HasValidRefreshToken(now time.Time) bool {
	return u.RefreshToken != nil && u.RefreshTokenExpiresAt != nil && u.RefreshTokenExpiresAt.After(now)
}
