package models

import "time"

type User struct {
	ID                  string
	Name                string
	Email               string
	PasswordHash        string
	Role                string
	ResetToken          *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
}

// PublicUser is the projection returned to clients. It never carries the
// password hash or reset token fields.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
