package users

import "time"

// RoleRef is the subset of a role carried on a user listing.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a back-office account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []RoleRef `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
