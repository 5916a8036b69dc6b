// Package users manages user accounts.
package users

import "time"

// User is an application account. The password hash never leaves the
// package boundary.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest registers a new account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUserRequest toggles account flags or resets the password.
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
