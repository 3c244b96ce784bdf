package domain

import (
	"strings"
	"time"
)

// Role is the editorial permission level of a user.
type Role string

// Role constants define the allowed user roles.
const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleAuthor Role = "AUTHOR"
	RoleUser   Role = "USER"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleAuthor, RoleUser}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, v := range ValidRoles() {
		if v == r {
			return true
		}
	}
	return false
}

// CanEdit reports whether the role may manage other people's content.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

// User is the identity record returned by the CMS API.
type User struct {
	ID               string     `json:"id" validate:"required"`
	Username         string     `json:"username" validate:"required"`
	Email            string     `json:"email" validate:"required"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Role             Role       `json:"role" validate:"required,oneof=ADMIN EDITOR AUTHOR USER"`
	Avatar           *string    `json:"avatar,omitempty"`
	TwoFactorEnabled *bool      `json:"twoFactorEnabled,omitempty"`
	IsActive         bool       `json:"isActive"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// HasTwoFactor reports whether two-factor authentication is enabled.
func (u *User) HasTwoFactor() bool {
	return u.TwoFactorEnabled != nil && *u.TwoFactorEnabled
}

// Credentials identify a user at login. Identifier is an email or username.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required"`
	Secret     string `json:"secret" validate:"required"`
}

// RegisterRequest carries the data for a new self-registered account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// AuthResult is the identity and bearer token issued by login or register.
type AuthResult struct {
	User  *User  `json:"user" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// ChangePasswordRequest changes the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// CreateUserRequest is an administrator creating an account with a given role.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Role      Role   `json:"role" validate:"required,oneof=ADMIN EDITOR AUTHOR USER"`
}

// UpdateUserRequest changes account details. Empty fields are left untouched.
type UpdateUserRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,max=100"`
}

// UserFilter narrows a user listing.
type UserFilter struct {
	ListQuery
	Role Role `validate:"omitempty,oneof=ADMIN EDITOR AUTHOR USER"`
	// Active filters on account status when non-nil.
	Active *bool
}
