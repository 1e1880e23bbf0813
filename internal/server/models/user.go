// Package models defines the persistent entities of the service: local user
// accounts mirrored from the identity provider, and their profiles.
package models

import "time"

// Role is the flat access level stored on a user row. There is no hierarchy
// and no per-resource scoping.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == string(RoleUser) || s == string(RoleAdmin)
}

// Account status mirrors the provider-side confirmation state.
const (
	StatusUnconfirmed = "UNCONFIRMED"
	StatusConfirmed   = "CONFIRMED"
)

// User is a local account record. Sub is the provider's durable subject
// identifier; it stays nil between local signup and the first successful
// login, which is when reconciliation fills it in.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Sub       *string   `db:"sub" json:"sub"`
	Role      Role      `db:"role" json:"role"`
	Status    string    `db:"cognito_status" json:"cognito_status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
