package model

import "time"

// Roles understood by the access policy.  Admins may manage the catalog and
// read or modify any ticket; regular users only touch their own tickets.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  The password hash is never serialized into API responses.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name, one of user or admin.
//  IsActive     – soft delete flag.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor identifies the caller of a core operation.  It is threaded into
// every reservation call explicitly instead of living in ambient request
// state, so the engine can be exercised without any HTTP context.
type Actor struct {
	ID   uint64
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns reports whether the actor may act on a resource held by userID: the
// holder themselves or any admin.
func (a Actor) Owns(userID uint64) bool { return a.IsAdmin() || a.ID == userID }
