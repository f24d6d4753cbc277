package model

import "time"

// User represents an account as stored in the `users` table.  The json
// tags are omitted on purpose: handlers expose users only through a
// projection that never carries the password hash.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique login identifier.  Email-shaped in most rows but
//	               used as a bare username (e.g. "user1").
//	PasswordHash – bcrypt hash of the password.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
