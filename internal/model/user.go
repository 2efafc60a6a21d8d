package model

import "time"

// Role names carried in access tokens.  A user's role is derived from
// the is_admin column rather than stored separately.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an account allowed to call the API, as stored in
// the `users` table.  PasswordHash never leaves the server: the json
// tag hides it from every response.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name, 5..50 characters.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – grants the ADMIN role.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`        // users.id
	Name         string    `json:"name"`      // users.name
	Email        string    `json:"email"`     // users.email
	PasswordHash string    `json:"-"`         // users.password_hash
	IsAdmin      bool      `json:"isAdmin"`   // users.is_admin
	CreatedAt    time.Time `json:"createdAt"` // users.created_at
	UpdatedAt    time.Time `json:"updatedAt"` // users.updated_at
}

// Role returns RoleAdmin for administrators and RoleUser otherwise.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
