package model

import "time"

// AccessToken models a row in `oauth_access_tokens`.  Each issued bearer
// token has exactly one row; the bearer string itself is a signed envelope
// around ID and is never stored.  A user may hold any number of tokens.
type AccessToken struct {
	ID        string    // oauth_access_tokens.id (uuid, carried as the JWT jti)
	UserID    uint64    // oauth_access_tokens.user_id
	Name      string    // oauth_access_tokens.name
	Revoked   bool      // oauth_access_tokens.revoked
	ExpiresAt time.Time // oauth_access_tokens.expires_at
	CreatedAt time.Time // oauth_access_tokens.created_at
}

// Live reports whether the token may still authenticate requests at now.
func (t AccessToken) Live(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
