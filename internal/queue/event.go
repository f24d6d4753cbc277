// Package queue defines the token audit events and their transports.
package queue

import "time"

const (
	EventTokenIssued  = "token.issued"
	EventTokenRevoked = "token.revoked"
)

// AuthEvent is published whenever a bearer token is minted or revoked.  It
// carries identifiers only; no credential material ever leaves the service.
type AuthEvent struct {
	Type       string    `json:"type"`
	TokenID    string    `json:"token_id"`
	UserID     uint64    `json:"user_id"`
	ClientID   string    `json:"client_id,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitzero"`
	OccurredAt time.Time `json:"occurred_at"`
}
