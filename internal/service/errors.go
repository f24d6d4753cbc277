// Package service holds the token issuer, the request authorizer and the
// catalog read path.  Each operation returns one of the errors below; the
// HTTP layer maps them to status codes and response bodies.
package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidClient: client_id/client_secret did not match a registered client.
	ErrInvalidClient = errors.New("invalid_client")
	// ErrInvalidGrant covers both an unknown username and a wrong password.
	ErrInvalidGrant = errors.New("invalid_grant")
	// ErrUnsupportedGrantType: anything but the password grant.
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	// ErrUnauthenticated: missing, unknown, revoked or expired bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound: lookup miss on a business key.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps infrastructure failures.  Details stay in the logs.
	ErrStorage = errors.New("storage error")
)

// ValidationError lists request fields that are missing or malformed,
// keyed by field name.  Names keeps the fields in the order they were
// checked.
type ValidationError struct {
	Fields map[string]string
	Names  []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Names, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Names = append(e.Names, field)
	}
	e.Fields[field] = msg
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
