// Package auth contains the credential primitives of the token endpoint:
// the OAuth client registry, the bearer token codec and password hashing.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// ClientVerifier authenticates OAuth client credentials.
type ClientVerifier interface {
	VerifyClient(clientID, clientSecret string) bool
}

// ClientRegistry maps client_id to its shared secret.
type ClientRegistry map[string]string

// ParseClients builds a registry from "id:secret,id2:secret2".
func ParseClients(list string) (ClientRegistry, error) {
	reg := ClientRegistry{}
	for _, pair := range strings.Split(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, secret, ok := strings.Cut(pair, ":")
		if !ok || id == "" || secret == "" {
			return nil, fmt.Errorf("invalid oauth client %q: want id:secret", pair)
		}
		reg[id] = secret
	}
	if len(reg) == 0 {
		return nil, fmt.Errorf("no oauth clients configured")
	}
	return reg, nil
}

// VerifyClient compares the secret in constant time.  Unknown ids still pay
// for one comparison.
func (r ClientRegistry) VerifyClient(clientID, clientSecret string) bool {
	want, ok := r[clientID]
	if !ok {
		want = "\x00unknown-client"
	}
	match := subtle.ConstantTimeCompare([]byte(want), []byte(clientSecret)) == 1
	return ok && match
}
