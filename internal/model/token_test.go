package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessToken_Live(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tok  AccessToken
		want bool
	}{
		{"active", AccessToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"revoked", AccessToken{Revoked: true, ExpiresAt: now.Add(time.Hour)}, false},
		{"expired", AccessToken{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", AccessToken{ExpiresAt: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tok.Live(now))
		})
	}
}
