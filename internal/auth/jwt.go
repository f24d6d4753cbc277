package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Decode for any token that is malformed,
// wrongly signed or past its exp claim.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is what a bearer token carries.  TokenID points at the
// server-side row that decides revocation.
type TokenClaims struct {
	TokenID   string
	UserID    uint64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec turns claims into a bearer string and back.
type TokenCodec interface {
	Encode(c TokenClaims) (string, error)
	Decode(raw string) (TokenClaims, error)
}

// JWTCodec signs tokens as HS256 JWTs.
type JWTCodec struct {
	secret []byte
	issuer string
}

func NewJWTCodec(secret, issuer string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret), issuer: issuer}
}

// Encode builds the JWT with the standard jti, sub, iss, iat and exp claims.
func (j *JWTCodec) Encode(c TokenClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        c.TokenID,
		Subject:   strconv.FormatUint(c.UserID, 10),
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	})
	signed, err := t.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature, algorithm, issuer and expiry.
func (j *JWTCodec) Decode(raw string) (TokenClaims, error) {
	var rc jwt.RegisteredClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	tok, err := jwt.ParseWithClaims(raw, &rc, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	uid, err := strconv.ParseUint(rc.Subject, 10, 64)
	if err != nil || rc.ID == "" {
		return TokenClaims{}, fmt.Errorf("%w: missing subject or id", ErrInvalidToken)
	}
	out := TokenClaims{TokenID: rc.ID, UserID: uid}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, nil
}
