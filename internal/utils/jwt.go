package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA‑256 hashing for revoked tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"fmt"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// SessionToken represents a signed JWT stored in a session cookie along
// with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims is the identity carried by a session token.  Subject is
// the agent id (zero for root).
type SessionClaims struct {
	Subject  uint64
	Username string
	Role     string
	ID       string
	Exp      time.Time
}

// ErrInvalidToken is returned by ParseSessionToken for any token that is
// malformed, expired, signed with another key or algorithm, or missing a
// claim.
var ErrInvalidToken = errors.New("invalid token")

// NewSessionToken builds and signs an HS256 JWT.  It takes the signing
// secret, the subject id, the username, the role, and a TTL in minutes.
// The JWT includes sub, usr, role, jti, exp and iat claims.
func NewSessionToken(secret string, subject uint64, username, role string, ttlMin int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", subject),
		"usr":  username,
		"role": role,
		"jti":  uuid.NewString(),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw against secret and returns its claims.
// Only HMAC signing methods are accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	var sc SessionClaims
	sub, _ := mc["sub"].(string)
	if _, err := fmt.Sscanf(sub, "%d", &sc.Subject); err != nil {
		return SessionClaims{}, ErrInvalidToken
	}
	sc.Username, _ = mc["usr"].(string)
	sc.Role, _ = mc["role"].(string)
	sc.ID, _ = mc["jti"].(string)
	if sc.Role == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return SessionClaims{}, ErrInvalidToken
	}
	sc.Exp = exp.Time.UTC()
	return sc, nil
}

// HashToken returns the SHA‑256 hash of a raw token as a hex string.  Only
// the hash of a revoked token is stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
