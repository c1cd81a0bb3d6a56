package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every reason a session cookie fails to verify.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the payload of the session cookie.
type Claims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	jwt.RegisteredClaims
}

// TokenCodec signs session ids into cookie values with SECRET_KEY.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec whose tokens expire after ttl.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Encode signs a token carrying sessionID and userID.
func (c *TokenCodec) Encode(sessionID string, userID int64) (string, error) {
	now := c.now()
	claims := Claims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns its claims, or ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.SessionID == "" || claims.UserID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
