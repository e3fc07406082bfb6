// internal/auth/tokens.go
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the information carried in both access and refresh tokens.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies the two bearer token families. Access and
// refresh tokens use independent secrets so one cannot stand in for
// the other.
type Tokens struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

func (t Tokens) sign(userID uuid.UUID, secret []byte, expiry time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t Tokens) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return t.sign(userID, t.AccessSecret, t.AccessExpiry)
}

func (t Tokens) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return t.sign(userID, t.RefreshSecret, t.RefreshExpiry)
}

func verify(token string, secret []byte) (uuid.UUID, bool) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// VerifyAccessToken resolves an access token to the user it was issued
// for. The second return is false for any invalid or expired token.
func (t Tokens) VerifyAccessToken(token string) (uuid.UUID, bool) {
	return verify(token, t.AccessSecret)
}

func (t Tokens) VerifyRefreshToken(token string) (uuid.UUID, bool) {
	return verify(token, t.RefreshSecret)
}
