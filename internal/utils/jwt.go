package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token types. User tokens carry the user's id; admin tokens carry only
// the type and are issued against the fixed admin credentials.
const (
	TokenUser  = "user"
	TokenAdmin = "admin"
)

// JWT Claims
type Claims struct {
	UserID               string `json:"user_id,omitempty"` // Custom claim for user ID
	Type                 string `json:"type"`              // user or admin
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateUserJWT creates a 30-day token for a given user ID
func GenerateUserJWT(userID, secret string) (string, error) {
	claims := Claims{
		UserID: userID,
		Type:   TokenUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateAdminJWT creates a short-lived admin session token
func GenerateAdminJWT(secret string) (string, error) {
	claims := Claims{
		Type: TokenAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
