// Package auth issues and validates the bearer tokens protecting the
// reference-data API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mgallardo/freightdeck/internal/common"
)

// Claims extends the registered claims with the client identifier the token
// was issued to.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string
}

// GenerateToken signs an HS256 token for clientID, valid for validityDuration.
func GenerateToken(clientID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		ClientID: clientID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetClientIDFromToken validates tokenString against secretKey and returns the
// client id it carries. Only HS256 signatures are accepted; any parse or
// signature failure surfaces as common.ErrInvalidToken.
func GetClientIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.ClientID, nil
}
