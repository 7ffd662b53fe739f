package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the authenticated
// operator's credential id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken signs an HS256 session token for the administrative API.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates the token and returns the embedded user id.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
