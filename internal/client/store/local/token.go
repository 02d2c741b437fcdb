package local

import (
	"time"

	"github.com/betterimg/betterimg/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity ID inside locally minted session tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// generateToken mints an HS256 session token for the given identity.
func generateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
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

// userIDFromToken validates the token signature and expiry and extracts the
// identity ID. Returns common.ErrInvalidToken on any failure.
func userIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
