// Package auth resolves the acting user's identity from signed tokens. The
// identity provider itself is external; this is the boundary adapter that
// turns its tokens into the updated_by identity every component write must
// carry.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vkazarins/pagecraft/internal/common"
)

// Claims extends the registered JWT claims with the acting user id.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string
}

// GenerateToken signs an HS256 token carrying the actor id.
func GenerateToken(actorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		ActorID: actorID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ActorFromToken validates the token and extracts the actor id. Expired or
// malformed tokens return common.ErrInvalidToken; an empty actor id in an
// otherwise valid token is also rejected, because anonymous writes are not
// allowed anywhere downstream.
func ActorFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ActorID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ActorID, nil
}
