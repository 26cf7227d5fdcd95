package utils

import (
	"errors"

	"github.com/golang-jwt/jwt"
)

// The session token is issued by the marketplace backend; this client never
// holds the signing secret, so claims are read without signature verification.
// The token is only trusted for identity-change detection and socket auth,
// the backend re-validates it on every call.

// ExtractIDFromToken extracts the ID (subject) from a session token string.
// It returns the extracted ID or an error if the token cannot be parsed.
func ExtractIDFromToken(tokenString string) (string, error) {
	parser := jwt.Parser{}
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
