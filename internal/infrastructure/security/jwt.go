// Package security provides JWT token utilities
package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

// ViewerTokenTTL is the lifetime of tokens issued by GenerateViewerToken.
const ViewerTokenTTL = 12 * time.Hour

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	if jwtSecret == "" {
		return nil, ErrMissingSecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Parse only checks exp when present; tokens must always carry one.
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, fmt.Errorf("%w: missing or expired exp claim", ErrInvalidToken)
	}
	return claims, nil
}

// ViewerIDFromClaims extracts the host user id from the "sub" claim, which
// may be encoded as a number or a decimal string.
func ViewerIDFromClaims(claims jwt.MapClaims) (int64, error) {
	switch sub := claims["sub"].(type) {
	case float64:
		if sub <= 0 || sub != float64(int64(sub)) {
			return 0, fmt.Errorf("%w: bad subject %v", ErrInvalidToken, sub)
		}
		return int64(sub), nil
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, sub)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
}

// GenerateViewerToken creates a signed token identifying a host user.
func GenerateViewerToken(userID int64, jwtSecret string) (string, error) {
	if jwtSecret == "" {
		return "", ErrMissingSecret
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(ViewerTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
