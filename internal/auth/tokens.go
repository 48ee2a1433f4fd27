package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is returned for every token verification failure: bad
// signature, expired, not yet valid, or malformed. Callers cannot tell the
// cases apart.
var ErrTokenInvalid = errors.New("invalid token")

// IssueAccessToken creates a signed access token for a user. The subject is
// the user ID and the token expires after ttl; nothing is stored server-side.
func IssueAccessToken(secret string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry and returns the user ID
// embedded in the token.
func VerifyAccessToken(secret, tokenStr string) (int64, error) {
	claims, err := parseClaims(secret, tokenStr)
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// IssueResetToken creates a signed password-reset token scoped to one email
// address. The token is valid from now until now+ttl.
func IssueResetToken(secret, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing reset token: %w", err)
	}
	return signed, nil
}

// VerifyResetToken validates a password-reset token and returns the email it
// was issued for. Any failure yields ErrTokenInvalid.
func VerifyResetToken(secret, tokenStr string) (string, error) {
	claims, err := parseClaims(secret, tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// parseClaims parses and validates a signed token, collapsing every failure
// mode into ErrTokenInvalid. Expiry and not-before are checked by the parser
// when the claims are present.
func parseClaims(secret, tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
