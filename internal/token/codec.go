package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose restricts which flow may consume a signed token.
type Purpose string

const (
	PurposeAccess        Purpose = "access"
	PurposeRefresh       Purpose = "refresh"
	PurposeResetPassword Purpose = "resetPassword"
	PurposeVerifyEmail   Purpose = "verifyEmail"
)

// ErrVerificationFailed is the single failure callers see from Verify.
// Signature, expiry and shape failures are deliberately not distinguished
// so the codec cannot be used as an oracle; the underlying cause is wrapped
// for logging only.
var ErrVerificationFailed = errors.New("token verification failed")

type Claims struct {
	UserID    string
	Purpose   Purpose
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issue signs a compact token carrying the subject, purpose and expiry.
// The jti claim keeps tokens issued within the same second distinct.
func Issue(userID string, ttl time.Duration, purpose Purpose, secret []byte) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": string(purpose),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry against the given secret.
// Access tokens verify without any I/O; other purposes additionally require
// a live ledger entry, which is the caller's responsibility.
func Verify(tokenString string, secret []byte) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if !parsed.Valid {
		return nil, ErrVerificationFailed
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrVerificationFailed)
	}

	claims := &Claims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	if typ, ok := claimsMap["typ"].(string); ok {
		claims.Purpose = Purpose(typ)
	}
	claims.TokenID, _ = claimsMap["jti"].(string)
	if iat, ok := claimsMap["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claimsMap["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	if claims.UserID == "" || claims.Purpose == "" {
		return nil, fmt.Errorf("%w: missing subject or purpose", ErrVerificationFailed)
	}

	return claims, nil
}
