package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	secret := []byte("unit-test-secret")

	t.Run("round trip preserves subject and purpose", func(t *testing.T) {
		signed, err := Issue("user-123", 15*time.Minute, PurposeAccess, secret)
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		claims, err := Verify(signed, secret)
		require.NoError(t, err)
		require.Equal(t, "user-123", claims.UserID)
		require.Equal(t, PurposeAccess, claims.Purpose)
		require.NotEmpty(t, claims.TokenID)
		require.True(t, claims.ExpiresAt.After(time.Now()))
	})

	t.Run("tokens for the same subject are distinct", func(t *testing.T) {
		first, err := Issue("user-123", time.Hour, PurposeRefresh, secret)
		require.NoError(t, err)
		second, err := Issue("user-123", time.Hour, PurposeRefresh, secret)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		signed, err := Issue("user-123", time.Hour, PurposeAccess, secret)
		require.NoError(t, err)

		_, err = Verify(signed, []byte("some-other-secret"))
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("expired token fails", func(t *testing.T) {
		signed, err := Issue("user-123", -time.Minute, PurposeAccess, secret)
		require.NoError(t, err)

		_, err = Verify(signed, secret)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("malformed token fails", func(t *testing.T) {
		_, err := Verify("not-a-token", secret)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrVerificationFailed))
	})

	t.Run("purpose survives for every kind", func(t *testing.T) {
		for _, purpose := range []Purpose{PurposeAccess, PurposeRefresh, PurposeResetPassword, PurposeVerifyEmail} {
			signed, err := Issue("user-123", time.Hour, purpose, secret)
			require.NoError(t, err)

			claims, err := Verify(signed, secret)
			require.NoError(t, err)
			require.Equal(t, purpose, claims.Purpose)
		}
	})
}
